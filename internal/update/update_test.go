package update

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ethereal77/codesync/internal/planxml"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func writePlan(t *testing.T, sourceDir, destDir, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "plan.xml")
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<CodeSync>
  <SourceDirectory>` + sourceDir + `</SourceDirectory>
  <DestDirectory>` + destDir + `</DestDirectory>
` + body + `
</CodeSync>`
	require.NoError(t, os.WriteFile(p, []byte(doc), 0644))
	return p
}

// Scenario F / Invariant 6: updating a freshly produced plan with no
// filesystem changes carries the prior match forward untouched and the
// matcher sees nothing left to do.
func TestUpdaterCarriesForwardStableMatch(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "a.txt", "hello")
	writeFile(t, dst, "b.txt", "hello")

	planPath := writePlan(t, src, dst, `  <Copy><Source>a.txt</Source><Destination>b.txt</Destination></Copy>`)

	prior, err := planxml.Load(planPath)
	require.NoError(t, err)

	res, err := Run(Config{SourceRoot: src, DestRoot: dst}, prior)
	require.NoError(t, err)

	require.Len(t, res.Prior.Matches, 1)
	require.Equal(t, "a.txt", res.Prior.Matches[0].Source.String())
	require.Equal(t, "b.txt", res.Prior.Matches[0].Dest.String())

	require.Empty(t, res.Matched.Matches)
	require.Empty(t, res.Matched.SourceOrphans)
	require.Empty(t, res.Matched.DestOrphans)
}

// A prior match whose destination has since vanished degrades to a
// partial entry instead of being silently dropped, and its source is
// kept out of the residual queue.
func TestUpdaterDegradesMissingDestinationToPartial(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "a.txt", "hello")
	// b.txt deliberately not recreated in dst.

	planPath := writePlan(t, src, dst, `  <Copy><Source>a.txt</Source><Destination>b.txt</Destination></Copy>`)
	prior, err := planxml.Load(planPath)
	require.NoError(t, err)

	res, err := Run(Config{SourceRoot: src, DestRoot: dst}, prior)
	require.NoError(t, err)

	require.Empty(t, res.Prior.Matches)
	require.Len(t, res.Prior.Partials, 1)
	require.NotNil(t, res.Prior.Partials[0].Source)
	require.Equal(t, "a.txt", res.Prior.Partials[0].Source.String())

	// a.txt was dropped into the partial section, not left in the
	// residual source queue, so the matcher does not see it again.
	require.Empty(t, res.Matched.Matches)
	require.Empty(t, res.Matched.SourceOrphans)
}

// Prior ignore entries are carried forward unconditionally and their
// paths are excluded from the residual pools the matcher sees.
func TestUpdaterCarriesForwardIgnoresAndExcludesThem(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "skip.txt", "1")
	writeFile(t, dst, "new.txt", "2")

	planPath := writePlan(t, src, dst, `  <Ignore><Source>skip.txt</Source></Ignore>`)
	prior, err := planxml.Load(planPath)
	require.NoError(t, err)

	res, err := Run(Config{SourceRoot: src, DestRoot: dst}, prior)
	require.NoError(t, err)

	require.Len(t, res.Prior.IgnoreSource, 1)
	require.Equal(t, "skip.txt", res.Prior.IgnoreSource[0].String())

	for _, s := range res.Matched.SourceOrphans {
		require.NotEqual(t, "skip.txt", s.String())
	}
}

// A new source file, with no prior entry referencing it, passes
// straight through to the matcher and comes out as an ordinary
// source orphan.
func TestUpdaterPassesNewFilesToMatcher(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "old.txt", "x")
	writeFile(t, dst, "old.txt", "x")
	writeFile(t, src, "fresh.txt", "new")

	planPath := writePlan(t, src, dst, `  <Copy><Source>old.txt</Source><Destination>old.txt</Destination></Copy>`)
	prior, err := planxml.Load(planPath)
	require.NoError(t, err)

	res, err := Run(Config{SourceRoot: src, DestRoot: dst}, prior)
	require.NoError(t, err)

	require.Len(t, res.Prior.Matches, 1)
	require.Len(t, res.Matched.SourceOrphans, 1)
	require.Equal(t, "fresh.txt", res.Matched.SourceOrphans[0].String())
}
