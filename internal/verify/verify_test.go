package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereal77/codesync/internal/planxml"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func writePlan(t *testing.T, sourceDir, destDir, body string) *planxml.Plan {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "plan.xml")
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<CodeSync>
  <SourceDirectory>` + sourceDir + `</SourceDirectory>
  <DestDirectory>` + destDir + `</DestDirectory>
` + body + `
</CodeSync>`
	if err := os.WriteFile(p, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	plan, err := planxml.Load(p)
	if err != nil {
		t.Fatal(err)
	}
	return plan
}

// Scenario E: a Copy and an Ignore referencing the same source
// conflict. The verifier drops the copy and keeps the ignore.
func TestVerifyResolvesConflictInFavorOfIgnore(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	plan := writePlan(t, src, dst,
		`  <Copy><Source>a.txt</Source><Destination>b.txt</Destination></Copy>
  <Ignore><Source>a.txt</Source></Ignore>`)

	res := Run(Options{}, src, dst, plan)

	if len(res.Copies) != 0 {
		t.Errorf("Copies = %+v, want none", res.Copies)
	}
	if len(res.IgnoreSource) != 1 || res.IgnoreSource[0].String() != "a.txt" {
		t.Errorf("IgnoreSource = %+v", res.IgnoreSource)
	}
	if res.Reclassified != 1 {
		t.Errorf("Reclassified = %d, want 1", res.Reclassified)
	}
}

func TestVerifyDropsDuplicateCopies(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	plan := writePlan(t, src, dst,
		`  <Copy><Source>a.txt</Source><Destination>b.txt</Destination></Copy>
  <Copy><Source>a.txt</Source><Destination>b.txt</Destination></Copy>`)

	res := Run(Options{CheckRepeats: true}, src, dst, plan)

	if len(res.Copies) != 1 {
		t.Errorf("Copies = %+v, want exactly one", res.Copies)
	}
	if res.DroppedDuplicates != 1 {
		t.Errorf("DroppedDuplicates = %d, want 1", res.DroppedDuplicates)
	}
}

func TestVerifyDropsMissingWhenExistenceCheckEnabled(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "a.txt", "1")
	// b.txt deliberately absent from dst.
	plan := writePlan(t, src, dst, `  <Copy><Source>a.txt</Source><Destination>b.txt</Destination></Copy>`)

	res := Run(Options{CheckExistingCopy: true}, src, dst, plan)

	if len(res.Copies) != 0 {
		t.Errorf("Copies = %+v, want none", res.Copies)
	}
	if res.DroppedMissing != 1 {
		t.Errorf("DroppedMissing = %d, want 1", res.DroppedMissing)
	}
}

func TestVerifyDropsPartialEntries(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	plan := writePlan(t, src, dst, `  <Copy><Source>a.txt</Source></Copy>`)

	res := Run(Options{}, src, dst, plan)

	if len(res.Copies) != 0 {
		t.Errorf("Copies = %+v, want none", res.Copies)
	}
	if res.DroppedPartial != 1 {
		t.Errorf("DroppedPartial = %d, want 1", res.DroppedPartial)
	}
}

func TestVerifySortsOutput(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	plan := writePlan(t, src, dst,
		`  <Copy><Source>z.txt</Source><Destination>z.txt</Destination></Copy>
  <Copy><Source>a.txt</Source><Destination>a.txt</Destination></Copy>`)

	res := Run(Options{}, src, dst, plan)

	if len(res.Copies) != 2 || res.Copies[0].Source.String() != "a.txt" || res.Copies[1].Source.String() != "z.txt" {
		t.Errorf("Copies = %+v, want sorted by source", res.Copies)
	}
}

// Invariant 5: running verify twice on its own output is a no-op.
func TestVerifyIsIdempotent(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "a.txt", "1")
	writeFile(t, dst, "a.txt", "1")
	plan := writePlan(t, src, dst,
		`  <Copy><Source>a.txt</Source><Destination>a.txt</Destination></Copy>
  <Copy><Source>a.txt</Source><Destination>a.txt</Destination></Copy>
  <Ignore><Source>orphan.txt</Source></Ignore>`)

	opts := Options{CheckRepeats: true, CheckExistingCopy: true, CheckExistingIgnore: false}
	first := Run(opts, src, dst, plan)

	// Re-run against the first result rendered as a fresh plan.
	body := ""
	for _, c := range first.Copies {
		body += "  <Copy><Source>" + c.Source.String() + "</Source><Destination>" + c.Destination.String() + "</Destination></Copy>\n"
	}
	for _, s := range first.IgnoreSource {
		body += "  <Ignore><Source>" + s.String() + "</Source></Ignore>\n"
	}
	second := Run(opts, src, dst, writePlan(t, src, dst, body))

	if len(second.Copies) != len(first.Copies) {
		t.Fatalf("second pass changed the copy set: %+v vs %+v", first.Copies, second.Copies)
	}
	if second.DroppedDuplicates != 0 || second.DroppedMissing != 0 || second.Reclassified != 0 {
		t.Errorf("second pass was not a no-op: %+v", second)
	}
}
