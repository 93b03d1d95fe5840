// Package verify implements the Verifier: a non-destructive lint pass
// over a plan document. It detects duplicated and malformed entries,
// resolves conflicts between the copy and ignore sets in favor of
// Ignore, optionally checks that referenced files still exist, and
// produces a reorganized plan sorted for easy diffing.
package verify

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ethereal77/codesync/internal/pathkey"
	"github.com/ethereal77/codesync/internal/planxml"
	"github.com/ethereal77/codesync/internal/util"
)

// Options controls which checks a run performs. CheckRepeats enables
// duplicate detection within the copy and ignore sets independently.
// CheckExistingCopy and CheckExistingIgnore gate existence checks for
// each entry kind; the CLI's --check-existing flag sets both.
type Options struct {
	CheckRepeats        bool
	CheckExistingCopy   bool
	CheckExistingIgnore bool
}

// Result is the verified, reorganized contents of a plan: valid copy
// entries sorted by source path, ignore entries sorted
// lexicographically, plus counts of what was dropped or reclassified
// along the way.
type Result struct {
	Copies       []planxml.CopyEntry
	IgnoreSource []pathkey.RelativePath
	IgnoreDest   []pathkey.RelativePath

	DroppedDuplicates int
	DroppedMissing    int
	DroppedPartial    int
	Reclassified      int
}

// Run verifies plan against sourceRoot/destRoot according to opts. It
// never mutates plan; the returned Result is a fresh, reorganized view.
func Run(opts Options, sourceRoot, destRoot string, plan *planxml.Plan) *Result {
	res := &Result{}

	ignoreSourceSet := make(map[string]bool)
	ignoreDestSet := make(map[string]bool)
	for _, s := range plan.IgnoreSourceEntries() {
		ignoreSourceSet[s.Key()] = true
	}
	for _, d := range plan.IgnoreDestEntries() {
		ignoreDestSet[d.Key()] = true
	}

	res.IgnoreSource = dedupeAndCheck(plan.IgnoreSourceEntries(), opts.CheckRepeats, opts.CheckExistingIgnore, sourceRoot, &res.DroppedDuplicates, &res.DroppedMissing)
	res.IgnoreDest = dedupeAndCheck(plan.IgnoreDestEntries(), opts.CheckRepeats, opts.CheckExistingIgnore, destRoot, &res.DroppedDuplicates, &res.DroppedMissing)

	seenCopies := make(map[string]bool)
	for _, c := range plan.FilesToCopy() {
		key := c.Source.Key() + "\x00" + c.Destination.Key()
		if opts.CheckRepeats && seenCopies[key] {
			res.DroppedDuplicates++
			util.WarnLog("dropping duplicate copy entry %s -> %s", c.Source, c.Destination)
			continue
		}
		seenCopies[key] = true

		if ignoreSourceSet[c.Source.Key()] || ignoreDestSet[c.Destination.Key()] {
			res.Reclassified++
			util.InfoLog("copy %s -> %s conflicts with an ignore entry, keeping the ignore", c.Source, c.Destination)
			continue
		}

		if opts.CheckExistingCopy {
			if !exists(sourceRoot, c.Source) || !exists(destRoot, c.Destination) {
				res.DroppedMissing++
				util.WarnLog("dropping copy entry with a missing side: %s -> %s", c.Source, c.Destination)
				continue
			}
		}

		res.Copies = append(res.Copies, c)
	}

	for _, p := range plan.PartialEntries() {
		res.DroppedPartial++
		util.WarnLog("%v: dropping partial entry (source=%v, destination=%v)", util.ErrMalformedEntry, p.Source, p.Destination)
	}

	sort.Slice(res.Copies, func(i, j int) bool {
		return res.Copies[i].Source.String() < res.Copies[j].Source.String()
	})
	sortPaths(res.IgnoreSource)
	sortPaths(res.IgnoreDest)

	return res
}

// dedupeAndCheck deduplicates an ignore list (by Key, when repeats is
// true) and optionally drops entries whose file no longer exists under
// root, reporting both through the shared dropped counters.
func dedupeAndCheck(entries []pathkey.RelativePath, repeats, checkExisting bool, root string, dupCount, missingCount *int) []pathkey.RelativePath {
	seen := make(map[string]bool, len(entries))
	out := make([]pathkey.RelativePath, 0, len(entries))
	for _, e := range entries {
		if repeats {
			if seen[e.Key()] {
				*dupCount++
				util.WarnLog("dropping duplicate ignore entry %s", e)
				continue
			}
			seen[e.Key()] = true
		}
		if checkExisting && !exists(root, e) {
			*missingCount++
			util.WarnLog("dropping ignore entry for missing file %s", e)
			continue
		}
		out = append(out, e)
	}
	return out
}

func sortPaths(paths []pathkey.RelativePath) {
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].String() < paths[j].String()
	})
}

func exists(root string, p pathkey.RelativePath) bool {
	_, err := os.Stat(filepath.Join(root, p.OSPath()))
	return err == nil
}
