package planxml

import (
	"time"

	"github.com/ethereal77/codesync/internal/match"
	"github.com/ethereal77/codesync/internal/pathkey"
)

// PriorEntries holds the validated contents of a previous plan that
// the Updater carries forward unchanged, ahead of the matcher's
// resolution of the residual trees.
type PriorEntries struct {
	Matches      []match.Match
	Partials     []PartialEntry
	IgnoreSource []pathkey.RelativePath
	IgnoreDest   []pathkey.RelativePath
}

// Section header texts. Wording is part of the observable contract —
// plans are hand-edited, and these are the instructions a user reads
// before touching a line.
const (
	headerMatches = "Current matches. Edit the Destination to redirect a copy " +
		"elsewhere, or delete the Copy element to skip it."
	headerOneLeft = "Entries narrowed down to a single remaining candidate. " +
		"These are reported as matches but are not certain — verify before syncing."
	headerAmbiguous = "Ambiguous sources: more than one destination shares this " +
		"filename and neither path nor content settled it. Turn this into a Copy " +
		"with the Destination you want, or leave it as an Ignore to skip."
	headerSourceOrphan = "Source files with no destination candidate. Leave as " +
		"Ignore to skip, or add a Destination by hand to force a copy."
	headerDestOrphan = "Destination files with no source candidate, listed for " +
		"reference only. These lines are comments and are never read back."

	headerPreviousMatches = "Matches carried forward from the previous plan; both " +
		"sides still exist on disk and were not re-evaluated."
	headerPreviousPartial = "Entries carried forward from the previous plan whose " +
		"counterpart has since disappeared. Resolve or delete these by hand."

	headerVerified = "Verified entries: duplicates removed, conflicts between Copy " +
		"and Ignore resolved in favor of Ignore, sorted for easy diffing."
)

// EmitVerified writes a reorganized plan from a Verifier pass: valid
// copy entries sorted by source path, then ignore-source and
// ignore-dest entries sorted lexicographically.
func EmitVerified(w *Writer, sourceDir, destDir string, modifiedTime *time.Time,
	copies []CopyEntry, ignoreSource, ignoreDest []pathkey.RelativePath) error {
	w.WriteHeader(sourceDir, destDir, modifiedTime)

	w.WriteSectionHeader(headerVerified)
	for _, c := range copies {
		w.WriteCopy(c.Source, c.Destination, "")
	}
	for _, s := range ignoreSource {
		w.WriteIgnoreSource(s)
	}
	for _, d := range ignoreDest {
		w.WriteIgnoreDest(d)
	}

	return w.Finish()
}

// EmitMatchResult writes a full plan document from a Matcher run, in
// the section order the matcher defines: current matches, one-left,
// ambiguous, source-orphan, destination-orphan (as comments).
func EmitMatchResult(w *Writer, sourceDir, destDir string, modifiedTime *time.Time, res *match.Result) error {
	w.WriteHeader(sourceDir, destDir, modifiedTime)
	writeMatchSections(w, res)
	return w.Finish()
}

// EmitUpdateResult writes a plan document carrying forward validated
// entries from a prior plan, followed by the matcher's resolution of
// the residual trees. Section order: previous matches, previous
// partials, previous ignores, then the matcher sections in their usual
// order.
func EmitUpdateResult(w *Writer, sourceDir, destDir string, modifiedTime *time.Time, prior *PriorEntries, res *match.Result) error {
	w.WriteHeader(sourceDir, destDir, modifiedTime)

	if len(prior.Matches) > 0 {
		w.WriteSectionHeader(headerPreviousMatches)
		for _, m := range prior.Matches {
			w.WriteCopy(m.Source, m.Dest, "")
		}
	}

	if len(prior.Partials) > 0 {
		w.WriteSectionHeader(headerPreviousPartial)
		for _, p := range prior.Partials {
			w.WritePartial(p.Source, p.Destination)
		}
	}

	for _, s := range prior.IgnoreSource {
		w.WriteIgnoreSource(s)
	}
	for _, d := range prior.IgnoreDest {
		w.WriteIgnoreDest(d)
	}

	writeMatchSections(w, res)
	return w.Finish()
}

func writeMatchSections(w *Writer, res *match.Result) {
	w.WriteSectionHeader(headerMatches)
	for _, m := range res.Matches {
		comment := ""
		if m.HashMatch {
			comment = "matched by content hash"
		}
		w.WriteCopy(m.Source, m.Dest, comment)
	}

	if len(res.OneLeft) > 0 {
		w.WriteSectionHeader(headerOneLeft)
		for _, ol := range res.OneLeft {
			w.WriteCopy(ol.Source, ol.Dest, "potentially incorrect: narrowed from multiple candidates")
		}
	}

	if len(res.Ambiguous) > 0 {
		w.WriteSectionHeader(headerAmbiguous)
		for _, amb := range res.Ambiguous {
			w.WriteIgnoreAmbiguous(amb.Source, amb.Candidates)
		}
	}

	if len(res.SourceOrphans) > 0 {
		w.WriteSectionHeader(headerSourceOrphan)
		for _, s := range res.SourceOrphans {
			w.WriteIgnoreSource(s)
		}
	}

	if len(res.DestOrphans) > 0 {
		w.WriteSectionHeader(headerDestOrphan)
		for _, d := range res.DestOrphans {
			w.WriteDestOrphanComment(d)
		}
	}
}
