// Package report accumulates the counters the Matcher, Verifier, and
// Copy Executor produce and renders them as a human-readable run
// summary, mirroring the teacher's GenerateSummaryReport /
// WriteMarkdownReport pair scoped down to the counters spec.md defines.
// It also stamps every run with a correlation id so concurrent runs'
// logs can be told apart, and can emit a JSONL event stream of the
// matcher's decisions (see events.go).
package report

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ethereal77/codesync/internal/execute"
	"github.com/ethereal77/codesync/internal/match"
	"github.com/ethereal77/codesync/internal/util"
	"github.com/ethereal77/codesync/internal/verify"
)

// NewRunID returns a fresh correlation id for one command invocation.
func NewRunID() string {
	return uuid.NewString()
}

// MatchSummary is the human-readable form of a Matcher run's counters.
type MatchSummary struct {
	RunID string

	Matched       int
	MatchedByHash int
	OneLeft       int
	Ambiguous     int
	SourceOrphans int
	DestOrphans   int
	// BytesWouldMove is the sum of the source file sizes behind every
	// current match, i.e. how much a subsequent sync would copy. It is
	// a best-effort stat pass over the source tree, not a matcher
	// counter: a file that disappears between analyze and sync is
	// simply skipped rather than failing the summary.
	BytesWouldMove int64
}

// NewMatchSummary builds a MatchSummary from a completed Matcher run,
// stat-ing each matched source file under sourceRoot to total up how
// many bytes a sync of this plan would move.
func NewMatchSummary(runID, sourceRoot string, res *match.Result) MatchSummary {
	return MatchSummary{
		RunID:          runID,
		Matched:        res.Counters.Matched,
		MatchedByHash:  res.Counters.MatchedByHash,
		OneLeft:        res.Counters.SourceOneLeft,
		Ambiguous:      res.Counters.SourceMultiInDest,
		SourceOrphans:  res.Counters.SourceNotInDest,
		DestOrphans:    res.Counters.DestNotInSource,
		BytesWouldMove: bytesWouldMove(sourceRoot, res.Matches),
	}
}

func bytesWouldMove(sourceRoot string, matches []match.Match) int64 {
	var total int64
	for _, m := range matches {
		info, err := os.Stat(filepath.Join(sourceRoot, m.Source.OSPath()))
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total
}

// Print writes the summary to the leveled console logger.
func (s MatchSummary) Print() {
	util.InfoLog("")
	util.SuccessLog("=== Match Summary (run %s) ===", s.RunID)
	util.InfoLog("  Matched:             %d (%d by content hash)", s.Matched, s.MatchedByHash)
	util.InfoLog("  One-left (unsure):   %d", s.OneLeft)
	util.InfoLog("  Ambiguous:           %d", s.Ambiguous)
	util.InfoLog("  Source orphans:      %d", s.SourceOrphans)
	util.InfoLog("  Destination orphans: %d", s.DestOrphans)
	util.InfoLog("  Bytes that would move: %s", util.FormatBytes(s.BytesWouldMove))
}

// VerifySummary is the human-readable form of a Verifier run's counts.
type VerifySummary struct {
	RunID string

	Copies       int
	IgnoreSource int
	IgnoreDest   int

	DroppedDuplicates int
	DroppedMissing    int
	DroppedPartial    int
	Reclassified      int
}

// NewVerifySummary builds a VerifySummary from a completed Verifier run.
func NewVerifySummary(runID string, res *verify.Result) VerifySummary {
	return VerifySummary{
		RunID:             runID,
		Copies:            len(res.Copies),
		IgnoreSource:      len(res.IgnoreSource),
		IgnoreDest:        len(res.IgnoreDest),
		DroppedDuplicates: res.DroppedDuplicates,
		DroppedMissing:    res.DroppedMissing,
		DroppedPartial:    res.DroppedPartial,
		Reclassified:      res.Reclassified,
	}
}

// Print writes the summary to the leveled console logger.
func (s VerifySummary) Print() {
	util.InfoLog("")
	util.SuccessLog("=== Verify Summary (run %s) ===", s.RunID)
	util.InfoLog("  Valid copies:        %d", s.Copies)
	util.InfoLog("  Ignore (source):     %d", s.IgnoreSource)
	util.InfoLog("  Ignore (dest):       %d", s.IgnoreDest)
	if s.DroppedDuplicates > 0 {
		util.InfoLog("  Dropped duplicates:  %d", s.DroppedDuplicates)
	}
	if s.DroppedMissing > 0 {
		util.InfoLog("  Dropped missing:     %d", s.DroppedMissing)
	}
	if s.DroppedPartial > 0 {
		util.InfoLog("  Dropped partial:     %d", s.DroppedPartial)
	}
	if s.Reclassified > 0 {
		util.InfoLog("  Reclassified:        %d", s.Reclassified)
	}
}

// CopySummary is the human-readable form of a Copy Executor run.
type CopySummary struct {
	RunID string

	Copied      int
	Ignored     int
	Errors      int
	BytesCopied int64
}

// NewCopySummary builds a CopySummary from a completed executor run.
func NewCopySummary(runID string, res *execute.Result) CopySummary {
	return CopySummary{
		RunID:       runID,
		Copied:      res.Copied,
		Ignored:     res.Ignored,
		Errors:      res.Errors,
		BytesCopied: res.BytesCopied,
	}
}

// Print writes the summary to the leveled console logger.
func (s CopySummary) Print() {
	util.InfoLog("")
	util.SuccessLog("=== Sync Summary (run %s) ===", s.RunID)
	util.InfoLog("  Copied:  %d (%s)", s.Copied, util.FormatBytes(s.BytesCopied))
	util.InfoLog("  Ignored: %d", s.Ignored)
	if s.Errors > 0 {
		util.ErrorLog("  Errors:  %d", s.Errors)
	}
}
