// Package match implements the Matcher: the stateful, multi-stage
// resolver at the core of CodeSync. It drains a source queue against a
// Destination Index, escalating from filename equality to path-rank
// similarity to an optional content hash, and keeps the destination
// index, orphan sets, and counters consistent across every stage.
package match

import (
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ethereal77/codesync/internal/destindex"
	"github.com/ethereal77/codesync/internal/hashindex"
	"github.com/ethereal77/codesync/internal/pathkey"
	"github.com/ethereal77/codesync/internal/util"
)

// Match is one resolved (source, destination) pair.
type Match struct {
	Source    pathkey.RelativePath
	Dest      pathkey.RelativePath
	HashMatch bool
}

// OneLeft is a source that started with multiple candidates and was
// narrowed to exactly one; reported as potentially incorrect rather
// than a confident match.
type OneLeft struct {
	Source pathkey.RelativePath
	Dest   pathkey.RelativePath
}

// Ambiguous is a source whose basename still has two or more
// unresolved candidates after ranking and hashing.
type Ambiguous struct {
	Source     pathkey.RelativePath
	Candidates []pathkey.RelativePath
}

// Counters are the six primary tallies the matcher maintains. Every
// emission updates exactly one of Matched, SourceNotInDest,
// SourceMultiInDest, SourceOneLeft, or DestNotInSource; hash-decided
// matches additionally bump MatchedByHash.
type Counters struct {
	Matched           int
	MatchedByHash     int
	SourceNotInDest   int
	SourceMultiInDest int
	SourceOneLeft     int
	DestNotInSource   int
}

// Result is everything a single Run produces, in the emission order
// the Plan Store expects: matches, one-left, ambiguous, source-orphan,
// destination-orphan.
type Result struct {
	Matches       []Match
	OneLeft       []OneLeft
	Ambiguous     []Ambiguous
	SourceOrphans []pathkey.RelativePath
	DestOrphans   []pathkey.RelativePath
	Counters      Counters
}

// Config controls one matching run.
type Config struct {
	// SourceRoot and DestRoot are the filesystem directories the
	// source queue and destination index paths are relative to. Only
	// consulted when EnableHash is set.
	SourceRoot string
	DestRoot   string
	// EnableHash turns on the optional content-hash escalation, both
	// within a single ambiguous entry and across orphan sets.
	EnableHash bool
	// ShowProgress renders an indeterminate progress bar over the files
	// actually opened for hashing (only ever non-zero when EnableHash
	// is set), on a TTY and outside quiet mode.
	ShowProgress bool
}

// Matcher resolves a source queue against a Destination Index. A
// Matcher exclusively owns its Destination Index for the duration of
// a Run; no external mutation is permitted concurrently.
type Matcher struct {
	cfg  Config
	dest *destindex.Index
	bar  *progressbar.ProgressBar
}

// New builds a Matcher over an existing Destination Index, typically
// produced by enumerate.Collect over the destination root.
func New(cfg Config, dest *destindex.Index) *Matcher {
	m := &Matcher{cfg: cfg, dest: dest}
	if cfg.EnableHash && cfg.ShowProgress && util.IsTerminal(os.Stdout.Fd()) && !util.IsQuiet() {
		m.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Hashing"),
			progressbar.OptionSetWidth(util.ProgressBarWidth()),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	return m
}

// pendingAmbiguous defers the final candidate count check to after the
// whole source queue has drained, since later sources sharing the same
// basename may shrink (or empty) the same destination-index entry in
// the meantime. Partitioning a candidate list captured when the source
// was recorded, instead of the post-drain entry, is the
// double-enumeration bug the design notes warn against.
type pendingAmbiguous struct {
	source pathkey.RelativePath
	name   string
}

// Run drains sourceQueue exactly once, in order, against the
// Matcher's Destination Index, and returns the classified Result.
func (m *Matcher) Run(sourceQueue []pathkey.RelativePath) (*Result, error) {
	res := &Result{}
	var pending []pendingAmbiguous

	for _, s := range sourceQueue {
		name := s.Base()

		entry, ok := m.dest.Lookup(name)
		if !ok {
			res.SourceOrphans = append(res.SourceOrphans, s)
			res.Counters.SourceNotInDest++
			continue
		}

		if entry.Single != nil {
			d := *entry.Single
			res.Matches = append(res.Matches, Match{Source: s, Dest: d})
			res.Counters.Matched++
			m.dest.Remove(name)
			continue
		}

		candidates := entry.Paths()

		if d, ok := exactMatch(s, candidates); ok {
			res.Matches = append(res.Matches, Match{Source: s, Dest: d})
			res.Counters.Matched++
			m.dest.RemovePath(name, d)
			continue
		}

		if m.cfg.EnableHash {
			d, ok := m.hashPass(s, pathkey.RankCandidates(s, candidates))
			if ok {
				res.Matches = append(res.Matches, Match{Source: s, Dest: d, HashMatch: true})
				res.Counters.Matched++
				res.Counters.MatchedByHash++
				m.dest.RemovePath(name, d)
				continue
			}
		}

		pending = append(pending, pendingAmbiguous{source: s, name: name})
	}

	m.partition(res, pending)
	m.crossOrphanSweep(res)

	if m.bar != nil {
		m.bar.Finish()
	}

	return res, nil
}

// exactMatch reports whether some candidate equals the source path
// case-insensitively. It must be checked, and must win, before ranking
// or hashing are consulted: the design notes call this out explicitly
// as the resolution for the case where the hash pass would otherwise
// also be able to claim the exact-path candidate.
func exactMatch(source pathkey.RelativePath, candidates []pathkey.RelativePath) (pathkey.RelativePath, bool) {
	for _, c := range candidates {
		if c.Equal(source) {
			return c, true
		}
	}
	return "", false
}

// hashPass iterates ranked candidates, comparing byte length before
// ever opening the source for hashing (hashing is computed lazily, at
// most once per source). The first candidate whose length and CRC-32
// both match the source wins; iteration stops there.
func (m *Matcher) hashPass(source pathkey.RelativePath, ranked []pathkey.RelativePath) (pathkey.RelativePath, bool) {
	var sourceHash uint32
	var sourceHashed bool

	sourceLen, err := m.length(m.cfg.SourceRoot, source)
	if err != nil {
		util.WarnLog("cannot stat source %s: %v", source, err)
		return "", false
	}

	for _, cand := range ranked {
		candLen, err := m.length(m.cfg.DestRoot, cand)
		if err != nil {
			util.WarnLog("skipping candidate %s: %v", cand, err)
			continue
		}

		if candLen != sourceLen {
			continue
		}

		if !sourceHashed {
			h, _, err := m.hashFile(m.cfg.SourceRoot, source)
			if err != nil {
				util.WarnLog("cannot hash source %s: %v", source, err)
				return "", false
			}
			sourceHash, sourceHashed = h, true
		}

		candHash, _, err := m.hashFile(m.cfg.DestRoot, cand)
		if err != nil {
			util.WarnLog("skipping candidate %s: %v", cand, err)
			continue
		}

		if candHash == sourceHash {
			return cand, true
		}
	}

	return "", false
}

// partition resolves every deferred ambiguous source against the
// current (post-drain) state of its destination-index entry, in a
// single pass. Two pending sources can share a basename (neither
// resolved during the main loop, so the entry was never mutated for
// either of them); a snapshot of each distinct entry's candidates is
// taken once, before any removal, and reused for every pending source
// under that name, so classifying the first one never empties the
// entry out from under the second. Each distinct entry is removed from
// the index exactly once, after every source sharing its name has been
// classified, so its candidates never resurface as destination-orphans.
func (m *Matcher) partition(res *Result, pending []pendingAmbiguous) {
	remainingByName := make(map[string][]pathkey.RelativePath, len(pending))
	for _, p := range pending {
		if _, seen := remainingByName[p.name]; seen {
			continue
		}
		var remaining []pathkey.RelativePath
		if entry, ok := m.dest.Lookup(p.name); ok {
			remaining = entry.Paths()
		}
		remainingByName[p.name] = remaining
	}

	for _, p := range pending {
		remaining := remainingByName[p.name]

		switch len(remaining) {
		case 0:
			res.SourceOrphans = append(res.SourceOrphans, p.source)
			res.Counters.SourceNotInDest++
		case 1:
			res.OneLeft = append(res.OneLeft, OneLeft{Source: p.source, Dest: remaining[0]})
			res.Counters.SourceOneLeft++
		default:
			res.Ambiguous = append(res.Ambiguous, Ambiguous{Source: p.source, Candidates: remaining})
			res.Counters.SourceMultiInDest++
		}
	}

	for name := range remainingByName {
		m.dest.Remove(name)
	}
}

// crossOrphanSweep performs the final content-match escalation between
// whatever is left of the two orphan sets. It runs only when hashing is
// enabled and both sides are non-empty; otherwise the destination
// orphans are simply whatever remains in the index.
func (m *Matcher) crossOrphanSweep(res *Result) {
	destOrphans := m.dest.All()

	if !m.cfg.EnableHash || len(res.SourceOrphans) == 0 || len(destOrphans) == 0 {
		res.DestOrphans = destOrphans
		res.Counters.DestNotInSource = len(destOrphans)
		return
	}

	type orphanState struct {
		path    pathkey.RelativePath
		matched bool
	}

	states := make(map[pathkey.RelativePath]*orphanState, len(res.SourceOrphans))
	hashIdx := hashindex.New()

	for _, s := range res.SourceOrphans {
		st := &orphanState{path: s}
		states[s] = st

		h, l, err := m.hashFile(m.cfg.SourceRoot, s)
		if err != nil {
			util.WarnLog("cannot hash source orphan %s: %v", s, err)
			continue
		}
		hashIdx.Insert(h, &hashindex.Record{Path: s, Length: l})
	}

	var remainingDestOrphans []pathkey.RelativePath
	for _, d := range destOrphans {
		h, l, err := m.hashFile(m.cfg.DestRoot, d)
		if err != nil {
			util.WarnLog("cannot hash destination orphan %s: %v", d, err)
			remainingDestOrphans = append(remainingDestOrphans, d)
			continue
		}

		rec := hashIdx.FindUnmatched(h, l)
		if rec == nil {
			remainingDestOrphans = append(remainingDestOrphans, d)
			continue
		}

		rec.Matched = true
		if st, ok := states[rec.Path]; ok {
			st.matched = true
		}
		m.dest.RemovePath(d.Base(), d)

		res.Matches = append(res.Matches, Match{Source: rec.Path, Dest: d, HashMatch: true})
		res.Counters.Matched++
		res.Counters.MatchedByHash++
		res.Counters.SourceNotInDest--
	}

	var finalSourceOrphans []pathkey.RelativePath
	for _, s := range res.SourceOrphans {
		if !states[s].matched {
			finalSourceOrphans = append(finalSourceOrphans, s)
		}
	}

	res.SourceOrphans = finalSourceOrphans
	res.DestOrphans = remainingDestOrphans
	res.Counters.DestNotInSource = len(remainingDestOrphans)
}

func (m *Matcher) length(root string, p pathkey.RelativePath) (uint64, error) {
	info, err := os.Stat(filepath.Join(root, p.OSPath()))
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

func (m *Matcher) hashFile(root string, p pathkey.RelativePath) (hash uint32, length uint64, err error) {
	if m.bar != nil {
		m.bar.Add(1)
	}
	return hashindex.HashFile(filepath.Join(root, p.OSPath()))
}
