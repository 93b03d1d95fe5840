// Package pathkey implements the RelativePath data model and the
// path-similarity ranking used by the matcher when a filename has more
// than one destination candidate.
package pathkey

import (
	"path/filepath"
	"strings"
)

// RelativePath is a path relative to a repository root, stored with
// forward slashes internally regardless of host separator. Equality is
// case-insensitive on the full string; component-wise comparisons are
// also case-insensitive (see Rank).
type RelativePath string

// New normalizes an OS path (which may use the host separator) into a
// RelativePath using forward slashes.
func New(p string) RelativePath {
	return RelativePath(filepath.ToSlash(p))
}

// String returns the path using forward slashes.
func (p RelativePath) String() string {
	return string(p)
}

// OSPath renders the path using the host's path separator, for
// combining with a filesystem root.
func (p RelativePath) OSPath() string {
	return filepath.FromSlash(string(p))
}

// Base returns the last path component (purely lexical, no filesystem
// access).
func (p RelativePath) Base() string {
	s := string(p)
	if idx := strings.LastIndexByte(s, '/'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// Equal reports whether two relative paths denote the same path,
// case-insensitively.
func (p RelativePath) Equal(other RelativePath) bool {
	return strings.EqualFold(string(p), string(other))
}

// Key returns a case-folded form suitable for use as a map key when
// Equal-semantics are needed across lookups, e.g. exclusion sets.
func (p RelativePath) Key() string {
	return strings.ToLower(string(p))
}

// components splits a path into its slash-separated segments.
func (p RelativePath) components() []string {
	return strings.Split(string(p), "/")
}

// Rank scores the similarity of a source path against one candidate
// destination path. Both paths are split into components and reversed
// (so the filename is index 0); components are compared pairwise,
// case-insensitively, for as many positions as the shorter path has:
// a matching component contributes -1, a mismatching one contributes
// +1. Lower rank means more similar. Ties are resolved by stable sort
// order at the caller (original insertion order is preserved).
func Rank(source, dest RelativePath) int {
	sc := reversed(source.components())
	dc := reversed(dest.components())

	n := len(sc)
	if len(dc) < n {
		n = len(dc)
	}

	rank := 0
	for i := 0; i < n; i++ {
		if strings.EqualFold(sc[i], dc[i]) {
			rank--
		} else {
			rank++
		}
	}
	return rank
}

func reversed(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// RankCandidates orders candidates by ascending similarity rank against
// source, preserving the original relative order of ties. If there are
// fewer than two candidates, the slice is returned unranked (a copy),
// matching the "skip ranking" rule for degenerate candidate lists.
func RankCandidates(source RelativePath, candidates []RelativePath) []RelativePath {
	out := make([]RelativePath, len(candidates))
	copy(out, candidates)
	if len(out) < 2 {
		return out
	}

	ranks := make([]int, len(out))
	for i, c := range out {
		ranks[i] = Rank(source, c)
	}

	// Stable insertion sort: the candidate lists involved are small
	// (bounded by how many files share a basename), and stability is
	// required to preserve original order among ties.
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && ranks[j-1] > ranks[j] {
			out[j-1], out[j] = out[j], out[j-1]
			ranks[j-1], ranks[j] = ranks[j], ranks[j-1]
			j--
		}
	}
	return out
}
