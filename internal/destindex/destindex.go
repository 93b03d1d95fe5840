// Package destindex implements the Destination Index: a mapping from
// bare filename to one-or-many candidate destination paths, with the
// bidirectional removal operations the matcher needs to keep the
// candidate pool consistent as it consumes matches.
package destindex

import (
	"github.com/ethereal77/codesync/internal/pathkey"
)

// Entry is the tagged-variant destination entry. Exactly one of the
// two shapes is populated; consumers must switch on Multi != nil
// before treating it as a Single.
type Entry struct {
	// Single holds the one candidate when there is no ambiguity.
	Single *pathkey.RelativePath
	// Multi holds an insertion-ordered list of candidates (>= 2) when
	// several destination paths share a basename.
	Multi []pathkey.RelativePath
}

// Paths returns all candidates in this entry, in insertion order.
func (e Entry) Paths() []pathkey.RelativePath {
	if e.Multi != nil {
		return e.Multi
	}
	if e.Single != nil {
		return []pathkey.RelativePath{*e.Single}
	}
	return nil
}

// Index is the Destination Index. The zero value is not usable; use
// New.
type Index struct {
	entries map[string]Entry
	count   int
}

// New builds a Destination Index from an enumeration of destination
// paths, keyed by basename.
func New(paths []pathkey.RelativePath) *Index {
	idx := &Index{entries: make(map[string]Entry, len(paths))}
	for _, p := range paths {
		idx.insert(p)
	}
	return idx
}

func (idx *Index) insert(p pathkey.RelativePath) {
	name := p.Base()
	existing, ok := idx.entries[name]
	if !ok {
		pp := p
		idx.entries[name] = Entry{Single: &pp}
	} else if existing.Multi != nil {
		existing.Multi = append(existing.Multi, p)
		idx.entries[name] = existing
	} else {
		idx.entries[name] = Entry{Multi: []pathkey.RelativePath{*existing.Single, p}}
	}
	idx.count++
}

// Lookup returns the entry for a basename and whether it exists.
func (idx *Index) Lookup(name string) (Entry, bool) {
	e, ok := idx.entries[name]
	return e, ok
}

// Count returns the total number of candidate paths across all
// entries (not the number of keys).
func (idx *Index) Count() int {
	return idx.count
}

// Remove drops the whole entry for a basename. Count decreases by the
// entry's candidate count. It is a no-op if the key is absent.
func (idx *Index) Remove(name string) {
	e, ok := idx.entries[name]
	if !ok {
		return
	}
	idx.count -= len(e.Paths())
	delete(idx.entries, name)
}

// All flattens every remaining candidate across all entries, in no
// particular order. Used to compute the destination-orphan set once
// the matcher has consumed every match, one-left, and ambiguous
// candidate.
func (idx *Index) All() []pathkey.RelativePath {
	out := make([]pathkey.RelativePath, 0, idx.count)
	for _, e := range idx.entries {
		out = append(out, e.Paths()...)
	}
	return out
}

// RemovePath drops one specific candidate from a basename's entry. If
// the entry becomes empty, the key is dropped too. Count decreases by
// one. It is a no-op if the path is not present under that basename.
func (idx *Index) RemovePath(name string, path pathkey.RelativePath) {
	e, ok := idx.entries[name]
	if !ok {
		return
	}

	if e.Single != nil {
		if e.Single.Equal(path) {
			delete(idx.entries, name)
			idx.count--
		}
		return
	}

	remaining := make([]pathkey.RelativePath, 0, len(e.Multi))
	removed := false
	for _, c := range e.Multi {
		if !removed && c.Equal(path) {
			removed = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !removed {
		return
	}
	idx.count--

	switch len(remaining) {
	case 0:
		delete(idx.entries, name)
	case 1:
		idx.entries[name] = Entry{Single: &remaining[0]}
	default:
		idx.entries[name] = Entry{Multi: remaining}
	}
}
