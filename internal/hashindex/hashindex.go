// Package hashindex implements the Hash Index: a mapping from 32-bit
// content hash to the source paths awaiting a content match, plus the
// CRC-32 streaming hash used as the same-content fingerprint.
package hashindex

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/ethereal77/codesync/internal/pathkey"
)

const blockSize = 4096

// Record is one entry awaiting a cross-orphan content match.
type Record struct {
	Matched bool
	Path    pathkey.RelativePath
	Length  uint64
}

// Index maps a 32-bit CRC hash to the list of records sharing it.
// Collisions are resolved by the caller comparing Length before
// declaring a match.
type Index struct {
	buckets map[uint32][]*Record
}

// New returns an empty Hash Index.
func New() *Index {
	return &Index{buckets: make(map[uint32][]*Record)}
}

// Insert appends a record under its hash bucket.
func (idx *Index) Insert(h uint32, r *Record) {
	idx.buckets[h] = append(idx.buckets[h], r)
}

// Lookup returns the records sharing a hash bucket.
func (idx *Index) Lookup(h uint32) []*Record {
	return idx.buckets[h]
}

// FindUnmatched returns the first record in the bucket for h whose
// Length equals length and which has not yet been marked Matched.
func (idx *Index) FindUnmatched(h uint32, length uint64) *Record {
	for _, r := range idx.buckets[h] {
		if !r.Matched && r.Length == length {
			return r
		}
	}
	return nil
}

// HashFile computes the CRC-32 checksum of a file's entire contents,
// streamed in 4 KiB buffers, along with its byte length. The hash is
// used strictly as a same-content fingerprint for files already gated
// by equal length; its weak collision resistance is acceptable because
// length must also match before two files are considered equal.
func HashFile(osPath string) (hash uint32, length uint64, err error) {
	f, err := os.Open(osPath)
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w", osPath, err)
	}
	defer f.Close()

	h := crc32.NewIEEE()
	buf := make([]byte, blockSize)

	total, err := io.CopyBuffer(h, f, buf)
	if err != nil {
		return 0, 0, fmt.Errorf("hash %s: %w", osPath, err)
	}

	return h.Sum32(), uint64(total), nil
}
