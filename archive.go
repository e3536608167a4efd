package vark

import (
	"fmt"
	"os"
	"path/filepath"
)

// Archive is an open Vark archive. It is not safe for concurrent use from
// multiple goroutines (spec.md §5); open one Archive per goroutine that
// needs one.
type Archive struct {
	path        string
	entries     []Entry
	index       map[string]int // normalized path -> position in entries
	size        uint64         // archive byte length after the last mutation
	tableOffset uint64         // current table_offset, mirrors header bytes [4..12)

	handle  *os.File // non-nil when PersistentFP was requested
	mapping []byte   // non-nil when Mmap was requested

	tempBuf      []byte // scratch for decodeRange's oversize shard buffer
	tempShardBuf []byte // scratch for one shard's compressed bytes

	flags OpenFlag
}

// normalizePath converts host path separators to '/', the on-disk and
// lookup convention (spec.md §9 "Path normalization").
func normalizePath(p string) string {
	return filepath.ToSlash(p)
}

// Entries returns the archive's file table in append order. The returned
// slice is owned by the Archive and must not be mutated.
func (a *Archive) Entries() []Entry { return a.entries }

// Lookup resolves name to its Entry, normalizing separators the same way
// entries were stored.
func (a *Archive) Lookup(name string) (Entry, bool) {
	idx, ok := a.index[normalizePath(name)]
	if !ok {
		return Entry{}, false
	}
	return a.entries[idx], true
}

// Path returns the archive's on-disk location.
func (a *Archive) Path() string { return a.path }

// Size returns the archive's byte length after the last mutation.
func (a *Archive) Size() uint64 { return a.size }

func validateOpenFlags(flags OpenFlag) error {
	if flags.has(Write) && flags.has(Mmap) {
		return fmt.Errorf("%w: Write and Mmap are mutually exclusive", ErrBadFlags)
	}
	return nil
}

// readHandleFor returns a handle suitable for a single read call: the
// persistent handle if one is open, otherwise a freshly-opened read-only
// handle that the caller must close via the returned closer.
func (a *Archive) readHandleFor() (*os.File, func(), error) {
	if a.handle != nil {
		return a.handle, func() {}, nil
	}
	f, err := os.Open(a.path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
