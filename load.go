package vark

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Open loads an existing archive from path, implementing the loader
// algorithm of spec.md §4.7.
func Open(path string, flags OpenFlag) (*Archive, error) {
	if err := validateOpenFlags(flags); err != nil {
		return nil, err
	}

	openMode := os.O_RDONLY
	if flags.has(Write) {
		openMode = os.O_RDWR
	}
	f, err := os.OpenFile(path, openMode, 0o666)
	if err != nil {
		return nil, fmt.Errorf("vark: open %s: %w", path, err)
	}

	a, err := parseArchive(f, path, flags)
	if err != nil {
		f.Close()
		return nil, err
	}

	if flags.has(Mmap) {
		m, err := mmapFile(f, int(a.size))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("vark: mmap %s: %w", path, err)
		}
		a.mapping = m
	}

	if flags.has(PersistentFP) {
		a.handle = f
	} else if err := f.Close(); err != nil {
		return nil, fmt.Errorf("vark: close %s: %w", path, err)
	}

	return a, nil
}

// parseArchive reads the header, trailing table, and optional VSHD sidecar
// from f, leaving f's ownership (close vs retain) to the caller.
func parseArchive(f *os.File, path string, flags OpenFlag) (*Archive, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}
	if string(hdr[0:4]) != magic {
		return nil, fmt.Errorf("%w: expected %q", ErrBadMagic, magic)
	}
	tableOffset := binary.LittleEndian.Uint64(hdr[4:12])

	if _, err := f.Seek(int64(tableOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek table offset %d: %v", ErrTruncated, tableOffset, err)
	}
	br := bufio.NewReader(f)

	count, err := readUint64(br)
	if err != nil {
		return nil, fmt.Errorf("%w: table count: %v", ErrTruncated, err)
	}

	entries := make([]Entry, count)
	for i := range entries {
		e, err := readEntry(br)
		if err != nil {
			return nil, fmt.Errorf("%w: table entry %d: %v", ErrTruncated, i, err)
		}
		entries[i] = e
	}

	if count > 0 {
		readShardSidecar(br, entries, count)
	}

	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.Path] = i
	}

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("vark: stat %s: %w", path, err)
	}

	return &Archive{
		path:        path,
		entries:     entries,
		index:       index,
		size:        uint64(info.Size()),
		tableOffset: tableOffset,
		flags:       flags,
	}, nil
}

// readShardSidecar peeks for the VSHD block immediately after the table and,
// when present and its entry count matches, fills in each entry's
// ShardSize. A missing magic or a mismatched count is ignored silently
// (spec.md §4.1 backward-compatibility rule) and every entry stays plain.
func readShardSidecar(br *bufio.Reader, entries []Entry, count uint64) {
	var sc [4]byte
	if _, err := io.ReadFull(br, sc[:]); err != nil || string(sc[:]) != sidecarMagic {
		return
	}
	scCount, err := readUint64(br)
	if err != nil || scCount != count {
		return
	}
	sizes := make([]uint32, count)
	for i := range sizes {
		sz, err := readUint32(br)
		if err != nil {
			return // truncated sidecar: leave shard sizes at 0 so far read
		}
		sizes[i] = sz
	}
	for i := range entries {
		entries[i].ShardSize = sizes[i]
	}
}
