package vark

import (
	"encoding/binary"
	"fmt"
)

// source returns the payloadSource backing reads: a direct mmap slice when
// the archive was opened with Mmap, otherwise a buffered handle (the
// persistent one if held, else a temporary read-only open for this call).
func (a *Archive) source() (payloadSource, func(), error) {
	if a.mapping != nil {
		return mmapSource{a.mapping}, func() {}, nil
	}
	f, closeF, err := a.readHandleFor()
	if err != nil {
		return nil, nil, err
	}
	return fileSource{f}, closeF, nil
}

// DecompressFile decompresses the whole of the named entry, plain or
// sharded (spec.md §4.5). Refuses on an archive opened with Write, mirroring
// the original Vark implementation's read/write separation.
func (a *Archive) DecompressFile(name string) ([]byte, error) {
	if a.flags.has(Write) {
		return nil, fmt.Errorf("%w: decompress %s", ErrWriteOnly, name)
	}

	e, ok := a.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	src, closeSrc, err := a.source()
	if err != nil {
		return nil, fmt.Errorf("vark: decompress %s: %w", e.Path, err)
	}
	defer closeSrc()

	if !e.Sharded() {
		return a.decompressPlain(src, e)
	}

	hdr, err := parseShardHeader(src, int64(e.Offset))
	if err != nil {
		return nil, fmt.Errorf("vark: decompress %s: %w", e.Path, err)
	}
	return a.decodeRange(src, int64(e.Offset), hdr, e.ShardSize, 0, hdr.totalUncompressed)
}

// DecompressFileSharded decompresses the uncompressed byte range
// [offset, offset+size) of a sharded entry. It fails with ErrNotSharded on
// a plain entry, and with ErrWriteOnly on an archive opened with Write, the
// same read/write separation DecompressFile enforces.
func (a *Archive) DecompressFileSharded(name string, offset, size uint64) ([]byte, error) {
	if a.flags.has(Write) {
		return nil, fmt.Errorf("%w: decompress %s", ErrWriteOnly, name)
	}

	e, ok := a.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if !e.Sharded() {
		return nil, fmt.Errorf("%w: %s", ErrNotSharded, name)
	}

	src, closeSrc, err := a.source()
	if err != nil {
		return nil, fmt.Errorf("vark: decompress %s: %w", e.Path, err)
	}
	defer closeSrc()

	hdr, err := parseShardHeader(src, int64(e.Offset))
	if err != nil {
		return nil, fmt.Errorf("vark: decompress %s: %w", e.Path, err)
	}
	return a.decodeRange(src, int64(e.Offset), hdr, e.ShardSize, offset, size)
}

// Verify decompresses the named entry and reports whether its FNV-1a digest
// still matches the hash recorded in the table at append time.
func (a *Archive) Verify(name string) (bool, error) {
	e, ok := a.Lookup(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := a.DecompressFile(name)
	if err != nil {
		return false, err
	}
	return fnv1a64(data) == e.Hash, nil
}

// FileSize returns the uncompressed size of the named entry without
// decompressing it.
func (a *Archive) FileSize(name string) (uint64, error) {
	e, ok := a.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	src, closeSrc, err := a.source()
	if err != nil {
		return 0, fmt.Errorf("vark: size %s: %w", e.Path, err)
	}
	defer closeSrc()

	if !e.Sharded() {
		var sizeBuf [8]byte
		if err := src.readAt(sizeBuf[:], int64(e.Offset)); err != nil {
			return 0, fmt.Errorf("vark: size %s: %w", e.Path, err)
		}
		return binary.LittleEndian.Uint64(sizeBuf[:]), nil
	}

	hdr, err := parseShardHeader(src, int64(e.Offset))
	if err != nil {
		return 0, fmt.Errorf("vark: size %s: %w", e.Path, err)
	}
	return hdr.totalUncompressed, nil
}

// decompressPlain decodes a plain payload: an 8-byte uncompressed size
// followed by the compressed bytes.
func (a *Archive) decompressPlain(src payloadSource, e Entry) ([]byte, error) {
	if e.Size < 8 {
		return nil, fmt.Errorf("%w: plain entry %s smaller than its size header", ErrTruncated, e.Path)
	}

	var sizeBuf [8]byte
	if err := src.readAt(sizeBuf[:], int64(e.Offset)); err != nil {
		return nil, fmt.Errorf("vark: decompress %s: %w", e.Path, err)
	}
	uncompSize := binary.LittleEndian.Uint64(sizeBuf[:])

	compLen := e.Size - 8
	if uint64(cap(a.tempBuf)) < compLen {
		a.tempBuf = make([]byte, compLen)
	}
	compBuf := a.tempBuf[:compLen]
	if compLen > 0 {
		if err := src.readAt(compBuf, int64(e.Offset)+8); err != nil {
			return nil, fmt.Errorf("vark: decompress %s: %w", e.Path, err)
		}
	}

	out, err := decompressBlock(compBuf, int(uncompSize))
	if err != nil {
		return nil, fmt.Errorf("vark: decompress %s: %w", e.Path, err)
	}
	return out, nil
}
