package vark

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// writeHandle returns a handle suitable for a single write call: the
// persistent handle if one is open, otherwise a freshly-opened read-write
// handle the caller must close via the returned closer.
func (a *Archive) writeHandle() (*os.File, func(), error) {
	if a.handle != nil {
		return a.handle, func() {}, nil
	}
	f, err := os.OpenFile(a.path, os.O_RDWR, 0o666)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// AppendFile reads srcPath fully into memory and appends it under
// storedName (or srcPath's base name, if storedName is empty).
func (a *Archive) AppendFile(srcPath, storedName string, opts AppendOption) (Entry, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return Entry{}, fmt.Errorf("vark: read %s: %w", srcPath, err)
	}
	if storedName == "" {
		storedName = filepath.Base(srcPath)
	}
	return a.Append(storedName, data, opts)
}

// Append implements the appender of spec.md §4.6: it compresses data,
// writes its payload over the old trailing table, rewrites the table and
// shard-size sidecar at the new tail, then patches the header's
// table_offset pointer. The Archive must have been opened with Write.
func (a *Archive) Append(name string, data []byte, opts AppendOption) (Entry, error) {
	if !a.flags.has(Write) {
		return Entry{}, fmt.Errorf("vark: append requires the Write flag")
	}

	path := normalizePath(name)
	if _, dup := a.index[path]; dup {
		return Entry{}, fmt.Errorf("vark: append %s: path already present", path)
	}

	payload, shardSize, err := buildPayload(data, opts)
	if err != nil {
		return Entry{}, fmt.Errorf("vark: append %s: %w", path, err)
	}

	f, closeF, err := a.writeHandle()
	if err != nil {
		return Entry{}, fmt.Errorf("vark: append %s: %w", path, err)
	}
	defer closeF()

	tableOffset, err := readHeaderTableOffset(f)
	if err != nil {
		return Entry{}, fmt.Errorf("vark: append %s: %w", path, err)
	}

	if _, err := f.WriteAt(payload, int64(tableOffset)); err != nil {
		return Entry{}, fmt.Errorf("vark: append %s: write payload: %w", path, err)
	}

	entry := Entry{
		Path:      path,
		Offset:    tableOffset,
		Size:      uint64(len(payload)),
		Hash:      fnv1a64(data),
		ShardSize: shardSize,
	}

	a.entries = append(a.entries, entry)
	a.index[entry.Path] = len(a.entries) - 1
	rollback := func() {
		a.entries = a.entries[:len(a.entries)-1]
		delete(a.index, entry.Path)
	}

	newTableOffset := tableOffset + uint64(len(payload))

	var table bytes.Buffer
	if err := writeUint64(&table, uint64(len(a.entries))); err != nil {
		rollback()
		return Entry{}, err
	}
	for _, e := range a.entries {
		if err := writeEntry(&table, e); err != nil {
			rollback()
			return Entry{}, fmt.Errorf("vark: append %s: encode table: %w", path, err)
		}
	}
	table.WriteString(sidecarMagic)
	if err := writeUint64(&table, uint64(len(a.entries))); err != nil {
		rollback()
		return Entry{}, err
	}
	for _, e := range a.entries {
		if err := writeUint32(&table, e.ShardSize); err != nil {
			rollback()
			return Entry{}, fmt.Errorf("vark: append %s: encode sidecar: %w", path, err)
		}
	}

	if _, err := f.WriteAt(table.Bytes(), int64(newTableOffset)); err != nil {
		rollback()
		return Entry{}, fmt.Errorf("vark: append %s: write table: %w", path, err)
	}

	var tb [8]byte
	binary.LittleEndian.PutUint64(tb[:], newTableOffset)
	if _, err := f.WriteAt(tb[:], 4); err != nil {
		rollback()
		return Entry{}, fmt.Errorf("vark: append %s: patch header: %w", path, err)
	}

	a.tableOffset = newTableOffset
	a.size = newTableOffset + uint64(table.Len())

	return entry, nil
}

func readHeaderTableOffset(f *os.File) (uint64, error) {
	var hdr [headerSize]byte
	if _, err := f.ReadAt(hdr[:], 0); err != nil {
		return 0, fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}
	if string(hdr[0:4]) != magic {
		return 0, fmt.Errorf("%w: expected %q", ErrBadMagic, magic)
	}
	return binary.LittleEndian.Uint64(hdr[4:12]), nil
}

// buildPayload compresses data into the on-disk payload bytes, plain or
// sharded per opts, and returns the shard size recorded for the entry
// (0 for a plain payload).
func buildPayload(data []byte, opts AppendOption) ([]byte, uint32, error) {
	if !opts.has(CompressSharded) {
		compressed, err := compressBlock(data)
		if err != nil {
			return nil, 0, err
		}
		return encodePlainPayload(uint64(len(data)), compressed), 0, nil
	}

	shardSize := DefaultShardSize
	chunks := splitIntoShards(data, shardSize)
	compressed, err := compressShards(chunks)
	if err != nil {
		return nil, 0, err
	}
	payload := encodeShardedPayload(uint64(len(data)), len(chunks), compressed)
	return payload, uint32(shardSize), nil
}
