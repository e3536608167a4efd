package vark

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempArchivePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.vark")
}

func TestCreateEmptyArchive(t *testing.T) {
	path := tempArchivePath(t)

	a, err := Create(path, Write)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	loaded, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer loaded.Close()

	if len(loaded.Entries()) != 0 {
		t.Fatalf("expected 0 entries, got %d", len(loaded.Entries()))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw file: %v", err)
	}
	if string(raw[0:4]) != "VARK" {
		t.Fatalf("expected magic VARK, got %q", raw[0:4])
	}
	if got := binary.LittleEndian.Uint64(raw[4:12]); got != 12 {
		t.Fatalf("expected table_offset 12, got %d", got)
	}
}

func TestAppendAndReadPlain(t *testing.T) {
	path := tempArchivePath(t)

	a, err := Create(path, Write)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	contents := []byte("Small text file")
	entry, err := a.Append("small.txt", contents, 0)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if entry.Sharded() {
		t.Fatalf("expected a plain entry")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	loaded, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer loaded.Close()

	size, err := loaded.FileSize("small.txt")
	if err != nil {
		t.Fatalf("FileSize: %v", err)
	}
	if size != uint64(len(contents)) {
		t.Fatalf("expected size %d, got %d", len(contents), size)
	}

	got, err := loaded.DecompressFile("small.txt")
	if err != nil {
		t.Fatalf("DecompressFile: %v", err)
	}
	if !bytes.Equal(got, contents) {
		t.Fatalf("round-trip mismatch: got %q want %q", got, contents)
	}

	if fnv1a64(got) != fnv1a64(contents) {
		t.Fatalf("FNV-1a mismatch")
	}
}

func TestAppendTwoFilesOrdering(t *testing.T) {
	path := tempArchivePath(t)

	a, err := Create(path, Write)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := a.Append("a.txt", []byte("hello world"), 0); err != nil {
		t.Fatalf("append a.txt: %v", err)
	}
	if _, err := a.Append("b.txt", []byte("goodbye world, this one is longer"), 0); err != nil {
		t.Fatalf("append b.txt: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	writeReopened, err := Open(path, Write)
	if err != nil {
		t.Fatalf("reopen for write: %v", err)
	}

	entries := writeReopened.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Offset != entries[0].Offset+entries[0].Size {
		t.Fatalf("entry offsets not contiguous: %d vs %d+%d", entries[1].Offset, entries[0].Offset, entries[0].Size)
	}
	if entries[0].Offset >= writeReopened.tableOffset || entries[1].Offset >= writeReopened.tableOffset {
		t.Fatalf("entry offsets must precede the table offset")
	}
	if _, err := writeReopened.DecompressFile("a.txt"); !errors.Is(err, ErrWriteOnly) {
		t.Fatalf("expected ErrWriteOnly decompressing on a Write-opened archive, got %v", err)
	}
	if err := writeReopened.Close(); err != nil {
		t.Fatalf("close write reopen: %v", err)
	}

	reopened, err := Open(path, 0)
	if err != nil {
		t.Fatalf("reopen for read: %v", err)
	}
	defer reopened.Close()

	gotA, err := reopened.DecompressFile("a.txt")
	if err != nil {
		t.Fatalf("decompress a.txt: %v", err)
	}
	if !bytes.Equal(gotA, []byte("hello world")) {
		t.Fatalf("a.txt mismatch: %q", gotA)
	}
	gotB, err := reopened.DecompressFile("b.txt")
	if err != nil {
		t.Fatalf("decompress b.txt: %v", err)
	}
	if !bytes.Equal(gotB, []byte("goodbye world, this one is longer")) {
		t.Fatalf("b.txt mismatch: %q", gotB)
	}
}

func TestOpenRejectsWriteAndMmap(t *testing.T) {
	path := tempArchivePath(t)
	a, err := Create(path, Write)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	a.Close()

	_, err = Open(path, Write|Mmap)
	if err == nil {
		t.Fatalf("expected bad-flags error")
	}
	if !errors.Is(err, ErrBadFlags) {
		t.Fatalf("expected ErrBadFlags, got %v", err)
	}
}

func TestLookupNotFound(t *testing.T) {
	path := tempArchivePath(t)
	a, err := Create(path, Write)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	loaded, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer loaded.Close()

	if _, err := loaded.DecompressFile("missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
