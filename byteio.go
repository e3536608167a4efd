package vark

import (
	"encoding/binary"
	"fmt"
	"io"
)

// --- primitives over an io.Writer/io.Reader (file handle path) ---

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// --- primitives over a raw byte slice (shard header parsing, either source) ---

func sliceUint32(b []byte, off int) (uint32, error) {
	if off+4 > len(b) {
		return 0, fmt.Errorf("%w: uint32 at %d", ErrTruncated, off)
	}
	return binary.LittleEndian.Uint32(b[off : off+4]), nil
}

func sliceUint64(b []byte, off int) (uint64, error) {
	if off+8 > len(b) {
		return 0, fmt.Errorf("%w: uint64 at %d", ErrTruncated, off)
	}
	return binary.LittleEndian.Uint64(b[off : off+8]), nil
}
