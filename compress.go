package vark

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// compressBlock is the "compress(src) -> bytes" collaborator spec.md treats
// as external: it fails with ErrCompressRefused when the compressor refuses
// a non-empty input (lz4 reports that as n==0, nil error). An empty input
// yields a nil slice and a nil error.
func compressBlock(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}
	dst := make([]byte, compressBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("vark: lz4 compress: %w", err)
	}
	if n == 0 {
		return nil, ErrCompressRefused
	}
	return dst[:n], nil
}

// decompressBlock is the "decompress(src, out_capacity) -> produced_length"
// collaborator. It fails if the decompressor errors or produces anything
// other than exactly outSize bytes.
func decompressBlock(src []byte, outSize int) ([]byte, error) {
	if outSize == 0 {
		return []byte{}, nil
	}
	dst := make([]byte, outSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressFailed, err)
	}
	if n != outSize {
		return nil, fmt.Errorf("%w: produced %d want %d", ErrDecompressFailed, n, outSize)
	}
	return dst, nil
}

// decompressBlockInto decompresses src into a caller-owned buffer slice of
// exactly len(dst) bytes, avoiding an allocation on hot paths.
func decompressBlockInto(src, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecompressFailed, err)
	}
	if n != len(dst) {
		return fmt.Errorf("%w: produced %d want %d", ErrDecompressFailed, n, len(dst))
	}
	return nil
}

// compressBound returns an upper bound on the compressed size of an n-byte
// input.
func compressBound(n int) int {
	return lz4.CompressBlockBound(n)
}
