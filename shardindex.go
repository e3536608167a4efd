package vark

import (
	"fmt"
	"io"
)

// payloadSource abstracts the mmap and buffered read paths (spec.md §4.5)
// behind one ReadAt-shaped call so the shard index and partial decoder don't
// need to know which one backs them.
type payloadSource interface {
	readAt(p []byte, off int64) error
}

type mmapSource struct{ data []byte }

func (m mmapSource) readAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return fmt.Errorf("%w: mapped read at %d len %d", ErrTruncated, off, len(p))
	}
	copy(p, m.data[off:off+int64(len(p))])
	return nil
}

type fileSource struct{ f io.ReaderAt }

func (s fileSource) readAt(p []byte, off int64) error {
	_, err := s.f.ReadAt(p, off)
	return err
}

// shardHeader is the parsed VSHF payload header.
type shardHeader struct {
	shardCount        int
	totalUncompressed uint64
	cumOffsets        []uint64 // len == shardCount+1
	dataOffset        int64    // offset of packed_shards, relative to payload start
}

// parseShardHeader reads and validates the VSHF header at payloadOffset.
// Per spec.md §9 open question (a), a producer may omit the trailing
// cumulative-offset array entirely when shard_count==0; readers must accept
// both that and the one-element [0] array.
func parseShardHeader(src payloadSource, payloadOffset int64) (shardHeader, error) {
	var hdr [16]byte
	if err := src.readAt(hdr[:], payloadOffset); err != nil {
		return shardHeader{}, fmt.Errorf("%w: shard header", ErrTruncated)
	}
	if string(hdr[0:4]) != shardMagic {
		return shardHeader{}, fmt.Errorf("%w: expected %q shard magic", ErrBadMagic, shardMagic)
	}
	shardCount32, _ := sliceUint32(hdr[:], 4)
	shardCount := int(shardCount32)
	total, _ := sliceUint64(hdr[:], 8)

	arrOff := payloadOffset + 16
	arrBytes := make([]byte, 8*(shardCount+1))
	cum := make([]uint64, shardCount+1)

	if err := src.readAt(arrBytes, arrOff); err != nil {
		if shardCount != 0 {
			return shardHeader{}, fmt.Errorf("%w: shard offset array", ErrTruncated)
		}
		// producer omitted the [0] cell for an empty sharded payload.
		cum[0] = 0
		return shardHeader{shardCount, total, cum, 16}, nil
	}
	for i := range cum {
		cum[i], _ = sliceUint64(arrBytes, 8*i)
	}
	return shardHeader{shardCount, total, cum, 16 + int64(len(arrBytes))}, nil
}

// decodeRange implements the partial decoder of spec.md §4.4 over payload
// source src whose sharded payload begins at payloadOffset. shardSize is the
// entry's configured shard size (from the table/sidecar, not the VSHF
// header). Scratch buffers are reused from the owning Archive to avoid
// reallocating on hot paths.
func (a *Archive) decodeRange(src payloadSource, payloadOffset int64, hdr shardHeader, shardSize uint32, offset, size uint64) ([]byte, error) {
	if offset+size > hdr.totalUncompressed {
		return nil, fmt.Errorf("%w: [%d,%d) exceeds %d", ErrRangeViolation, offset, offset+size, hdr.totalUncompressed)
	}
	if size == 0 {
		return []byte{}, nil
	}

	ss := uint64(shardSize)
	first := offset / ss
	last := (offset + size - 1) / ss

	bufLen := (last - first + 1) * ss
	if uint64(cap(a.tempBuf)) < bufLen {
		a.tempBuf = make([]byte, bufLen)
	}
	buf := a.tempBuf[:bufLen]

	for i := first; i <= last; i++ {
		shardStart := i * ss
		uncompLen := ss
		if remain := hdr.totalUncompressed - shardStart; remain < ss {
			uncompLen = remain
		}

		compStart := hdr.cumOffsets[i]
		compEnd := hdr.cumOffsets[i+1]
		compLen := compEnd - compStart

		if uint64(cap(a.tempShardBuf)) < compLen {
			a.tempShardBuf = make([]byte, compLen)
		}
		compBuf := a.tempShardBuf[:compLen]
		if compLen > 0 {
			if err := src.readAt(compBuf, payloadOffset+hdr.dataOffset+int64(compStart)); err != nil {
				return nil, fmt.Errorf("%w: shard %d body", ErrTruncated, i)
			}
		}

		dstStart := (i - first) * ss
		if err := decompressBlockInto(compBuf, buf[dstStart:dstStart+uncompLen]); err != nil {
			return nil, fmt.Errorf("shard %d: %w", i, err)
		}
	}

	shift := offset - first*ss
	out := make([]byte, size)
	copy(out, buf[shift:shift+size])
	return out, nil
}
