package vark

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Entry describes one logical file stored inside an archive.
type Entry struct {
	Path      string // logical path, always '/'-separated
	Offset    uint64 // byte offset of the payload in the archive
	Size      uint64 // byte length of the payload on disk (including framing)
	Hash      uint64 // FNV-1a of the uncompressed contents
	ShardSize uint32 // 0 = plain payload, nonzero = sharded payload
}

// Sharded reports whether e's payload uses the sharded on-disk format.
func (e Entry) Sharded() bool { return e.ShardSize != 0 }

// writeEntry serializes one table record: string path, u64 offset, u64 size,
// u64 hash. shard_size lives in the separate VSHD sidecar, not here.
func writeEntry(w io.Writer, e Entry) error {
	if err := writeString(w, e.Path); err != nil {
		return err
	}
	if err := writeUint64(w, e.Offset); err != nil {
		return err
	}
	if err := writeUint64(w, e.Size); err != nil {
		return err
	}
	return writeUint64(w, e.Hash)
}

// readEntry deserializes one table record with ShardSize left at 0; the
// sidecar pass (see load.go) fills it in afterward if present.
func readEntry(r io.Reader) (Entry, error) {
	path, err := readString(r)
	if err != nil {
		return Entry{}, err
	}
	offset, err := readUint64(r)
	if err != nil {
		return Entry{}, err
	}
	size, err := readUint64(r)
	if err != nil {
		return Entry{}, err
	}
	hash, err := readUint64(r)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Path: path, Offset: offset, Size: size, Hash: hash}, nil
}

// encodePlainPayload produces the on-disk bytes for a plain payload:
// u64 uncompressed_size followed by the compressed bytes.
func encodePlainPayload(uncompressedSize uint64, compressed []byte) []byte {
	out := make([]byte, 8+len(compressed))
	binary.LittleEndian.PutUint64(out[0:8], uncompressedSize)
	copy(out[8:], compressed)
	return out
}

// splitIntoShards partitions data into chunks of at most shardSize bytes,
// the last possibly shorter. An empty input yields zero chunks.
func splitIntoShards(data []byte, shardSize int) [][]byte {
	if len(data) == 0 {
		return nil
	}
	count := (len(data) + shardSize - 1) / shardSize
	chunks := make([][]byte, count)
	for i := 0; i < count; i++ {
		start := i * shardSize
		end := start + shardSize
		if end > len(data) {
			end = len(data)
		}
		chunks[i] = data[start:end]
	}
	return chunks
}

// compressShards independently compresses each chunk; a refusal on a
// non-empty chunk fails the whole call, per spec.md §4.3.
func compressShards(chunks [][]byte) ([][]byte, error) {
	out := make([][]byte, len(chunks))
	for i, c := range chunks {
		cb, err := compressBlock(c)
		if err != nil {
			return nil, fmt.Errorf("shard %d: %w", i, err)
		}
		out[i] = cb
	}
	return out, nil
}

// encodeShardedPayload builds the VSHF payload: magic, shard_count,
// total_uncompressed_size, the shard_count+1 cumulative compressed-offset
// array, then the concatenated compressed shards. The offset array always
// has shard_count+1 cells, even for shard_count==0 (a single [0] cell),
// which keeps the general invariant true without a special case (see
// SPEC_FULL.md's discussion of the empty-shard open question).
func encodeShardedPayload(totalUncompressed uint64, shardCount int, compressedShards [][]byte) []byte {
	cumOffsets := make([]uint64, shardCount+1)
	var running uint64
	for i, cs := range compressedShards {
		cumOffsets[i] = running
		running += uint64(len(cs))
	}
	cumOffsets[shardCount] = running

	headerLen := 4 + 4 + 8 + 8*(shardCount+1)
	out := make([]byte, headerLen, headerLen+int(running))
	copy(out[0:4], shardMagic)
	binary.LittleEndian.PutUint32(out[4:8], uint32(shardCount))
	binary.LittleEndian.PutUint64(out[8:16], totalUncompressed)
	for i, off := range cumOffsets {
		binary.LittleEndian.PutUint64(out[16+8*i:24+8*i], off)
	}
	for _, cs := range compressedShards {
		out = append(out, cs...)
	}
	return out
}
