package vark

// OpenFlag selects behavior when creating or opening an archive.
//
//   - PersistentFP: keep an OS file handle alive on the Archive to amortize
//     open cost across calls.
//   - Mmap: memory-map the archive read-only; read paths serve from the
//     mapping instead of issuing per-call reads.
//   - Write: open for appending. Mutually exclusive with Mmap.
type OpenFlag uint8

const (
	PersistentFP OpenFlag = 1 << iota
	Mmap
	Write
)

func (f OpenFlag) has(bit OpenFlag) bool { return f&bit != 0 }

// AppendOption controls how a single Append call stores its payload.
type AppendOption uint8

const (
	// CompressSharded writes the entry in sharded format using DefaultShardSize.
	CompressSharded AppendOption = 1 << iota
)

func (o AppendOption) has(bit AppendOption) bool { return o&bit != 0 }

// DefaultShardSize is the shard size used by CompressSharded: 128 KiB.
const DefaultShardSize = 131072

const (
	magic        = "VARK"
	shardMagic   = "VSHF"
	sidecarMagic = "VSHD"

	headerSize = 12 // magic(4) + table_offset(8)
)
