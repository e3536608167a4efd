package vark

import "errors"

// Error kinds, matching spec.md §7. Callers use errors.Is against these
// sentinels; the library always wraps them with fmt.Errorf("...: %w", ...)
// to keep context, never logs, and never aborts.
var (
	ErrBadFlags         = errors.New("vark: disallowed open flag combination")
	ErrBadMagic         = errors.New("vark: bad magic")
	ErrTruncated        = errors.New("vark: truncated archive")
	ErrNotFound         = errors.New("vark: entry not found")
	ErrNotSharded       = errors.New("vark: entry is not sharded")
	ErrRangeViolation   = errors.New("vark: range exceeds entry bounds")
	ErrDecompressFailed = errors.New("vark: decompress failed")
	ErrCompressRefused  = errors.New("vark: compressor refused non-empty input")
	ErrWriteOnly        = errors.New("vark: archive opened with Write cannot decompress")
)
