package vark

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile maps the first size bytes of f read-only, the way the teacher's
// shard struct maps its files in cache.go. The mapping's lifetime is
// independent of f's, so f may be closed right after this call returns.
func mmapFile(f *os.File, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return data, nil
}

func munmapFile(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Munmap(data)
}
