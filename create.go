package vark

import (
	"fmt"
	"os"
)

// Create bootstraps a brand-new archive at path: a 12-byte header whose
// table_offset points at an empty table (count=0), written immediately
// after it. No VSHD sidecar is written since a sidecar only exists when
// count > 0 (spec.md §4.1).
func Create(path string, flags OpenFlag) (*Archive, error) {
	if err := validateOpenFlags(flags); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, fmt.Errorf("vark: create %s: %w", path, err)
	}

	if _, err := f.WriteString(magic); err != nil {
		f.Close()
		return nil, fmt.Errorf("vark: write magic: %w", err)
	}
	if err := writeUint64(f, headerSize); err != nil {
		f.Close()
		return nil, fmt.Errorf("vark: write table offset: %w", err)
	}
	if err := writeUint64(f, 0); err != nil { // count = 0
		f.Close()
		return nil, fmt.Errorf("vark: write empty table: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("vark: close %s: %w", path, err)
	}

	return Open(path, flags)
}
