package vark

import "fmt"

// Close releases the archive's mmap (if any), its persistent handle (if
// any), and clears the scratch buffers. Safe to call once; a second call is
// a no-op returning nil.
func (a *Archive) Close() error {
	var firstErr error

	if a.mapping != nil {
		if err := munmapFile(a.mapping); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("vark: munmap: %w", err)
		}
		a.mapping = nil
	}

	if a.handle != nil {
		if err := a.handle.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("vark: close handle: %w", err)
		}
		a.handle = nil
	}

	a.tempBuf = nil
	a.tempShardBuf = nil

	return firstErr
}
