package vark_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	vark "github.com/ondralie/vark"
)

// TestEndToEndCreateAppendExtract exercises the public API the way a
// caller outside the package would: create, append a mix of plain and
// sharded entries, close, reopen, and verify every entry round-trips.
func TestEndToEndCreateAppendExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "integration.vark")

	a, err := vark.Create(path, vark.Write)
	require.NoError(t, err)

	plain := []byte("a small plain-mode entry")
	_, err = a.Append("notes.txt", plain, 0)
	require.NoError(t, err)

	sharded := make([]byte, 400000)
	for i := range sharded {
		sharded[i] = byte(i * 7)
	}
	_, err = a.Append("blob.bin", sharded, vark.CompressSharded)
	require.NoError(t, err)

	require.NoError(t, a.Close())

	reopened, err := vark.Open(path, vark.Mmap)
	require.NoError(t, err)
	defer reopened.Close()

	require.Len(t, reopened.Entries(), 2)

	gotPlain, err := reopened.DecompressFile("notes.txt")
	require.NoError(t, err)
	require.Equal(t, plain, gotPlain)

	gotSharded, err := reopened.DecompressFile("blob.bin")
	require.NoError(t, err)
	require.Equal(t, sharded, gotSharded)

	partial, err := reopened.DecompressFileSharded("blob.bin", 200000, 50000)
	require.NoError(t, err)
	require.Equal(t, sharded[200000:250000], partial)

	for _, e := range reopened.Entries() {
		ok, err := reopened.Verify(e.Path)
		require.NoError(t, err)
		require.True(t, ok, "entry %s should verify", e.Path)
	}
}
