package writer

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDryRunWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(path, []byte("x = x + 0\n"), 0o644))

	w := NewDryRunWriter()
	require.NoError(t, w.WriteFile(path, []byte("x\n"), 0o644))

	// The original file is untouched.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x = x + 0\n", string(data))

	changes := w.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, path, changes[0].Path)
	assert.Equal(t, 10, changes[0].OriginalSize)
	assert.Equal(t, 2, changes[0].NewSize)
	assert.Equal(t, -8, changes[0].BytesDiff)

	assert.Contains(t, w.Summary(), "Would modify 1 file(s):")
	assert.Contains(t, w.Summary(), "-8 bytes")
}

func TestDryRunWriter_Empty(t *testing.T) {
	w := NewDryRunWriter()
	assert.Equal(t, "No changes would be made.", w.Summary())
}

func TestDiskWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.py")
	require.NoError(t, os.WriteFile(path, []byte("y = y * 1\n"), 0o644))

	w := NewDiskWriter()
	require.NoError(t, w.WriteFile(path, []byte("y\n"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "y\n", string(data))

	summary := w.Summary()
	assert.Contains(t, summary, "Wrote 1 file(s):")
	assert.Contains(t, summary, path)
}

func TestDiskWriter_Empty(t *testing.T) {
	w := NewDiskWriter()
	assert.Equal(t, "No files were written.", w.Summary())
}

func TestWriters_Concurrent(t *testing.T) {
	dir := t.TempDir()
	w := NewDiskWriter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			path := filepath.Join(dir, string(rune('a'+n))+".py")
			assert.NoError(t, w.WriteFile(path, []byte("pass\n"), 0o644))
		}(i)
	}
	wg.Wait()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 8)
	assert.Contains(t, w.Summary(), "Wrote 8 file(s):")
}
