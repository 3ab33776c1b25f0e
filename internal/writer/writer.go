// Package writer abstracts how rewritten sources reach disk. The
// runner picks a DryRunWriter or a DiskWriter depending on --dry-run
// and shares it across its workers.
package writer

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/termfx/refx/internal/util"
)

// Writer receives the rewritten content of each modified file.
// WriteFile may be called from concurrent workers.
type Writer interface {
	WriteFile(path string, content []byte, perm os.FileMode) error
	Summary() string
}

// FileChange records a pending modification observed in dry-run mode.
type FileChange struct {
	Path         string
	OriginalSize int
	NewSize      int
	BytesDiff    int
}

// DryRunWriter tracks what would change without touching disk.
type DryRunWriter struct {
	mu      sync.Mutex
	changes []FileChange
}

// NewDryRunWriter creates a writer that only records changes.
func NewDryRunWriter() *DryRunWriter {
	return &DryRunWriter{changes: make([]FileChange, 0)}
}

// WriteFile records the change that a real run would make.
func (w *DryRunWriter) WriteFile(path string, content []byte, perm os.FileMode) error {
	var originalSize int
	if stat, err := os.Stat(path); err == nil {
		originalSize = int(stat.Size())
	}
	newSize := len(content)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.changes = append(w.changes, FileChange{
		Path:         path,
		OriginalSize: originalSize,
		NewSize:      newSize,
		BytesDiff:    newSize - originalSize,
	})
	return nil
}

// Changes returns the recorded modifications.
func (w *DryRunWriter) Changes() []FileChange {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]FileChange, len(w.changes))
	copy(out, w.changes)
	return out
}

// Summary lists the files that would be modified and the byte delta.
func (w *DryRunWriter) Summary() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.changes) == 0 {
		return "No changes would be made."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Would modify %d file(s):\n", len(w.changes)))

	total := 0
	for _, change := range w.changes {
		total += change.BytesDiff
		sb.WriteString(fmt.Sprintf("  %s (%s bytes)\n", change.Path, signed(change.BytesDiff)))
	}
	sb.WriteString(fmt.Sprintf("Total: %s bytes\n", signed(total)))
	return sb.String()
}

// DiskWriter writes rewritten files atomically in place.
type DiskWriter struct {
	mu      sync.Mutex
	written []string
}

// NewDiskWriter creates a writer that commits changes to disk.
func NewDiskWriter() *DiskWriter {
	return &DiskWriter{written: make([]string, 0)}
}

// WriteFile replaces path with content via a temp file and rename.
func (w *DiskWriter) WriteFile(path string, content []byte, perm os.FileMode) error {
	if err := util.WriteFileAtomic(path, content, perm); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, path)
	return nil
}

// Summary lists the files that were written.
func (w *DiskWriter) Summary() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.written) == 0 {
		return "No files were written."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Wrote %d file(s):\n", len(w.written)))
	for _, path := range w.written {
		sb.WriteString(fmt.Sprintf("  %s\n", path))
	}
	return sb.String()
}

func signed(n int) string {
	if n < 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("+%d", n)
}
