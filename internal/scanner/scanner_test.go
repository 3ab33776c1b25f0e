package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func relative(t *testing.T, root string, files []string) []string {
	t.Helper()
	var out []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, rel)
	}
	return out
}

func TestScanTargets_PythonOnly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.py":          "x = 1\n",
		"pkg/util.py":     "y = 2\n",
		"README.md":       "docs\n",
		"tool.go":         "package tool\n",
		"pkg/data/in.csv": "a,b\n",
	})

	s := New(Config{NoGitignore: true})
	files, err := s.ScanTargets(context.Background(), []string{root})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app.py", filepath.Join("pkg", "util.py")}, relative(t, root, files))
}

func TestScanTargets_SkipDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep.py":                "\n",
		"__pycache__/cached.py":  "\n",
		"node_modules/dep.py":    "\n",
		".venv/lib/site.py":      "\n",
		"build/out.py":           "\n",
		".refx/history.db.py":    "\n",
		"nested/also/nested.py":  "\n",
		"nested/.hidden/hide.py": "\n",
	})

	s := New(Config{NoGitignore: true})
	files, err := s.ScanTargets(context.Background(), []string{root})
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"keep.py", filepath.Join("nested", "also", "nested.py")},
		relative(t, root, files))
}

func TestScanTargets_IncludeExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.py":               "\n",
		"src/deep/b.py":          "\n",
		"src/migrations/0001.py": "\n",
		"scripts/c.py":           "\n",
	})

	s := New(Config{
		NoGitignore:  true,
		IncludeGlobs: []string{"src/**"},
		ExcludeGlobs: []string{"**/migrations/**"},
	})
	files, err := s.ScanTargets(context.Background(), []string{root})
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{filepath.Join("src", "a.py"), filepath.Join("src", "deep", "b.py")},
		relative(t, root, files))
}

func TestScanTargets_BasenameGlob(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py":             "\n",
		"a_test.py":        "\n",
		"deep/down/b.py":   "\n",
		"deep/b_test.py":   "\n",
		"deep/conftest.py": "\n",
	})

	// Patterns without a slash match basenames at any depth.
	s := New(Config{
		NoGitignore:  true,
		ExcludeGlobs: []string{"*_test.py", "conftest.py"},
	})
	files, err := s.ScanTargets(context.Background(), []string{root})
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"a.py", filepath.Join("deep", "down", "b.py")},
		relative(t, root, files))
}

func TestScanTargets_DirectFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"one.py":    "\n",
		"two.py":    "\n",
		"notes.txt": "\n",
	})

	s := New(Config{NoGitignore: true})
	one := filepath.Join(root, "one.py")

	files, err := s.ScanTargets(context.Background(),
		[]string{one, filepath.Join(root, "notes.txt"), one})
	require.NoError(t, err)
	// Non-Python targets are filtered and duplicates collapse.
	assert.Equal(t, []string{one}, files)
}

func TestScanTargets_MissingTarget(t *testing.T) {
	s := New(Config{NoGitignore: true})
	_, err := s.ScanTargets(context.Background(), []string{filepath.Join(t.TempDir(), "nope.py")})
	assert.Error(t, err)
}

func TestScanTargets_SizeGuard(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"small.py": "x = 1\n",
		"big.py":   "x = 1  # " + string(make([]byte, 4096)) + "\n",
	})

	s := New(Config{NoGitignore: true, MaxBytes: 1024})
	files, err := s.ScanTargets(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.py"}, relative(t, root, files))
}

func TestScanTargets_Symlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real/target.py": "\n"})
	link := filepath.Join(root, "link.py")
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "target.py"), link))

	s := New(Config{NoGitignore: true})
	files, err := s.ScanTargets(context.Background(), []string{link})
	require.NoError(t, err)
	assert.Empty(t, files)

	s = New(Config{NoGitignore: true, FollowSymlinks: true})
	files, err = s.ScanTargets(context.Background(), []string{link})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "target.py", filepath.Base(files[0]))
}

func TestScanTargets_Gitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":      "generated_*.py\nout/\n",
		"app.py":          "\n",
		"generated_pb.py": "\n",
		"out/late.py":     "\n",
	})

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldWd)
	require.NoError(t, os.Chdir(root))

	s := New(Config{})
	files, err := s.ScanTargets(context.Background(), []string{"."})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, relative(t, ".", files))
}

func TestScanTargets_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.py": "\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(Config{NoGitignore: true})
	_, err := s.ScanTargets(ctx, []string{root})
	assert.ErrorIs(t, err, context.Canceled)
}
