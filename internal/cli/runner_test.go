package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/refx/core"
	"github.com/termfx/refx/internal/model"
	"github.com/termfx/refx/internal/util"
	"github.com/termfx/refx/internal/writer"
	"github.com/termfx/refx/rules"
)

func builtinRules(t *testing.T) []*core.Rule {
	t.Helper()
	ruleSet, err := rules.CompileAll(rules.Builtins(), nil)
	require.NoError(t, err)
	return ruleSet
}

func writeFiles(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.py")
	c := filepath.Join(dir, "c.py")
	require.NoError(t, os.WriteFile(a, []byte("y = n * n\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("z = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(c, []byte("x = )\n"), 0o644))

	cfg := &model.Config{MaxPasses: 10}
	r := NewRunner(cfg, builtinRules(t), writer.NewDiskWriter(), nil)
	result := r.Run(context.Background(), []string{a, b, c})

	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, 1, result.Refactored())
	assert.Equal(t, 1, result.Unchanged())
	assert.Equal(t, 1, result.Failed())
	assert.False(t, result.Success())

	// Outcomes arrive in input order regardless of worker scheduling.
	assert.Equal(t, a, result.Outcomes[0].Path)
	assert.Equal(t, b, result.Outcomes[1].Path)
	assert.Equal(t, c, result.Outcomes[2].Path)

	rewritten := result.Outcomes[0]
	assert.Equal(t, model.StatusRefactored, rewritten.Status)
	assert.Equal(t, util.SHA1Hex([]byte("y = n * n\n")), rewritten.OriginalSHA1)
	assert.Equal(t, util.SHA1Hex([]byte("y = n ** 2\n")), rewritten.ModifiedSHA1)
	assert.Equal(t, 2, rewritten.Passes)

	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "y = n ** 2\n", string(data))

	data, err = os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, "z = 1\n", string(data))

	failed := result.Outcomes[2]
	assert.Equal(t, model.StatusFailed, failed.Status)
	assert.Equal(t, model.ErrParse, model.CodeOf(failed.Err))

	assert.NotEmpty(t, result.Timings)
}

func TestRunner_Run_DryRun(t *testing.T) {
	dir := t.TempDir()
	paths := writeFiles(t, dir, map[string]string{"a.py": "d = q + q\n"})

	cfg := &model.Config{MaxPasses: 10, DryRun: true}
	w := writer.NewDryRunWriter()
	r := NewRunner(cfg, builtinRules(t), w, nil)
	result := r.Run(context.Background(), paths)

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, model.StatusRefactored, result.Outcomes[0].Status)

	// Disk untouched, change recorded.
	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "d = q + q\n", string(data))
	assert.Len(t, w.Changes(), 1)
}

func TestRunner_Run_Diff(t *testing.T) {
	dir := t.TempDir()
	paths := writeFiles(t, dir, map[string]string{"a.py": "ok = not not flag\n"})

	cfg := &model.Config{MaxPasses: 10, DryRun: true, ShowDiff: true}
	r := NewRunner(cfg, builtinRules(t), writer.NewDryRunWriter(), nil)
	result := r.Run(context.Background(), paths)

	require.Len(t, result.Outcomes, 1)
	diff := result.Outcomes[0].Diff
	assert.Contains(t, diff, "-ok = not not flag")
	assert.Contains(t, diff, "+ok = bool(flag)")
	assert.Contains(t, diff, "a/"+paths[0])
}

func TestRunner_Run_Verify(t *testing.T) {
	dir := t.TempDir()
	paths := writeFiles(t, dir, map[string]string{"a.py": "y = n * n\n"})

	cfg := &model.Config{MaxPasses: 10, Verify: true}
	r := NewRunner(cfg, builtinRules(t), writer.NewDiskWriter(), nil)
	result := r.Run(context.Background(), paths)

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, model.StatusRefactored, result.Outcomes[0].Status)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "y = n ** 2\n", string(data))
}

func TestRunner_Run_ManyFilesOrdered(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 20; i++ {
		path := filepath.Join(dir, fmt.Sprintf("f%02d.py", i))
		require.NoError(t, os.WriteFile(path, []byte("y = n * n\n"), 0o644))
		files = append(files, path)
	}

	cfg := &model.Config{MaxPasses: 10, Workers: 4}
	r := NewRunner(cfg, builtinRules(t), writer.NewDiskWriter(), nil)
	result := r.Run(context.Background(), files)

	require.Len(t, result.Outcomes, 20)
	for i, o := range result.Outcomes {
		assert.Equal(t, files[i], o.Path)
		assert.Equal(t, model.StatusRefactored, o.Status)
	}
	assert.Equal(t, 20, result.Refactored())
}

func TestRunner_Run_MissingFile(t *testing.T) {
	cfg := &model.Config{MaxPasses: 10}
	r := NewRunner(cfg, builtinRules(t), writer.NewDiskWriter(), nil)
	result := r.Run(context.Background(), []string{filepath.Join(t.TempDir(), "gone.py")})

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, model.StatusFailed, result.Outcomes[0].Status)
	assert.Equal(t, model.ErrIO, model.CodeOf(result.Outcomes[0].Err))
}

func TestRunner_RunStdin(t *testing.T) {
	cfg := &model.Config{MaxPasses: 10}
	r := NewRunner(cfg, builtinRules(t), writer.NewDryRunWriter(), nil)

	var out strings.Builder
	err := r.RunStdin(context.Background(), strings.NewReader("v = a if True else b\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "v = a\n", out.String())

	out.Reset()
	err = r.RunStdin(context.Background(), strings.NewReader("# comment only\nz = 1\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "# comment only\nz = 1\n", out.String())

	err = r.RunStdin(context.Background(), strings.NewReader("x = )\n"), &out)
	require.Error(t, err)
	assert.Equal(t, model.ErrParse, model.CodeOf(err))
}

func TestLoadDefs_RuleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.rules")
	require.NoError(t, os.WriteFile(path, []byte("[drop-plus-zero]\nbefore = x + 0\nafter = x\n"), 0o644))

	defs, err := LoadDefs([]string{path})
	require.NoError(t, err)
	require.Len(t, defs, len(rules.Builtins())+1)
	assert.Equal(t, "drop-plus-zero", defs[len(defs)-1].Name)
}

func TestCompileRules_Errors(t *testing.T) {
	cfg := &model.Config{RuleFiles: []string{filepath.Join(t.TempDir(), "missing.rules")}}
	_, err := CompileRules(cfg)
	require.Error(t, err)
	assert.Equal(t, model.ErrRuleCompile, model.CodeOf(err))

	bad := filepath.Join(t.TempDir(), "bad.rules")
	require.NoError(t, os.WriteFile(bad, []byte("[broken]\nbefore = x + x\n"), 0o644))
	cfg = &model.Config{RuleFiles: []string{bad}}
	_, err = CompileRules(cfg)
	require.Error(t, err)
	assert.Equal(t, model.ErrRuleCompile, model.CodeOf(err))
}

func TestDefaultWorkers(t *testing.T) {
	assert.Equal(t, 1, defaultWorkers(0))
	assert.Equal(t, 1, defaultWorkers(1))
	assert.Equal(t, 1, defaultWorkers(4))

	expected := 3
	if cpus := runtime.NumCPU(); cpus < expected {
		expected = cpus
	}
	assert.Equal(t, expected, defaultWorkers(12))
}
