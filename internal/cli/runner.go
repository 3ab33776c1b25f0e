// Package cli drives a refactor run: it compiles the effective rule
// set, fans files out to a worker pool, and renders the run report.
package cli

import (
	"context"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/termfx/refx/core"
	"github.com/termfx/refx/internal/model"
	"github.com/termfx/refx/internal/util"
	"github.com/termfx/refx/internal/verify"
	"github.com/termfx/refx/internal/writer"
	"github.com/termfx/refx/pycst"
	"github.com/termfx/refx/rules"
)

// LoadDefs returns the builtin catalog followed by the definitions
// from the given rule files, in load order.
func LoadDefs(ruleFiles []string) ([]rules.Def, error) {
	defs := rules.Builtins()
	for _, path := range ruleFiles {
		fileDefs, err := rules.ParseFile(path)
		if err != nil {
			return nil, model.Wrap(model.ErrRuleCompile, "loading rule file", err)
		}
		defs = append(defs, fileDefs...)
	}
	return defs, nil
}

// CompileRules builds the effective rule set for cfg: builtins plus
// rule files, minus exclusions.
func CompileRules(cfg *model.Config) ([]*core.Rule, error) {
	defs, err := LoadDefs(cfg.RuleFiles)
	if err != nil {
		return nil, err
	}
	ruleSet, err := rules.CompileAll(defs, cfg.ExcludeRules)
	if err != nil {
		return nil, model.Wrap(model.ErrRuleCompile, "compiling rules", err)
	}
	return ruleSet, nil
}

// Runner processes files through a shared engine and writer.
type Runner struct {
	cfg      *model.Config
	engine   *core.Engine
	writer   writer.Writer
	verifier *verify.Verifier
	log      *zap.Logger

	mu      sync.Mutex
	timings []model.RuleTiming
}

// NewRunner wires the engine with the configured pass limit and a
// recorder feeding the run's timing log. A nil logger disables logging.
func NewRunner(cfg *model.Config, ruleSet []*core.Rule, w writer.Writer, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{cfg: cfg, writer: w, log: log}
	if cfg.Verify {
		r.verifier = verify.New()
	}
	r.engine = core.NewEngine(ruleSet,
		core.WithPassLimit(cfg.MaxPasses),
		core.WithRecorder(r.record))
	return r
}

func (r *Runner) record(rule string, d time.Duration, matched bool) {
	r.mu.Lock()
	r.timings = append(r.timings, model.RuleTiming{Rule: rule, Duration: d, Modified: matched})
	r.mu.Unlock()
}

type job struct {
	idx  int
	path string
}

// Run processes files through the worker pool and returns the
// aggregated outcomes in input order. Cancelling ctx stops dispatching
// new files; in-flight files still finish.
func (r *Runner) Run(ctx context.Context, files []string) *model.Result {
	started := time.Now()

	numW := r.cfg.Workers
	if numW <= 0 {
		numW = defaultWorkers(len(files))
	}
	if numW > len(files) {
		numW = len(files)
	}
	r.log.Debug("starting workers", zap.Int("workers", numW), zap.Int("files", len(files)))

	outcomes := make([]model.FileOutcome, len(files))
	done := make([]bool, len(files))
	jobs := make(chan job)

	var wg sync.WaitGroup
	for i := 0; i < numW; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes[j.idx] = r.processFile(ctx, j.path)
				done[j.idx] = true
			}
		}()
	}

dispatch:
	for i, f := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- job{idx: i, path: f}:
		}
	}
	close(jobs)
	wg.Wait()

	result := &model.Result{Started: started}
	for i := range outcomes {
		if done[i] {
			result.Outcomes = append(result.Outcomes, outcomes[i])
		}
	}
	r.mu.Lock()
	result.Timings = r.timings
	r.mu.Unlock()
	result.Elapsed = time.Since(started)
	return result
}

// RunStdin rewrites a single source read from in and prints the result
// to out. Unmodified input is echoed byte for byte.
func (r *Runner) RunStdin(ctx context.Context, in io.Reader, out io.Writer) error {
	src, err := io.ReadAll(in)
	if err != nil {
		return model.Wrap(model.ErrIO, "reading stdin", err)
	}
	mod, err := pycst.Parse(string(src))
	if err != nil {
		return model.Wrap(model.ErrParse, "parsing stdin", err)
	}

	res := r.engine.Rewrite(mod)
	output := pycst.Print(res.Tree)
	if res.Modified && r.verifier != nil {
		issues, err := r.verifier.Check(ctx, []byte(output))
		if err != nil {
			return model.Wrap(model.ErrVerify, "verifying output", err)
		}
		if len(issues) > 0 {
			return model.Wrap(model.ErrVerify, strings.Join(issues, "; "), nil)
		}
	}

	if _, err := io.WriteString(out, output); err != nil {
		return model.Wrap(model.ErrIO, "writing output", err)
	}
	return nil
}

func (r *Runner) processFile(ctx context.Context, path string) model.FileOutcome {
	start := time.Now()
	outcome := model.FileOutcome{Path: path}

	fail := func(err error) model.FileOutcome {
		outcome.Status = model.StatusFailed
		outcome.Err = err
		outcome.Duration = time.Since(start)
		r.log.Warn("file failed", zap.String("path", path), zap.Error(err))
		return outcome
	}

	before, err := os.Stat(path)
	if err != nil {
		return fail(model.Wrap(model.ErrIO, "stat file", err))
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fail(model.Wrap(model.ErrIO, "reading file", err))
	}
	outcome.OriginalSHA1 = util.SHA1Hex(src)

	mod, err := pycst.Parse(string(src))
	if err != nil {
		return fail(model.Wrap(model.ErrParse, "parsing file", err))
	}

	res := r.engine.Rewrite(mod)
	outcome.Passes = res.Passes
	if !res.Modified {
		outcome.Status = model.StatusUnchanged
		outcome.Duration = time.Since(start)
		r.log.Debug("unchanged", zap.String("path", path))
		return outcome
	}
	output := pycst.Print(res.Tree)

	if r.verifier != nil {
		issues, err := r.verifier.Check(ctx, []byte(output))
		if err != nil {
			return fail(model.Wrap(model.ErrVerify, "verifying output", err))
		}
		if len(issues) > 0 {
			return fail(model.Wrap(model.ErrVerify, strings.Join(issues, "; "), nil))
		}
	}

	if r.cfg.ShowDiff {
		outcome.Diff = unifiedDiff(string(src), output, path)
	}

	after, err := os.Stat(path)
	if err != nil {
		return fail(model.Wrap(model.ErrIO, "stat file", err))
	}
	if util.RaceDetected(before, after) {
		return fail(model.Wrap(model.ErrWriteRace, "file changed on disk during processing", nil))
	}

	if err := r.writer.WriteFile(path, []byte(output), before.Mode().Perm()); err != nil {
		return fail(model.Wrap(model.ErrIO, "writing file", err))
	}

	outcome.ModifiedSHA1 = util.SHA1Hex([]byte(output))
	outcome.Status = model.StatusRefactored
	outcome.Duration = time.Since(start)
	r.log.Debug("refactored", zap.String("path", path), zap.Int("passes", res.Passes))
	return outcome
}

// defaultWorkers schedules one worker per four files, capped at the
// CPU count.
func defaultWorkers(n int) int {
	const chunk = 4
	w := (n + chunk - 1) / chunk
	if cpus := runtime.NumCPU(); w > cpus {
		w = cpus
	}
	if w < 1 {
		w = 1
	}
	return w
}

func unifiedDiff(original, modified, path string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
