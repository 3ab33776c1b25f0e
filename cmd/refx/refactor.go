package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/termfx/refx/core"
	"github.com/termfx/refx/db"
	"github.com/termfx/refx/internal/cli"
	"github.com/termfx/refx/internal/model"
	"github.com/termfx/refx/internal/scanner"
	"github.com/termfx/refx/internal/writer"
)

type refactorOpts struct {
	configPath   string
	ruleFiles    []string
	excludeRules []string
	include      []string
	exclude      []string
	workers      int
	maxPasses    int
	dryRun       bool
	showDiff     bool
	verifyOut    bool
	debug        bool
	dbPath       string
	noHistory    bool
	stdin        bool
}

func newRefactorCmd() *cobra.Command {
	var opts refactorOpts
	cmd := &cobra.Command{
		Use:   "refactor [files or directories...]",
		Short: "Refactor Python files in place",
		Long: "Refactor applies the effective rule set to the given files.\n" +
			"Directories are walked recursively for *.py files. Pass - or\n" +
			"--stdin to rewrite standard input onto standard output.",
		Run: func(cmd *cobra.Command, args []string) {
			runRefactor(cmd, args, &opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "project config file (default: discover .refx.env)")
	flags.StringArrayVar(&opts.ruleFiles, "rules", nil, "rule file to load, repeatable")
	flags.StringSliceVar(&opts.excludeRules, "exclude-rules", nil, "rule names to skip")
	flags.StringSliceVar(&opts.include, "include", nil, "only process files matching these globs")
	flags.StringSliceVar(&opts.exclude, "exclude", nil, "skip files matching these globs")
	flags.IntVar(&opts.workers, "workers", 0, "parallel workers (default: one per four files)")
	flags.IntVar(&opts.maxPasses, "max-passes", 0, "rewrite passes per file before giving up")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "report changes without writing files")
	flags.BoolVar(&opts.showDiff, "diff", false, "print unified diffs of the changes")
	flags.BoolVar(&opts.verifyOut, "verify", false, "parse rewritten files before writing them")
	flags.BoolVar(&opts.debug, "debug", false, "show extra debugging information")
	flags.StringVar(&opts.dbPath, "db", "", "history database DSN")
	flags.BoolVar(&opts.noHistory, "no-history", false, "skip recording this run")
	flags.BoolVar(&opts.stdin, "stdin", false, "read source from stdin and print the result")
	return cmd
}

// resolveConfig overlays the command-line flags on the file and
// environment configuration. Only flags the user actually set
// override.
func resolveConfig(cmd *cobra.Command, opts *refactorOpts) (*model.Config, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("rules") {
		cfg.RuleFiles = opts.ruleFiles
	}
	if flags.Changed("exclude-rules") {
		cfg.ExcludeRules = opts.excludeRules
	}
	if flags.Changed("include") {
		cfg.Include = opts.include
	}
	if flags.Changed("exclude") {
		cfg.Exclude = opts.exclude
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("max-passes") {
		cfg.MaxPasses = opts.maxPasses
	}
	if flags.Changed("db") {
		cfg.DBPath = opts.dbPath
	}
	if opts.noHistory {
		cfg.History = false
	}
	if flags.Changed("verify") {
		cfg.Verify = opts.verifyOut
	}
	cfg.DryRun = opts.dryRun
	cfg.ShowDiff = opts.showDiff
	cfg.Debug = opts.debug
	cfg.Stdin = opts.stdin
	return cfg, nil
}

func buildLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func runRefactor(cmd *cobra.Command, args []string, opts *refactorOpts) {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		fatal(err)
	}

	log := buildLogger(cfg.Debug)
	defer log.Sync()

	ruleSet, err := cli.CompileRules(cfg)
	if err != nil {
		fatal(err)
	}
	log.Debug("compiled rules", zap.Int("count", len(ruleSet)))

	ctx := cmd.Context()

	if cfg.Stdin || (len(args) == 1 && args[0] == "-") {
		runner := cli.NewRunner(cfg, ruleSet, writer.NewDryRunWriter(), log)
		if err := runner.RunStdin(ctx, os.Stdin, os.Stdout); err != nil {
			fatal(err)
		}
		return
	}

	if len(args) == 0 {
		fmt.Println(bold("No path provided. Nothing to do 💤"))
		return
	}

	sc := scanner.New(scanner.Config{
		IncludeGlobs: cfg.Include,
		ExcludeGlobs: cfg.Exclude,
	})
	files, err := sc.ScanTargets(ctx, args)
	if err != nil {
		fatal(model.Wrap(model.ErrIO, "scanning targets", err))
	}
	if len(files) == 0 {
		fmt.Println(bold("No Python files found. Nothing to do 💤"))
		return
	}

	var w writer.Writer
	if cfg.DryRun {
		w = writer.NewDryRunWriter()
	} else {
		w = writer.NewDiskWriter()
	}

	runner := cli.NewRunner(cfg, ruleSet, w, log)
	result := runner.Run(ctx, files)

	if cfg.Debug {
		cli.WriteStats(os.Stderr, result.Timings)
	}
	if cfg.ShowDiff {
		cli.WriteDiffs(os.Stdout, result)
	}
	cli.WriteFailures(os.Stderr, result)
	cli.WriteSummary(os.Stdout, result)

	if cfg.History {
		recordRun(cfg, result, ruleSet, log)
	}

	if !result.Success() {
		os.Exit(1)
	}
}

// recordRun stores the run in the history database. History failures
// are logged, never fatal.
func recordRun(cfg *model.Config, result *model.Result, ruleSet []*core.Rule, log *zap.Logger) {
	gdb, err := db.Connect(cfg.DBPath, cfg.Debug)
	if err != nil {
		log.Warn("history disabled", zap.Error(err))
		return
	}
	names := make([]string, len(ruleSet))
	for i, r := range ruleSet {
		names[i] = r.Name
	}
	if _, err := db.SaveRun(gdb, cfg, result, names); err != nil {
		log.Warn("recording run failed", zap.Error(err))
	}
}
