// Package model holds the shared value types of the refx CLI: the
// resolved run configuration, per-file outcomes, and error codes.
package model

import "time"

// Version is the tool version reported by `refx version` and stored
// with each history run.
const Version = "0.1.0"

// Config carries the fully resolved settings for a refactor run.
// Flags beat environment variables, environment beats the project
// .refx.env file, and the file beats built-in defaults; by the time
// the runner sees a Config the merge already happened.
type Config struct {
	Targets      []string
	RuleFiles    []string
	ExcludeRules []string
	Include      []string
	Exclude      []string
	Workers      int
	MaxPasses    int
	DryRun       bool
	ShowDiff     bool
	Verify       bool
	Debug        bool
	Stdin        bool
	DBPath       string
	History      bool
}

// FileStatus classifies the outcome of processing one file.
type FileStatus string

const (
	StatusRefactored FileStatus = "refactored"
	StatusUnchanged  FileStatus = "unchanged"
	StatusFailed     FileStatus = "failed"
)

// FileOutcome is the per-file record produced by the runner.
type FileOutcome struct {
	Path         string
	Status       FileStatus
	Passes       int
	Duration     time.Duration
	OriginalSHA1 string
	ModifiedSHA1 string
	Diff         string
	Err          error
}

// RuleTiming records one rule application attempt inside the engine.
type RuleTiming struct {
	Rule     string
	Duration time.Duration
	Modified bool
}

// Result aggregates a whole run.
type Result struct {
	Outcomes []FileOutcome
	Timings  []RuleTiming
	Started  time.Time
	Elapsed  time.Duration
}

// Refactored counts files that were rewritten.
func (r *Result) Refactored() int { return r.countStatus(StatusRefactored) }

// Unchanged counts files the engine left alone.
func (r *Result) Unchanged() int { return r.countStatus(StatusUnchanged) }

// Failed counts files that errored at any pipeline stage.
func (r *Result) Failed() int { return r.countStatus(StatusFailed) }

// Success reports whether every file was processed without error.
func (r *Result) Success() bool { return r.Failed() == 0 }

func (r *Result) countStatus(s FileStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}
