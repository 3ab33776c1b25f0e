package cli

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/termfx/refx/internal/model"
)

var (
	bold = color.New(color.Bold).SprintFunc()
	red  = color.New(color.FgRed).SprintFunc()
)

// WriteSummary renders the run report: one bold line per refactored
// file, a verdict banner, and the counts joined into a single line.
func WriteSummary(w io.Writer, result *model.Result) {
	for _, o := range result.Outcomes {
		if o.Status == model.StatusRefactored {
			fmt.Fprintln(w, bold("refactored "+displayPath(o.Path)))
		}
	}

	if result.Success() {
		fmt.Fprintln(w, bold("All done! 🎉 🏆 🎉"))
	} else {
		fmt.Fprintln(w, bold("Oh no! 🧨 💣 🧨"))
	}

	var report []string
	if n := result.Refactored(); n > 0 {
		report = append(report, bold(fmt.Sprintf("%d %s refactored", n, pluralize("file", n))))
	}
	if n := result.Unchanged(); n > 0 {
		report = append(report, fmt.Sprintf("%d %s left unchanged", n, pluralize("file", n)))
	}
	if n := result.Failed(); n > 0 {
		report = append(report, red(fmt.Sprintf("%d %s failed", n, pluralize("file", n))))
	}
	fmt.Fprintf(w, "%s.\n", strings.Join(report, ", "))
}

// WriteFailures dumps each failed file with its error, one per line.
func WriteFailures(w io.Writer, result *model.Result) {
	for _, o := range result.Outcomes {
		if o.Status == model.StatusFailed {
			fmt.Fprintln(w, red(fmt.Sprintf("failed %s: %v", displayPath(o.Path), o.Err)))
		}
	}
}

// WriteDiffs prints the recorded unified diffs in outcome order.
func WriteDiffs(w io.Writer, result *model.Result) {
	for _, o := range result.Outcomes {
		if o.Diff != "" {
			fmt.Fprint(w, o.Diff)
		}
	}
}

// WriteStats renders per-rule timing statistics sorted by rule name,
// with an Overall row at the end. Each row carries the attempt count,
// the total time, and mean/stddev/max triples for all, modified, and
// unchanged attempts.
func WriteStats(w io.Writer, timings []model.RuleTiming) {
	groups := make(map[string][]model.RuleTiming)
	for _, t := range timings {
		groups[t.Rule] = append(groups[t.Rule], t)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		writeStatRow(w, name, groups[name])
	}
	writeStatRow(w, "Overall", timings)
}

func writeStatRow(w io.Writer, name string, rows []model.RuleTiming) {
	var all, modified, unchanged []float64
	for _, row := range rows {
		ms := float64(row.Duration) / float64(time.Millisecond)
		all = append(all, ms)
		if row.Modified {
			modified = append(modified, ms)
		} else {
			unchanged = append(unchanged, ms)
		}
	}
	total := 0.0
	for _, v := range all {
		total += v
	}
	fmt.Fprintf(w, "%s\tcount=%d\ttotal=%.1fms\t%s\t%s\t%s\n",
		name, len(all), total, stats(all), stats(modified), stats(unchanged))
}

// stats formats mean, sample standard deviation, and maximum of the
// values in milliseconds, or -/-/- when there are none.
func stats(values []float64) string {
	if len(values) == 0 {
		return "-/-/-"
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	maximum := values[0]
	for _, v := range values[1:] {
		if v > maximum {
			maximum = v
		}
	}

	stddev := 0.0
	if len(values) > 1 {
		sum := 0.0
		for _, v := range values {
			d := v - mean
			sum += d * d
		}
		stddev = math.Sqrt(sum / float64(len(values)-1))
	}
	return fmt.Sprintf("μ=%.1fms/σ=%.2fms/max=%.1fms", mean, stddev, maximum)
}

func pluralize(word string, count int) string {
	if count != 1 {
		return word + "s"
	}
	return word
}

// displayPath prefers the path relative to the working directory, the
// way file names were given on the command line.
func displayPath(path string) string {
	rel, err := filepath.Rel(".", path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
