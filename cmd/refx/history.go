package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/termfx/refx/db"
	"github.com/termfx/refx/internal/cli"
	"github.com/termfx/refx/internal/model"
	"github.com/termfx/refx/models"
)

func newHistoryCmd() *cobra.Command {
	var opts struct {
		configPath string
		dbPath     string
		limit      int
	}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs and rule timing statistics",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				fatal(err)
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = opts.dbPath
			}

			gdb, err := db.Connect(cfg.DBPath, false)
			if err != nil {
				fatal(model.Wrap(model.ErrDB, "opening history store", err))
			}
			runs, err := db.RecentRuns(gdb, opts.limit)
			if err != nil {
				fatal(model.Wrap(model.ErrDB, "reading history", err))
			}
			if len(runs) == 0 {
				fmt.Println("No recorded runs.")
				return
			}

			for _, run := range runs {
				fmt.Println(formatRun(run))
			}

			var timings []model.RuleTiming
			for _, run := range runs {
				for _, t := range run.Timings {
					timings = append(timings, model.RuleTiming{
						Rule:     t.Rule,
						Duration: time.Duration(t.TimeMS * float64(time.Millisecond)),
						Modified: t.Status == models.TimingModified,
					})
				}
			}
			fmt.Println()
			cli.WriteStats(os.Stdout, timings)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "project config file (default: discover .refx.env)")
	flags.StringVar(&opts.dbPath, "db", "", "history database DSN")
	flags.IntVar(&opts.limit, "limit", 10, "number of runs to show")
	return cmd
}

func formatRun(run models.Run) string {
	line := fmt.Sprintf("#%d  %s  %d refactored, %d unchanged, %d failed  (%dms)",
		run.ID,
		run.CreatedAt.Format("2006-01-02 15:04:05"),
		run.Refactored,
		run.Unchanged,
		run.Failed,
		run.ElapsedMS,
	)
	if run.DryRun {
		line += "  [dry-run]"
	}
	return line
}
