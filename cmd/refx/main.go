// Command refx rewrites Python code by example. Rules are before and
// after snippets with named placeholders; matching code is rewritten
// bottom-up until nothing changes.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/termfx/refx/internal/config"
	"github.com/termfx/refx/internal/model"
)

var (
	bold = color.New(color.Bold).SprintFunc()
	red  = color.New(color.FgRed).SprintFunc()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "refx",
		Short: "Rewrite Python code by example",
		Long: "refx applies example-based rewrite rules to Python sources.\n" +
			"Each rule is a before/after pair; code matching the before\n" +
			"shape is rewritten to the after shape, repeatedly, until the\n" +
			"file stops changing.",
	}
	rootCmd.AddCommand(newRefactorCmd(), newRulesCmd(), newHistoryCmd(), newVersionCmd())

	// Cobra already printed the usage error.
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}

// fatal reports an operational error and exits with status 1.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, red("Error:"), err)
	os.Exit(1)
}

// loadConfig resolves the file-and-environment configuration, from an
// explicit path when given, otherwise by discovery from the working
// directory.
func loadConfig(path string) (*model.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load(".")
}
