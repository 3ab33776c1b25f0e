package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termfx/refx/internal/cli"
)

func newRulesCmd() *cobra.Command {
	var opts struct {
		configPath   string
		ruleFiles    []string
		excludeRules []string
	}
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the effective rule catalog",
		Long: "Rules prints every rule a refactor run would apply, in\n" +
			"application order: the builtin catalog followed by rule files,\n" +
			"minus exclusions.",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				fatal(err)
			}
			flags := cmd.Flags()
			if flags.Changed("rules") {
				cfg.RuleFiles = opts.ruleFiles
			}
			if flags.Changed("exclude-rules") {
				cfg.ExcludeRules = opts.excludeRules
			}

			defs, err := cli.LoadDefs(cfg.RuleFiles)
			if err != nil {
				fatal(err)
			}
			excluded := make(map[string]bool, len(cfg.ExcludeRules))
			for _, name := range cfg.ExcludeRules {
				excluded[name] = true
			}
			for _, def := range defs {
				if excluded[def.Name] {
					continue
				}
				fmt.Printf("%s\n    %s  =>  %s\n", bold(def.Name), def.Before, def.After)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "project config file (default: discover .refx.env)")
	flags.StringArrayVar(&opts.ruleFiles, "rules", nil, "rule file to load, repeatable")
	flags.StringSliceVar(&opts.excludeRules, "exclude-rules", nil, "rule names to skip")
	return cmd
}
