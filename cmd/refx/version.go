package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termfx/refx/internal/model"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the refx version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("refx %s\n", model.Version)
		},
	}
}
