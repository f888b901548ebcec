package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "noetctl",
		Short:         "Operational helpers for the Noet backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPortsCmd(), newWaitCmd(), newFixSortOrderCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
