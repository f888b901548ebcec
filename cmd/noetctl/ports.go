package main

import (
	"fmt"
	"io"

	"noet-be/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newPortsCmd() *cobra.Command {
	var configFile, env string

	cmd := &cobra.Command{
		Use:   "ports",
		Short: "Show the resolved frontend and backend endpoints",
		Example: `
  noetctl ports
  noetctl ports --env production --config ./config.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env == "" {
				env = config.ResolveEnvironment()
			}
			endpoints, err := config.ResolveEndpoints(configFile, env)
			if err != nil {
				color.Yellow("Warning: %v (using fallback values)", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "environment: %s\n", env)
			printEndpoint(cmd.OutOrStdout(), "frontend", endpoints.Frontend)
			printEndpoint(cmd.OutOrStdout(), "backend", endpoints.Backend)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "config.json", "path of the shared endpoint config file")
	f.StringVar(&env, "env", "", "environment entry to use (defaults to GO_ENV or NODE_ENV)")
	return cmd
}

// printEndpoint reports whether the port is free and, when it is taken,
// the next free port above it.
func printEndpoint(w io.Writer, name string, e config.Endpoint) {
	state := color.GreenString("free")
	if !config.CheckPortAvailable(e.Host, e.Port) {
		state = color.RedString("in use")
		if next, err := config.FindAvailablePort(e.Host, e.Port+1, 100); err == nil {
			state += fmt.Sprintf(", next free port %d", next)
		}
	}
	fmt.Fprintf(w, "%-9s %s (%s)\n", name+":", e.URL(), state)
}
