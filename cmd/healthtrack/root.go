package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	serve := newServeCommand()
	cmd := &cobra.Command{
		Use:   "healthtrack",
		Short: "Health report analyzer",
		Long: `healthtrack classifies blood test and body measurements, keeps a history
of complete submissions and exports it as CSV.

Without a subcommand it starts the HTTP server.`,
		Version:      version,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	cmd.AddCommand(serve)
	cmd.AddCommand(newEvaluateCommand())
	cmd.AddCommand(newEventsCommand())
	return cmd
}
