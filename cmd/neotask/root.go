package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "neotask",
	Short: "Pulumi Neo task manager",
	Long: `A CLI for creating and managing Pulumi Neo agent tasks.

Tasks run asynchronously server-side; neotask creates them, streams their
event log to the terminal, and posts approvals, cancellations, and
follow-up messages. Requires the PULUMI_ACCESS_TOKEN environment variable.`,
}

// Global flags
var (
	orgFlag    string
	jsonOutput bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&orgFlag, "org", "", "Organization name (auto-detected if not specified)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitGeneralError)
	}
}
