package main

import (
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <task-id>",
	Short: "Watch an existing task",
	Long: `Poll an existing task and stream its event log until it completes,
fails, requires approval, or the maximum wait elapses. A timeout is not a
failure; the watch can simply be run again.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newAppContext(cmd)
		if err != nil {
			handleError(err)
		}

		if err := watchTask(cmd, app, args[0]); err != nil {
			handleError(err)
		}
	},
}

func init() {
	addWatchFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
