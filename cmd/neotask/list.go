package main

import (
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List agent tasks",
	Long:  `List the organization's agent tasks, newest first.`,
	Run: func(cmd *cobra.Command, args []string) {
		pageSize, _ := cmd.Flags().GetInt("page-size")

		app, err := newAppContext(cmd)
		if err != nil {
			handleError(err)
		}

		tasks, err := app.client.ListTasks(cmd.Context(), app.org, pageSize)
		if err != nil {
			handleError(err)
		}

		printTaskList(os.Stdout, tasks, jsonOutput)
	},
}

func init() {
	listCmd.Flags().Int("page-size", 20, "Number of tasks to list")
	rootCmd.AddCommand(listCmd)
}
