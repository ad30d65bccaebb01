package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/neotask/neotask/internal/domain"
	"github.com/neotask/neotask/internal/poller"
)

// consoleBaseURL is where tasks can be inspected in a browser.
const consoleBaseURL = "https://app.pulumi.com"

const separator = "------------------------------------------------------------"

// consoleURL returns the browser URL for a task.
func consoleURL(org, taskID string) string {
	return fmt.Sprintf("%s/%s/neo/%s", consoleBaseURL, org, taskID)
}

// printTaskList prints a list of task summaries
func printTaskList(w io.Writer, tasks []domain.Task, jsonOutput bool) {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(map[string]interface{}{"tasks": tasks})
		return
	}

	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tSTATUS\tCREATED\n")
	fmt.Fprintf(tw, "--\t------\t-------\n")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", task.ID, task.Status, task.CreatedAt)
	}
	tw.Flush()
}

// printError prints an error message
func printError(w io.Writer, err error, jsonOutput bool) {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": err.Error(),
			},
		})
		return
	}

	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string, jsonOutput bool) {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(map[string]interface{}{"message": message})
		return
	}

	fmt.Fprintln(w, message)
}

// printWatchHeader prints the watch banner with the console link.
func printWatchHeader(w io.Writer, org, taskID string) {
	fmt.Fprintf(w, "Watching task %s...\n", taskID)
	fmt.Fprintf(w, "View in console: %s\n", consoleURL(org, taskID))
	fmt.Fprintln(w, separator)
}

// printWatchResult explains how a watch ended and, where relevant, how
// to continue.
func printWatchResult(w io.Writer, org, taskID string, result *poller.Result, maxWait time.Duration) {
	fmt.Fprintln(w, separator)

	switch result.Outcome {
	case poller.OutcomeTerminal:
		fmt.Fprintf(w, "Task %s\n", result.Status)

	case poller.OutcomeAwaitingApproval:
		fmt.Fprintln(w, "Task is waiting for approval.")
		fmt.Fprintf(w, "Approve: neotask approve %s --org %s\n", taskID, org)
		fmt.Fprintf(w, "Cancel:  neotask cancel %s --org %s\n", taskID, org)

	case poller.OutcomeTimedOut:
		fmt.Fprintf(w, "Timeout after %s. Task may still be running.\n", maxWait)
		fmt.Fprintf(w, "Continue with: neotask watch %s --org %s\n", taskID, org)
	}
}
