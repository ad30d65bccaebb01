package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/neotask/neotask/internal/domain"
)

var approveCmd = &cobra.Command{
	Use:   "approve <task-id>",
	Short: "Approve a pending request",
	Long: `Approve a task's pending approval request and resume watching it.

Without --approval-id, the most recent approval request in the task's
event log is approved.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]
		approvalID, _ := cmd.Flags().GetString("approval-id")

		app, err := newAppContext(cmd)
		if err != nil {
			handleError(err)
		}

		if approvalID == "" {
			page, err := app.client.ListEvents(cmd.Context(), app.org, taskID, "")
			if err != nil {
				handleError(err)
			}
			approvalID = domain.LatestApprovalID(page.Events)
		}
		if approvalID == "" {
			handleError(domain.NewValidationError("could not find an approval request; specify one with --approval-id"))
		}

		if err := app.client.SendApproval(cmd.Context(), app.org, taskID, approvalID); err != nil {
			handleError(eventRejected(err))
		}

		printSuccess(os.Stdout, "Approval sent. Watching for updates...", jsonOutput)

		if err := watchTask(cmd, app, taskID); err != nil {
			handleError(err)
		}
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <task-id>",
	Short: "Cancel a pending request",
	Long:  `Cancel a task's pending request.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newAppContext(cmd)
		if err != nil {
			handleError(err)
		}

		if err := app.client.SendCancel(cmd.Context(), app.org, args[0]); err != nil {
			handleError(eventRejected(err))
		}

		printSuccess(os.Stdout, "Cancellation sent.", jsonOutput)
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <task-id>",
	Short: "Send a follow-up message to a task",
	Long:  `Send a follow-up message to an existing task and watch for its response.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]
		message, _ := cmd.Flags().GetString("message")

		app, err := newAppContext(cmd)
		if err != nil {
			handleError(err)
		}

		if err := app.client.SendMessage(cmd.Context(), app.org, taskID, message); err != nil {
			handleError(eventRejected(err))
		}

		printSuccess(os.Stdout, "Message sent. Watching for response...", jsonOutput)

		if err := watchTask(cmd, app, taskID); err != nil {
			handleError(err)
		}
	},
}

func init() {
	approveCmd.Flags().String("approval-id", "", "Approval request ID (defaults to the most recent request)")
	addWatchFlags(approveCmd)

	sendCmd.Flags().StringP("message", "m", "", "Follow-up message (required)")
	sendCmd.MarkFlagRequired("message")
	addWatchFlags(sendCmd)

	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(sendCmd)
}
