package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new agent task",
	Long: `Create a new agent task from a message and watch it until it
completes, fails, or requires approval.

Optional stack or repository context is attached to the task:

  neotask new -m "Optimize this stack" --stack-name prod --stack-project my-infra
  neotask new -m "Review this code" --repo-name my-repo --repo-org my-github-org`,
	Run: func(cmd *cobra.Command, args []string) {
		message, _ := cmd.Flags().GetString("message")
		stackName, _ := cmd.Flags().GetString("stack-name")
		stackProject, _ := cmd.Flags().GetString("stack-project")
		repoName, _ := cmd.Flags().GetString("repo-name")
		repoOrg, _ := cmd.Flags().GetString("repo-org")
		repoForge, _ := cmd.Flags().GetString("repo-forge")

		// Entity validation happens before the token or org are touched,
		// so a bad flag combination never reaches the network.
		refs, err := entityRefs(stackName, stackProject, repoName, repoOrg, repoForge)
		if err != nil {
			handleError(err)
		}

		app, err := newAppContext(cmd)
		if err != nil {
			handleError(err)
		}

		taskID, err := app.client.CreateTask(cmd.Context(), app.org, message, refs...)
		if err != nil {
			handleError(err)
		}

		printSuccess(os.Stdout, fmt.Sprintf("Created task: %s", taskID), jsonOutput)

		if err := watchTask(cmd, app, taskID); err != nil {
			handleError(err)
		}
	},
}

func init() {
	newCmd.Flags().StringP("message", "m", "", "Message for the agent (required)")
	newCmd.MarkFlagRequired("message")

	newCmd.Flags().String("stack-name", "", "Stack name for context")
	newCmd.Flags().String("stack-project", "", "Stack project for context (required with --stack-name)")
	newCmd.Flags().String("repo-name", "", "Repository name for context")
	newCmd.Flags().String("repo-org", "", "Repository organization for context (required with --repo-name)")
	newCmd.Flags().String("repo-forge", "github", "Repository forge (github, gitlab, or bitbucket)")

	addWatchFlags(newCmd)
	rootCmd.AddCommand(newCmd)
}
