package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/neotask/neotask/internal/client"
	"github.com/neotask/neotask/internal/config"
	"github.com/neotask/neotask/internal/domain"
	"github.com/neotask/neotask/internal/orgs"
	"github.com/neotask/neotask/internal/poller"
)

// appContext bundles the resolved configuration, the API client, and the
// organization a command acts on. Building it performs all configuration
// validation up front, before any network call.
type appContext struct {
	cfg    *config.ResolvedConfig
	client *client.Client
	org    string
}

// newAppContext resolves config, token, and organization for a command.
func newAppContext(cmd *cobra.Command) (*appContext, error) {
	cfg, err := config.Resolve()
	if err != nil {
		return nil, err
	}

	org, err := orgs.Resolve(cmd.Context(), orgFlag, cfg.DefaultOrg, &orgs.CommandResolver{})
	if err != nil {
		return nil, err
	}

	return &appContext{
		cfg:    cfg,
		client: client.NewClient(cfg.APIURL, cfg.Token),
		org:    org,
	}, nil
}

// mapErrorToExitCode maps an error to the appropriate exit code
func mapErrorToExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodeTokenMissing:
			return ExitTokenMissing
		case domain.ErrCodeOrgUnresolved:
			return ExitOrgUnresolved
		case domain.ErrCodeValidationFailed:
			return ExitValidation
		case domain.ErrCodeEventRejected:
			return ExitEventRejected
		default:
			return ExitGeneralError
		}
	}

	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		return ExitAPIError
	}

	return ExitGeneralError
}

// handleError handles an error by printing it and exiting with the
// appropriate code
func handleError(err error) {
	if err == nil {
		return
	}

	printError(os.Stderr, err, jsonOutput)
	os.Exit(mapErrorToExitCode(err))
}

// eventRejected wraps a failed approval/cancel/follow-up send. The
// status and body from the underlying StatusError stay visible in the
// message.
func eventRejected(err error) *domain.DomainError {
	return &domain.DomainError{
		Code:    domain.ErrCodeEventRejected,
		Message: fmt.Sprintf("event not acknowledged: %s", err.Error()),
		Context: map[string]interface{}{"cause": err.Error()},
	}
}

// entityRefs validates the entity context flags and builds the refs to
// attach to a task message. Validation failures happen before any
// network call.
func entityRefs(stackName, stackProject, repoName, repoOrg, repoForge string) ([]domain.EntityRef, error) {
	var refs []domain.EntityRef

	if stackName != "" || stackProject != "" {
		ref, err := domain.NewStackRef(stackName, stackProject)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	if repoName != "" || repoOrg != "" {
		ref, err := domain.NewRepositoryRef(repoName, repoOrg, repoForge)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

// addWatchFlags registers the polling flags shared by watch-capable
// commands.
func addWatchFlags(cmd *cobra.Command) {
	cmd.Flags().Int("poll-interval", 5, "Seconds between polls")
	cmd.Flags().Int("max-wait", 600, "Maximum seconds to wait")
}

// watchOptions merges polling flags with the resolved config. An
// explicitly set flag wins over the config file.
func watchOptions(cmd *cobra.Command, cfg *config.ResolvedConfig) poller.Options {
	opts := poller.Options{
		Interval: cfg.PollInterval,
		MaxWait:  cfg.MaxWait,
		Out:      os.Stdout,
	}
	if cmd.Flags().Changed("poll-interval") {
		n, _ := cmd.Flags().GetInt("poll-interval")
		opts.Interval = time.Duration(n) * time.Second
	}
	if cmd.Flags().Changed("max-wait") {
		n, _ := cmd.Flags().GetInt("max-wait")
		opts.MaxWait = time.Duration(n) * time.Second
	}
	return opts
}

// watchTask runs the poll loop for a task and prints the outcome. Only a
// status-fetch failure is an error; timeout and awaiting-approval are
// normal outcomes.
func watchTask(cmd *cobra.Command, app *appContext, taskID string) error {
	opts := watchOptions(cmd, app.cfg)
	if opts.Interval <= 0 {
		opts.Interval = poller.DefaultInterval
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = poller.DefaultMaxWait
	}
	printWatchHeader(os.Stdout, app.org, taskID)

	p := poller.New(app.client, app.org, opts)
	result, err := p.Watch(cmd.Context(), taskID)
	if err != nil {
		return err
	}

	printWatchResult(os.Stdout, app.org, taskID, result, opts.MaxWait)
	return nil
}
