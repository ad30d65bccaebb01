// Package poller drives the observe-until-terminal loop for a single
// task: it repeatedly fetches task status and new events, prints each
// event exactly once, and stops on a terminal status, a pending approval,
// or a wall-clock timeout.
package poller

import (
	"context"
	"io"
	"time"

	"github.com/neotask/neotask/internal/client"
	"github.com/neotask/neotask/internal/domain"
)

// Default pacing for a watch.
const (
	DefaultInterval = 5 * time.Second
	DefaultMaxWait  = 10 * time.Minute
)

// API is the slice of the agents client the poller needs.
type API interface {
	GetTask(ctx context.Context, org, taskID string) (*domain.Task, error)
	ListEvents(ctx context.Context, org, taskID, continuationToken string) (*client.EventPage, error)
}

var _ API = (*client.Client)(nil)

// Outcome is the reason a watch stopped.
type Outcome int

const (
	// OutcomeTerminal means the task reached completed or failed.
	OutcomeTerminal Outcome = iota
	// OutcomeAwaitingApproval means the task is blocked on a pending
	// approval request; the caller decides whether to approve or cancel.
	OutcomeAwaitingApproval
	// OutcomeTimedOut means the configured maximum wait elapsed. The task
	// may still be running server-side; the watch can be resumed.
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTerminal:
		return "terminal"
	case OutcomeAwaitingApproval:
		return "awaiting-approval"
	case OutcomeTimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// Result describes how a watch ended.
type Result struct {
	Outcome           Outcome
	Status            domain.TaskStatus
	PendingApprovalID string
	Elapsed           time.Duration
}

// Options configures a Poller. Zero values select the defaults.
type Options struct {
	Interval time.Duration
	MaxWait  time.Duration
	Out      io.Writer
}

// Poller watches tasks in one organization.
type Poller struct {
	api      API
	org      string
	out      io.Writer
	interval time.Duration
	maxWait  time.Duration

	// injected for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a poller for the given organization.
func New(api API, org string, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Poller{
		api:      api,
		org:      org,
		out:      opts.Out,
		interval: opts.Interval,
		maxWait:  opts.MaxWait,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Watch polls the task until it reaches a terminal status, requires an
// approval, or the maximum wait elapses. Status fetch failures abort the
// watch; event fetch failures are absorbed and retried on the next cycle.
func (p *Poller) Watch(ctx context.Context, taskID string) (*Result, error) {
	start := p.now()
	seen := make(map[string]bool)
	token := ""
	pendingApprovalID := ""
	var lastStatus domain.TaskStatus

	for {
		elapsed := p.now().Sub(start)
		if elapsed > p.maxWait {
			return &Result{
				Outcome:           OutcomeTimedOut,
				Status:            lastStatus,
				PendingApprovalID: pendingApprovalID,
				Elapsed:           elapsed,
			}, nil
		}

		task, err := p.api.GetTask(ctx, p.org, taskID)
		if err != nil {
			return nil, err
		}
		lastStatus = task.Status

		// A failed event fetch yields zero new events this cycle; the
		// token and seen set stay put so the next fetch resumes cleanly.
		page, err := p.api.ListEvents(ctx, p.org, taskID, token)
		if err == nil && page != nil {
			for _, ev := range page.Events {
				if ev.ID == "" || seen[ev.ID] {
					continue
				}
				seen[ev.ID] = true
				io.WriteString(p.out, FormatEvent(&ev)+"\n")

				if id := ev.ApprovalRequestID(); id != "" {
					pendingApprovalID = id
				}
			}
			if page.ContinuationToken != "" {
				token = page.ContinuationToken
			}
		}

		if task.Status.IsTerminal() {
			return &Result{
				Outcome:           OutcomeTerminal,
				Status:            task.Status,
				PendingApprovalID: pendingApprovalID,
				Elapsed:           p.now().Sub(start),
			}, nil
		}

		if task.Status == domain.StatusWaitingForApproval && pendingApprovalID != "" {
			return &Result{
				Outcome:           OutcomeAwaitingApproval,
				Status:            task.Status,
				PendingApprovalID: pendingApprovalID,
				Elapsed:           p.now().Sub(start),
			}, nil
		}

		if err := p.sleep(ctx, p.interval); err != nil {
			return nil, err
		}
	}
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
