package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/neotask/neotask/internal/domain"
)

const (
	// DefaultBaseURL is the production agents API endpoint.
	DefaultBaseURL = "https://api.pulumi.com/api/preview/agents"

	// acceptHeader pins the API version the client speaks.
	acceptHeader = "application/vnd.pulumi+8"

	// DefaultTaskPageSize is the page size used when listing tasks.
	DefaultTaskPageSize = 20

	// eventsPageSize is the fixed page size for event fetches.
	eventsPageSize = 100
)

// Client is an HTTP client for the agents API. All requests carry the
// access token using the "token" authorization scheme.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	now     func() time.Time // injected for deterministic timestamps in tests
}

// NewClient creates a new agents API client. An empty baseURL selects the
// production endpoint.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// =============================================================================
// Tasks
// =============================================================================

// CreateTask creates a new agent task carrying the message and optional
// entity context, returning the server-assigned task id. The entity refs
// must already be validated; see domain.NewStackRef and
// domain.NewRepositoryRef. Only a 201 response is a success.
func (c *Client) CreateTask(ctx context.Context, org, message string, refs ...domain.EntityRef) (string, error) {
	body := createTaskRequest{
		Message: messageEnvelope{
			Type:       "user_message",
			Content:    message,
			Timestamp:  c.timestamp(),
			EntityDiff: domain.NewEntityDiff(refs...),
		},
	}

	path := "/" + org + "/tasks"
	req, err := c.newJSONRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create task failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", newStatusError(http.MethodPost, path, resp)
	}

	var created createTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode create task response: %w", err)
	}

	return created.TaskID, nil
}

// GetTask retrieves a task by id. Only a 200 response is a success.
func (c *Client) GetTask(ctx context.Context, org, taskID string) (*domain.Task, error) {
	path := "/" + org + "/tasks/" + taskID
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(http.MethodGet, path, resp)
	}

	var task domain.Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("failed to decode task response: %w", err)
	}

	return &task, nil
}

// ListTasks lists tasks for an organization, newest first. A pageSize of
// zero selects the default. Returns an empty slice when the server
// reports none.
func (c *Client) ListTasks(ctx context.Context, org string, pageSize int) ([]domain.Task, error) {
	if pageSize <= 0 {
		pageSize = DefaultTaskPageSize
	}

	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(pageSize))
	path := "/" + org + "/tasks?" + params.Encode()

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(http.MethodGet, path, resp)
	}

	var list taskListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode tasks response: %w", err)
	}
	if list.Tasks == nil {
		list.Tasks = []domain.Task{}
	}

	return list.Tasks, nil
}

// =============================================================================
// Events
// =============================================================================

// ListEvents fetches one page of a task's event log. An empty
// continuationToken starts from the beginning; otherwise only events past
// the cursor are returned. A non-200 response yields a *StatusError which
// callers inside a poll loop absorb rather than abort on.
func (c *Client) ListEvents(ctx context.Context, org, taskID, continuationToken string) (*EventPage, error) {
	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(eventsPageSize))
	if continuationToken != "" {
		params.Set("continuationToken", continuationToken)
	}
	path := "/" + org + "/tasks/" + taskID + "/events?" + params.Encode()

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list events failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(http.MethodGet, path, resp)
	}

	var page eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode events response: %w", err)
	}

	return &EventPage{
		Events:            page.Events,
		ContinuationToken: page.ContinuationToken,
	}, nil
}

// =============================================================================
// User events (approval, cancellation, follow-up)
// =============================================================================

// SendApproval posts a user_confirmation for a pending approval request.
// Only a 202 response is a success; any other status is returned as a
// *StatusError with the response detail.
func (c *Client) SendApproval(ctx context.Context, org, taskID, approvalRequestID string) error {
	return c.postEvent(ctx, org, taskID, taskEventEnvelope{
		Type:              "user_confirmation",
		ApprovalRequestID: approvalRequestID,
		Timestamp:         c.timestamp(),
	})
}

// SendCancel posts a user_cancel for the task's pending request. Success
// criterion is identical to SendApproval.
func (c *Client) SendCancel(ctx context.Context, org, taskID string) error {
	return c.postEvent(ctx, org, taskID, taskEventEnvelope{
		Type:      "user_cancel",
		Timestamp: c.timestamp(),
	})
}

// SendMessage posts a follow-up user_message with an empty entity diff.
// Success criterion is identical to SendApproval.
func (c *Client) SendMessage(ctx context.Context, org, taskID, message string) error {
	diff := domain.NewEntityDiff()
	return c.postEvent(ctx, org, taskID, taskEventEnvelope{
		Type:       "user_message",
		Content:    message,
		Timestamp:  c.timestamp(),
		EntityDiff: &diff,
	})
}

// postEvent posts a user-originated event to the per-task URL. The server
// differentiates on the event type field.
func (c *Client) postEvent(ctx context.Context, org, taskID string, event taskEventEnvelope) error {
	path := "/" + org + "/tasks/" + taskID
	req, err := c.newJSONRequest(ctx, http.MethodPost, path, postEventRequest{Event: event})
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s failed: %w", event.Type, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return newStatusError(http.MethodPost, path, resp)
	}

	io.Copy(io.Discard, resp.Body)

	return nil
}

// =============================================================================
// Helper Methods
// =============================================================================

// timestamp returns the current UTC time in the wire format.
func (c *Client) timestamp() string {
	return c.now().UTC().Format(time.RFC3339)
}

// newRequest creates a new HTTP request with common headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", acceptHeader)

	return req, nil
}

// newJSONRequest creates a new HTTP request with a JSON body.
func (c *Client) newJSONRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, &buf)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
