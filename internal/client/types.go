package client

import "github.com/neotask/neotask/internal/domain"

// EventPage is one page of a task's event log plus the cursor for the
// next fetch. An empty ContinuationToken means the server returned no new
// cursor; the caller keeps polling with its previous one.
type EventPage struct {
	Events            []domain.Event
	ContinuationToken string
}

// messageEnvelope is the user_message payload used both when creating a
// task and when sending a follow-up.
type messageEnvelope struct {
	Type       string            `json:"type"`
	Content    string            `json:"content"`
	Timestamp  string            `json:"timestamp"`
	EntityDiff domain.EntityDiff `json:"entity_diff"`
}

// createTaskRequest is the JSON request body for creating a task.
type createTaskRequest struct {
	Message messageEnvelope `json:"message"`
}

// createTaskResponse is the JSON response body for a created task.
type createTaskResponse struct {
	TaskID string `json:"taskId"`
}

// taskListResponse is the raw JSON structure for the task list endpoint.
type taskListResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// eventsResponse is the raw JSON structure for the events endpoint.
type eventsResponse struct {
	Events            []domain.Event `json:"events"`
	ContinuationToken string         `json:"continuationToken"`
}

// taskEventEnvelope is a user-originated event posted to an existing
// task. The server dispatches on Type; the other fields are type-specific.
type taskEventEnvelope struct {
	Type              string             `json:"type"`
	Content           string             `json:"content,omitempty"`
	ApprovalRequestID string             `json:"approval_request_id,omitempty"`
	Timestamp         string             `json:"timestamp"`
	EntityDiff        *domain.EntityDiff `json:"entity_diff,omitempty"`
}

// postEventRequest is the JSON request body for posting a task event.
type postEventRequest struct {
	Event taskEventEnvelope `json:"event"`
}
