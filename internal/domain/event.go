package domain

import "encoding/json"

// EventType identifies the kind of record attached to a task. Like task
// statuses, the set is open: unrecognized types still format and display.
type EventType string

const (
	EventAgentResponse   EventType = "agentResponse"
	EventUserInput       EventType = "userInput"
	EventApprovalRequest EventType = "approvalRequest"
)

// Event is an immutable, server-ordered record attached to exactly one
// task. The ID is the de-duplication key during a watch; Body is the
// type-specific payload, decoded lazily per type.
type Event struct {
	ID   string          `json:"id"`
	Type EventType       `json:"type"`
	Body json.RawMessage `json:"eventBody"`
}

// AgentResponseBody is the payload of an agentResponse event.
type AgentResponseBody struct {
	Content string `json:"content"`
}

// UserInputBody is the payload of a userInput event (the echo of a user
// message).
type UserInputBody struct {
	Content string `json:"content"`
}

// ApprovalRequestBody is the payload of an approvalRequest event.
type ApprovalRequestBody struct {
	ApprovalRequestID string `json:"approval_request_id"`
	Description       string `json:"description"`
}

// ApprovalRequestID returns the approval request id carried by an
// approvalRequest event, or "" if the event is of another type or the
// body cannot be decoded.
func (e *Event) ApprovalRequestID() string {
	if e.Type != EventApprovalRequest {
		return ""
	}
	var body ApprovalRequestBody
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	return body.ApprovalRequestID
}

// LatestApprovalID scans events newest-to-oldest and returns the approval
// request id of the most recent approvalRequest, or "" if there is none.
// Only the latest request matters: a newer request supersedes older ones.
func LatestApprovalID(events []Event) string {
	for i := len(events) - 1; i >= 0; i-- {
		if id := events[i].ApprovalRequestID(); id != "" {
			return id
		}
	}
	return ""
}
