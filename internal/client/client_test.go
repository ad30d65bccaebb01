package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/neotask/neotask/internal/domain"
)

func newTestClient(server *httptest.Server) *Client {
	c := NewClient(server.URL, "test-token")
	c.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return c
}

// =============================================================================
// Request Building Tests
// =============================================================================

func TestClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", "tok")
	if c.baseURL != DefaultBaseURL {
		t.Errorf("expected default base URL %q, got %q", DefaultBaseURL, c.baseURL)
	}
}

func TestClient_Headers(t *testing.T) {
	var auth, accept, contentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		accept = r.Header.Get("Accept")
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"taskId": "task-1"})
	}))
	defer server.Close()

	c := newTestClient(server)
	if _, err := c.CreateTask(context.Background(), "acme", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if auth != "token test-token" {
		t.Errorf("expected Authorization %q, got %q", "token test-token", auth)
	}
	if accept != "application/vnd.pulumi+8" {
		t.Errorf("expected Accept %q, got %q", "application/vnd.pulumi+8", accept)
	}
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", contentType)
	}
}

// =============================================================================
// CreateTask
// =============================================================================

func TestCreateTask_Envelope(t *testing.T) {
	var body map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"taskId": "task-42"})
	}))
	defer server.Close()

	stack, err := domain.NewStackRef("prod", "my-infra")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := newTestClient(server)
	taskID, err := c.CreateTask(context.Background(), "acme", "analyze my stack", stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if taskID != "task-42" {
		t.Errorf("expected task-42, got %q", taskID)
	}

	msg, ok := body["message"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing message envelope: %v", body)
	}
	if msg["type"] != "user_message" {
		t.Errorf("expected type user_message, got %v", msg["type"])
	}
	if msg["content"] != "analyze my stack" {
		t.Errorf("unexpected content: %v", msg["content"])
	}
	if msg["timestamp"] != "2025-06-01T12:00:00Z" {
		t.Errorf("unexpected timestamp: %v", msg["timestamp"])
	}

	diff, ok := msg["entity_diff"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing entity_diff: %v", msg)
	}
	add, _ := diff["add"].([]interface{})
	if len(add) != 1 {
		t.Fatalf("expected exactly one added entity, got %v", diff["add"])
	}
	entity := add[0].(map[string]interface{})
	if entity["type"] != "stack" || entity["name"] != "prod" || entity["project"] != "my-infra" {
		t.Errorf("unexpected entity: %v", entity)
	}
	if remove, _ := diff["remove"].([]interface{}); remove == nil {
		t.Errorf("remove list must be present and empty, got %v", diff["remove"])
	}
}

func TestCreateTask_NonCreatedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message":"bad request"}`)
	}))
	defer server.Close()

	c := newTestClient(server)
	_, err := c.CreateTask(context.Background(), "acme", "hello")
	if err == nil {
		t.Fatal("expected error")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", statusErr.StatusCode)
	}
	if statusErr.Body != `{"message":"bad request"}` {
		t.Errorf("expected body retained, got %q", statusErr.Body)
	}
}

// =============================================================================
// GetTask / ListTasks
// =============================================================================

func TestGetTask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme/tasks/task-7" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(domain.Task{ID: "task-7", Status: domain.StatusInProgress})
	}))
	defer server.Close()

	c := newTestClient(server)
	task, err := c.GetTask(context.Background(), "acme", "task-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "task-7" || task.Status != domain.StatusInProgress {
		t.Errorf("unexpected task: %+v", task)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server)
	_, err := c.GetTask(context.Background(), "acme", "task-7")
	if !IsStatus(err, http.StatusNotFound) {
		t.Errorf("expected 404 StatusError, got %v", err)
	}
}

func TestListTasks(t *testing.T) {
	var pageSize string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageSize = r.URL.Query().Get("pageSize")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tasks": []domain.Task{
				{ID: "task-1", Status: domain.StatusCompleted},
				{ID: "task-2", Status: domain.StatusInProgress},
			},
		})
	}))
	defer server.Close()

	c := newTestClient(server)
	tasks, err := c.ListTasks(context.Background(), "acme", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pageSize != "20" {
		t.Errorf("expected default pageSize 20, got %q", pageSize)
	}
	if len(tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(tasks))
	}
}

func TestListTasks_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer server.Close()

	c := newTestClient(server)
	tasks, err := c.ListTasks(context.Background(), "acme", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", tasks)
	}
}

// =============================================================================
// ListEvents
// =============================================================================

func TestListEvents_QueryParams(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantToken bool
	}{
		{name: "first fetch omits cursor", token: "", wantToken: false},
		{name: "subsequent fetch passes cursor", token: "ct-3", wantToken: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var query map[string][]string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.Query()
				json.NewEncoder(w).Encode(map[string]interface{}{"events": []domain.Event{}})
			}))
			defer server.Close()

			c := newTestClient(server)
			if _, err := c.ListEvents(context.Background(), "acme", "task-1", tt.token); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := query["pageSize"]; len(got) != 1 || got[0] != "100" {
				t.Errorf("expected pageSize 100, got %v", got)
			}
			_, present := query["continuationToken"]
			if present != tt.wantToken {
				t.Errorf("continuationToken present = %v, want %v", present, tt.wantToken)
			}
			if tt.wantToken && query["continuationToken"][0] != tt.token {
				t.Errorf("expected token %q, got %v", tt.token, query["continuationToken"])
			}
		})
	}
}

func TestListEvents_Page(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"events": [
				{"id": "evt-1", "type": "agentResponse", "eventBody": {"content": "hi"}},
				{"id": "evt-2", "type": "approvalRequest", "eventBody": {"approval_request_id": "req_42"}}
			],
			"continuationToken": "ct-2"
		}`)
	}))
	defer server.Close()

	c := newTestClient(server)
	page, err := c.ListEvents(context.Background(), "acme", "task-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(page.Events))
	}
	if page.Events[1].ApprovalRequestID() != "req_42" {
		t.Errorf("expected approval id req_42, got %q", page.Events[1].ApprovalRequestID())
	}
	if page.ContinuationToken != "ct-2" {
		t.Errorf("expected token ct-2, got %q", page.ContinuationToken)
	}
}

func TestListEvents_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server)
	page, err := c.ListEvents(context.Background(), "acme", "task-1", "ct-5")
	if page != nil {
		t.Errorf("expected nil page on error, got %+v", page)
	}
	if !IsStatus(err, http.StatusInternalServerError) {
		t.Errorf("expected 500 StatusError, got %v", err)
	}
}

// =============================================================================
// User events
// =============================================================================

func TestSendApproval_Envelope(t *testing.T) {
	var body map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	c := newTestClient(server)
	if err := c.SendApproval(context.Background(), "acme", "task-1", "req_42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	event, ok := body["event"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing event envelope: %v", body)
	}
	if event["type"] != "user_confirmation" {
		t.Errorf("expected type user_confirmation, got %v", event["type"])
	}
	if event["approval_request_id"] != "req_42" {
		t.Errorf("expected approval_request_id req_42, got %v", event["approval_request_id"])
	}
	if _, hasDiff := event["entity_diff"]; hasDiff {
		t.Errorf("confirmation must not carry an entity diff: %v", event)
	}
}

func TestSendCancel_Envelope(t *testing.T) {
	var body map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	c := newTestClient(server)
	if err := c.SendCancel(context.Background(), "acme", "task-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	event := body["event"].(map[string]interface{})
	if event["type"] != "user_cancel" {
		t.Errorf("expected type user_cancel, got %v", event["type"])
	}
}

func TestSendMessage_Envelope(t *testing.T) {
	var body map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	c := newTestClient(server)
	if err := c.SendMessage(context.Background(), "acme", "task-1", "continue please"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	event := body["event"].(map[string]interface{})
	if event["type"] != "user_message" {
		t.Errorf("expected type user_message, got %v", event["type"])
	}
	if event["content"] != "continue please" {
		t.Errorf("unexpected content: %v", event["content"])
	}
	diff, ok := event["entity_diff"].(map[string]interface{})
	if !ok {
		t.Fatalf("follow-up must carry an empty entity diff: %v", event)
	}
	if add, _ := diff["add"].([]interface{}); len(add) != 0 {
		t.Errorf("expected empty add list, got %v", diff["add"])
	}
}

func TestPostEvent_NotAccepted(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{name: "ok is not accepted", code: http.StatusOK},
		{name: "conflict", code: http.StatusConflict},
		{name: "server error", code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				io.WriteString(w, "nope")
			}))
			defer server.Close()

			c := newTestClient(server)
			err := c.SendCancel(context.Background(), "acme", "task-1")
			if !IsStatus(err, tt.code) {
				t.Errorf("expected StatusError with code %d, got %v", tt.code, err)
			}

			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.Body != "nope" {
				t.Errorf("expected body retained, got %q", statusErr.Body)
			}
		})
	}
}
