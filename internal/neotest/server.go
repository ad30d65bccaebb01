// Package neotest provides an in-memory double of the agents API for
// tests. It speaks the same wire format as the real service: org-scoped
// task routes, cursor-paginated events, and user events posted to the
// per-task URL.
package neotest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/neotask/neotask/internal/domain"
	"github.com/neotask/neotask/pkg/idgen"
)

// tokenPrefix is the cursor prefix; the token stays opaque to clients.
const tokenPrefix = "ct-"

// PostedEvent records a user event received on the per-task URL.
type PostedEvent struct {
	Type              string             `json:"type"`
	Content           string             `json:"content"`
	ApprovalRequestID string             `json:"approval_request_id"`
	Timestamp         string             `json:"timestamp"`
	EntityDiff        *domain.EntityDiff `json:"entity_diff"`
}

type taskRecord struct {
	task   domain.Task
	events []domain.Event
	posted []PostedEvent
}

// Server is the API double. Tests script task statuses and events through
// its methods and point a real client at Start's URL.
type Server struct {
	mu    sync.Mutex
	token string
	orgs  map[string]map[string]*taskRecord

	// when non-zero, the events endpoint responds with this status code
	// instead of a page
	eventsFailure int
}

// New creates a server double that accepts the given access token.
func New(token string) *Server {
	return &Server{
		token: token,
		orgs:  make(map[string]map[string]*taskRecord),
	}
}

// Start serves the double over an httptest listener and returns its base
// URL. The listener is closed when the test finishes.
func (s *Server) Start(t testing.TB) string {
	t.Helper()
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts.URL
}

// Router builds the chi router for the double.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.auth)

	r.Route("/{org}/tasks", func(r chi.Router) {
		r.Post("/", s.handleCreateTask)
		r.Get("/", s.handleListTasks)
		r.Get("/{taskID}", s.handleGetTask)
		r.Post("/{taskID}", s.handlePostEvent)
		r.Get("/{taskID}/events", s.handleListEvents)
	})

	return r
}

// =============================================================================
// Scripting helpers
// =============================================================================

// SetEventsFailure makes the events endpoint fail with the given status
// code on every request. Zero restores normal behavior.
func (s *Server) SetEventsFailure(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventsFailure = code
}

// AddTask seeds a task with the given status and returns its id.
func (s *Server) AddTask(org string, status domain.TaskStatus) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := idgen.MustGenerate("task")
	s.orgTasksLocked(org)[id] = &taskRecord{
		task: domain.Task{ID: id, Status: status, CreatedAt: "2025-01-01T00:00:00Z"},
	}
	return id
}

// SetStatus updates a task's status.
func (s *Server) SetStatus(org, taskID string, status domain.TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec := s.orgTasksLocked(org)[taskID]; rec != nil {
		rec.task.Status = status
	}
}

// AppendAgentResponse appends an agentResponse event and returns its id.
func (s *Server) AppendAgentResponse(org, taskID, content string) string {
	body, _ := json.Marshal(domain.AgentResponseBody{Content: content})
	return s.appendEvent(org, taskID, domain.EventAgentResponse, body)
}

// AppendApprovalRequest appends an approvalRequest event carrying the
// given request id and returns the event id.
func (s *Server) AppendApprovalRequest(org, taskID, requestID, description string) string {
	body, _ := json.Marshal(domain.ApprovalRequestBody{
		ApprovalRequestID: requestID,
		Description:       description,
	})
	return s.appendEvent(org, taskID, domain.EventApprovalRequest, body)
}

// AppendRawEvent appends an event of an arbitrary type with a raw body.
func (s *Server) AppendRawEvent(org, taskID string, eventType domain.EventType, body json.RawMessage) string {
	return s.appendEvent(org, taskID, eventType, body)
}

// PostedEvents returns the user events received for a task, in order.
func (s *Server) PostedEvents(org, taskID string) []PostedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.orgTasksLocked(org)[taskID]
	if rec == nil {
		return nil
	}
	out := make([]PostedEvent, len(rec.posted))
	copy(out, rec.posted)
	return out
}

func (s *Server) appendEvent(org, taskID string, eventType domain.EventType, body json.RawMessage) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.orgTasksLocked(org)[taskID]
	if rec == nil {
		return ""
	}
	id := idgen.MustGenerate("evt")
	rec.events = append(rec.events, domain.Event{ID: id, Type: eventType, Body: body})
	return id
}

func (s *Server) orgTasksLocked(org string) map[string]*taskRecord {
	tasks, ok := s.orgs[org]
	if !ok {
		tasks = make(map[string]*taskRecord)
		s.orgs[org] = tasks
	}
	return tasks
}

// =============================================================================
// Middleware
// =============================================================================

// auth rejects requests that do not carry the expected token scheme.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token "+s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"message": "invalid access token",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")

	var req struct {
		Message PostedEvent `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid message"})
		return
	}

	s.mu.Lock()
	id := idgen.MustGenerate("task")
	rec := &taskRecord{
		task: domain.Task{ID: id, Status: domain.StatusInProgress, CreatedAt: req.Message.Timestamp},
	}
	rec.posted = append(rec.posted, req.Message)
	body, _ := json.Marshal(domain.UserInputBody{Content: req.Message.Content})
	rec.events = append(rec.events, domain.Event{
		ID:   idgen.MustGenerate("evt"),
		Type: domain.EventUserInput,
		Body: body,
	})
	s.orgTasksLocked(org)[id] = rec
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"taskId": id})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	pageSize := queryInt(r, "pageSize", 20)

	s.mu.Lock()
	tasks := make([]domain.Task, 0)
	for _, rec := range s.orgTasksLocked(org) {
		tasks = append(tasks, rec.task)
	}
	s.mu.Unlock()

	if len(tasks) > pageSize {
		tasks = tasks[:pageSize]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	taskID := chi.URLParam(r, "taskID")

	s.mu.Lock()
	rec := s.orgTasksLocked(org)[taskID]
	s.mu.Unlock()

	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "task not found"})
		return
	}

	writeJSON(w, http.StatusOK, rec.task)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	taskID := chi.URLParam(r, "taskID")

	s.mu.Lock()
	failure := s.eventsFailure
	rec := s.orgTasksLocked(org)[taskID]
	s.mu.Unlock()

	if failure != 0 {
		writeJSON(w, failure, map[string]string{"message": "injected failure"})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "task not found"})
		return
	}

	pageSize := queryInt(r, "pageSize", 100)
	offset := parseToken(r.URL.Query().Get("continuationToken"))

	s.mu.Lock()
	all := rec.events
	if offset > len(all) {
		offset = len(all)
	}
	page := all[offset:]
	if len(page) > pageSize {
		page = page[:pageSize]
	}
	events := make([]domain.Event, len(page))
	copy(events, page)
	next := offset + len(page)
	s.mu.Unlock()

	resp := map[string]interface{}{"events": events}
	// No new cursor when nothing was returned; clients keep their old one.
	if len(events) > 0 {
		resp["continuationToken"] = tokenPrefix + strconv.Itoa(next)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	taskID := chi.URLParam(r, "taskID")

	var req struct {
		Event PostedEvent `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Event.Type == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid event"})
		return
	}

	s.mu.Lock()
	rec := s.orgTasksLocked(org)[taskID]
	if rec == nil {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "task not found"})
		return
	}
	rec.posted = append(rec.posted, req.Event)
	s.mu.Unlock()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func parseToken(token string) int {
	if !strings.HasPrefix(token, tokenPrefix) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(token, tokenPrefix))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
