package domain

// TaskStatus represents the current state of a task as reported by the
// agents API. The set is open-ended: the server may introduce new
// in-progress statuses at any time, so unknown values are carried through
// untouched rather than rejected.
type TaskStatus string

const (
	StatusInProgress         TaskStatus = "in_progress"
	StatusWaitingForApproval TaskStatus = "waiting_for_approval"
	StatusCompleted          TaskStatus = "completed"
	StatusFailed             TaskStatus = "failed"
)

// IsTerminal reports whether the status means the task will make no
// further progress.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is a server-tracked unit of agent work. The client never owns task
// state; it only observes it.
type Task struct {
	ID        string     `json:"id"`
	Status    TaskStatus `json:"status"`
	CreatedAt string     `json:"createdAt,omitempty"`
}
