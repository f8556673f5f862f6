package domain

import (
	"encoding/json"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the recognized task states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Task is a unit of work created by one user and optionally assigned to another.
type Task struct {
	ID          string
	Title       string
	Description *string
	Status      TaskStatus
	DueDate     *time.Time
	CreatedBy   string
	AssignedTo  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Populated by the service layer; nil when the reference does not resolve.
	Creator  *UserSummary
	Assignee *UserSummary
}

// IsOwner reports whether userID created the task.
func (t *Task) IsOwner(userID string) bool {
	return t.CreatedBy == userID
}

// IsAssignee reports whether the task is currently assigned to userID.
func (t *Task) IsAssignee(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// VisibleTo reports whether userID may read the task.
func (t *Task) VisibleTo(userID string) bool {
	return t.IsOwner(userID) || t.IsAssignee(userID)
}

// TaskQuery narrows a task listing to what a single user can see.
type TaskQuery struct {
	UserID string
	Status string
	Search string
	Offset int
	Limit  int
}

// Field tracks whether a JSON key was present, independent of its value.
// A key set to null yields Set=true with the zero Value.
type Field[T any] struct {
	Set   bool
	Value T
}

// NewField returns a present field holding v.
func NewField[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// TaskPatch carries a partial update. Only fields with Set=true are applied.
type TaskPatch struct {
	Title       Field[string]
	Description Field[*string]
	Status      Field[TaskStatus]
	DueDate     Field[*time.Time]
	AssignedTo  Field[*string]
}

// Apply writes the present fields of p onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Status.Set {
		t.Status = p.Status.Value
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	if p.AssignedTo.Set {
		t.AssignedTo = p.AssignedTo.Value
	}
}
