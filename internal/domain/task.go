package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// TaskStatus is the closed set of task workflow states.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists every valid status.
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseTaskStatus converts s into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("invalid status %q", s))
	}
	return status, nil
}

// Task limits and defaults.
const (
	MaxTitleLength    = 200
	MaxPriorityLength = 20
	DefaultPriority   = "medium"
)

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"`
	IsArchived  bool       `json:"is_archived"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask carries the caller supplied fields of a task being created. The
// owner is never part of it.
type NewTask struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"`
}

// Normalize fills in defaults for omitted fields.
func (n *NewTask) Normalize() {
	if n.Status == "" {
		n.Status = StatusTodo
	}
	if n.Priority == "" {
		n.Priority = DefaultPriority
	}
}

// Validate checks the field constraints of a new task.
func (n *NewTask) Validate() error {
	if err := ValidateTitle(n.Title); err != nil {
		return err
	}
	if !n.Status.Valid() {
		return NewValidationError("status", fmt.Sprintf("invalid status %q", n.Status))
	}
	return ValidatePriority(n.Priority)
}

// ValidateTitle checks that a title has 1 to 200 characters. Whitespace
// counts; a title of spaces is stored as given.
func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n == 0 || n > MaxTitleLength {
		return NewValidationError("title", "title must be between 1 and 200 characters")
	}
	return nil
}

// ValidatePriority checks a priority tag. Priorities are free text,
// conventionally low, medium or high.
func ValidatePriority(priority string) error {
	if strings.TrimSpace(priority) == "" || utf8.RuneCountInString(priority) > MaxPriorityLength {
		return NewValidationError("priority", "priority must be between 1 and 20 characters")
	}
	return nil
}
