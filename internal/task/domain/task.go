package domain

import (
	"errors"
	"time"
)

// TaskList groups tasks within an organization.
type TaskList struct {
	ID             string
	OrganizationID string
	Name           string
	Position       int
	Color          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Task is a single work item in a list.
type Task struct {
	ID          string
	ListID      string
	CreatorID   string
	AssigneeID  string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityHigh   Priority = "HIGH"
	PriorityNormal Priority = "NORMAL"
	PriorityLow    Priority = "LOW"
)

// Valid reports whether s is one of the known task statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Valid reports whether p is one of the known task priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// Validate validates the task list for persistence.
func (l *TaskList) Validate() error {
	if l.Name == "" {
		return errors.New("name is required")
	}
	if l.OrganizationID == "" {
		return errors.New("organization id is required")
	}
	return nil
}

// Validate validates the task for persistence. Defaults status and priority when unset.
func (t *Task) Validate() error {
	if t.Title == "" {
		return errors.New("title is required")
	}
	if t.ListID == "" {
		return errors.New("list id is required")
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if !t.Status.Valid() {
		return errors.New("invalid status")
	}
	if t.Priority == "" {
		t.Priority = PriorityNormal
	}
	if !t.Priority.Valid() {
		return errors.New("invalid priority")
	}
	return nil
}
