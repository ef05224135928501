// Package tasks implements task tracking endpoints.
package tasks

import "time"

// Priority levels for a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Status values a task moves through.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// ValidPriority reports whether the value is a known priority.
func ValidPriority(p string) bool {
	switch Priority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidStatus reports whether the value is a known status.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Task is a unit of work assigned to a user.
type Task struct {
	ID             string
	Title          string
	Description    *string
	Priority       Priority
	Status         Status
	DueDate        *time.Time
	CompletedDate  *time.Time
	AssignedTo     *string
	CreatedBy      string
	ProjectID      *string
	DepartmentID   *string
	EstimatedHours int
	ActualHours    int
	Comments       *string
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Statistics aggregates task counts for dashboards.
type Statistics struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
	Overdue    int            `json:"overdue"`
}
