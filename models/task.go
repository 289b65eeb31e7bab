package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked, TaskStatusCancelled:
		return true
	}
	return false
}

// ValidTaskPriority reports whether p is a known task priority.
func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task represents a task entity
type Task struct {
	ID                uuid.UUID    `json:"id"`
	UserID            uuid.UUID    `json:"user_id"`
	ProjectID         *uuid.UUID   `json:"project_id,omitempty"`
	Title             string       `json:"title"`
	Description       *string      `json:"description,omitempty"`
	Status            TaskStatus   `json:"status"`
	Priority          TaskPriority `json:"priority"`
	DueDate           *time.Time   `json:"due_date,omitempty"`
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
	EstimatedDuration *int         `json:"estimated_duration,omitempty"`
	ActualDuration    *int         `json:"actual_duration,omitempty"`
	Tags              []string     `json:"tags"`
	Metadata          JSONMap      `json:"metadata,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`

	// Joined from projects on list queries
	ProjectName  *string `json:"project_name,omitempty"`
	ProjectColor *string `json:"project_color,omitempty"`
}

// TaskUpdate is the allow-listed set of fields a task update may touch.
// Nil fields are left unchanged; id, user_id and created_at are not
// representable here, so they can never be mass-assigned.
type TaskUpdate struct {
	ProjectID         *uuid.UUID    `json:"project_id"`
	Title             *string       `json:"title"`
	Description       *string       `json:"description"`
	Status            *TaskStatus   `json:"status"`
	Priority          *TaskPriority `json:"priority"`
	DueDate           *time.Time    `json:"due_date"`
	EstimatedDuration *int          `json:"estimated_duration"`
	ActualDuration    *int          `json:"actual_duration"`
	Tags              []string      `json:"tags"`
}

// Empty reports whether the update carries no fields.
func (u TaskUpdate) Empty() bool {
	return u.ProjectID == nil && u.Title == nil && u.Description == nil &&
		u.Status == nil && u.Priority == nil && u.DueDate == nil &&
		u.EstimatedDuration == nil && u.ActualDuration == nil && u.Tags == nil
}
