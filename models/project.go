package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived, ProjectStatusOnHold:
		return true
	}
	return false
}

// Project represents a project entity
type Project struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Color       string        `json:"color"`
	Icon        string        `json:"icon"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	Metadata    JSONMap       `json:"metadata,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Aggregates computed on list queries
	TaskCount      *int `json:"task_count,omitempty"`
	CompletedTasks *int `json:"completed_tasks,omitempty"`
}

// ProjectUpdate is the allow-listed set of fields a project update may touch.
// Nil fields are left unchanged; id, user_id and created_at are not
// representable here, so they can never be mass-assigned.
type ProjectUpdate struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Status      *ProjectStatus `json:"status"`
	Color       *string        `json:"color"`
	Icon        *string        `json:"icon"`
	DueDate     *time.Time     `json:"due_date"`
}

// Empty reports whether the update carries no fields.
func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Status == nil &&
		u.Color == nil && u.Icon == nil && u.DueDate == nil
}

// ProjectTaskSummary is the embedded task shape returned with a single project
type ProjectTaskSummary struct {
	ID       uuid.UUID    `json:"id"`
	Title    string       `json:"title"`
	Status   TaskStatus   `json:"status"`
	Priority TaskPriority `json:"priority"`
	DueDate  *time.Time   `json:"due_date,omitempty"`
}

// ProjectStat is a per-status aggregate row for the stats endpoint
type ProjectStat struct {
	Status  ProjectStatus `json:"status"`
	Count   int           `json:"count"`
	Overdue int           `json:"overdue"`
}
