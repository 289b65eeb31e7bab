package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActionItem is a single AI-derived action item from a meeting
type ActionItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
	DueDate  string `json:"due_date,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// ActionItems is a list of action items stored as JSONB
type ActionItems []ActionItem

// Value implements driver.Valuer for JSONB
func (a ActionItems) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal(ActionItems{})
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *ActionItems) Scan(value interface{}) error {
	if value == nil {
		*a = make(ActionItems, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*a = make(ActionItems, 0)
		return nil
	}

	if len(bytes) == 0 {
		*a = make(ActionItems, 0)
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Meeting represents a meeting entity
type Meeting struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	Title        string      `json:"title"`
	Description  *string     `json:"description,omitempty"`
	StartTime    time.Time   `json:"start_time"`
	EndTime      time.Time   `json:"end_time"`
	Source       *string     `json:"source,omitempty"`
	SourceID     *string     `json:"source_id,omitempty"`
	Transcript   *string     `json:"transcript,omitempty"`
	Summary      *string     `json:"summary,omitempty"`
	ActionItems  ActionItems `json:"action_items"`
	Participants []string    `json:"participants"`
	Location     *string     `json:"location,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// MeetingUpdate is the allow-listed set of fields a meeting update may touch.
type MeetingUpdate struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Transcript   *string    `json:"transcript"`
	Participants []string   `json:"participants"`
	Location     *string    `json:"location"`
}

// Empty reports whether the update carries no fields.
func (u MeetingUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.StartTime == nil &&
		u.EndTime == nil && u.Transcript == nil && u.Participants == nil &&
		u.Location == nil
}
