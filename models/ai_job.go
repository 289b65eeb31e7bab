package models

import (
	"time"

	"github.com/google/uuid"
)

// AIJobType represents the kind of deferred AI work
type AIJobType string

const (
	AIJobTypeExtractTasks     AIJobType = "extract_tasks"
	AIJobTypeSummarizeMeeting AIJobType = "summarize_meeting"
	AIJobTypeOptimizeSchedule AIJobType = "optimize_schedule"
)

// ValidAIJobType reports whether t is a known job type.
func ValidAIJobType(t AIJobType) bool {
	switch t {
	case AIJobTypeExtractTasks, AIJobTypeSummarizeMeeting, AIJobTypeOptimizeSchedule:
		return true
	}
	return false
}

// AIJobStatus represents the lifecycle state of a queue entry.
// Transitions: pending -> processing -> {completed | failed};
// failed -> processing on retry while retry_count < 3.
type AIJobStatus string

const (
	AIJobStatusPending    AIJobStatus = "pending"
	AIJobStatusProcessing AIJobStatus = "processing"
	AIJobStatusCompleted  AIJobStatus = "completed"
	AIJobStatusFailed     AIJobStatus = "failed"
)

// AIJob represents a row in the ai_processing_queue table
type AIJob struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	Type         AIJobType   `json:"type"`
	Status       AIJobStatus `json:"status"`
	InputData    JSONMap     `json:"input_data"`
	OutputData   JSONMap     `json:"output_data,omitempty"`
	ErrorMessage *string     `json:"error_message,omitempty"`
	RetryCount   int         `json:"retry_count"`
	ProcessedAt  *time.Time  `json:"processed_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}
