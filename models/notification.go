package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType represents the kind of notification
type NotificationType string

const (
	NotificationTypeInfo        NotificationType = "info"
	NotificationTypeWarning     NotificationType = "warning"
	NotificationTypeError       NotificationType = "error"
	NotificationTypeReminder    NotificationType = "reminder"
	NotificationTypeAchievement NotificationType = "achievement"
	NotificationTypeSystem      NotificationType = "system"
	NotificationTypeTest        NotificationType = "test"
)

// ValidNotificationType reports whether t is a known notification type.
func ValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeWarning, NotificationTypeError,
		NotificationTypeReminder, NotificationTypeAchievement,
		NotificationTypeSystem, NotificationTypeTest:
		return true
	}
	return false
}

// Notification represents a notification entity
type Notification struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	Type         NotificationType `json:"type"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	Priority     TaskPriority     `json:"priority"`
	Read         bool             `json:"read"`
	ActionURL    *string          `json:"action_url,omitempty"`
	Metadata     JSONMap          `json:"metadata,omitempty"`
	ScheduledFor *time.Time       `json:"scheduled_for,omitempty"`
	SentAt       *time.Time       `json:"sent_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}
