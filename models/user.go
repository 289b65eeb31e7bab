package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents a user account
type User struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	PasswordHash  string     `json:"-"` // Never serialize password hash
	AvatarURL     *string    `json:"avatar_url,omitempty"`
	AvatarPath    *string    `json:"-"`
	Timezone      string     `json:"timezone"`
	Role          string     `json:"role"`
	Settings      JSONMap    `json:"settings,omitempty"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NotificationSettings holds per-channel notification toggles
type NotificationSettings struct {
	Email       bool       `json:"email"`
	Push        bool       `json:"push"`
	SMS         bool       `json:"sms"`
	DailyDigest bool       `json:"dailyDigest"`
	QuietHours  QuietHours `json:"quietHours"`
}

// QuietHours is a do-not-disturb window
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Value implements driver.Valuer for JSONB
func (n NotificationSettings) Value() (driver.Value, error) {
	return json.Marshal(n)
}

// Scan implements sql.Scanner for JSONB
func (n *NotificationSettings) Scan(value interface{}) error {
	if value == nil {
		*n = DefaultNotificationSettings()
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*n = DefaultNotificationSettings()
		return nil
	}

	return json.Unmarshal(bytes, n)
}

// AIPreferences holds user-level AI feature toggles
type AIPreferences struct {
	AutoExtractTasks    bool   `json:"autoExtractTasks"`
	AutoSchedule        bool   `json:"autoSchedule"`
	SmartPrioritization bool   `json:"smartPrioritization"`
	Language            string `json:"language"`
}

// Value implements driver.Valuer for JSONB
func (a AIPreferences) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *AIPreferences) Scan(value interface{}) error {
	if value == nil {
		*a = DefaultAIPreferences()
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*a = DefaultAIPreferences()
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// UserPreferences is the one-to-one preference row for a user
type UserPreferences struct {
	ID                   uuid.UUID            `json:"id"`
	UserID               uuid.UUID            `json:"user_id"`
	NotificationSettings NotificationSettings `json:"notification_settings"`
	AIPreferences        AIPreferences        `json:"ai_preferences"`
	Theme                string               `json:"theme"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// DefaultNotificationSettings returns the defaults applied when a user has no
// preference row yet.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Email:       true,
		Push:        true,
		SMS:         false,
		DailyDigest: true,
		QuietHours:  QuietHours{Enabled: false, Start: "22:00", End: "08:00"},
	}
}

// DefaultAIPreferences returns the default AI feature toggles.
func DefaultAIPreferences() AIPreferences {
	return AIPreferences{
		AutoExtractTasks:    true,
		AutoSchedule:        true,
		SmartPrioritization: true,
		Language:            "en",
	}
}
