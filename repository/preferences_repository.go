package repository

import (
	"context"

	"omnimind-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferencesRepository handles the one-to-one user_preferences rows
type PreferencesRepository struct {
	db *pgxpool.Pool
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(db *pgxpool.Pool) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

const preferencesColumns = `id, user_id, notification_settings, ai_preferences,
	theme, created_at, updated_at`

func scanPreferences(row interface{ Scan(...interface{}) error }) (*models.UserPreferences, error) {
	p := &models.UserPreferences{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.NotificationSettings,
		&p.AIPreferences,
		&p.Theme,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get retrieves the preference row for a user; pgx.ErrNoRows when absent
func (r *PreferencesRepository) Get(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	query := `SELECT ` + preferencesColumns + ` FROM user_preferences WHERE user_id = $1`
	return scanPreferences(r.db.QueryRow(ctx, query, userID))
}

// Upsert inserts or partially updates the preference row. Nil fields keep
// their stored value via COALESCE.
func (r *PreferencesRepository) Upsert(ctx context.Context, userID uuid.UUID, settings *models.NotificationSettings, ai *models.AIPreferences, theme *string) (*models.UserPreferences, error) {
	query := `
		INSERT INTO user_preferences (user_id, notification_settings, ai_preferences, theme)
		VALUES ($1,
			COALESCE($2, '{"email": true, "push": true, "sms": false, "dailyDigest": true,
				"quietHours": {"enabled": false, "start": "22:00", "end": "08:00"}}'::jsonb),
			COALESCE($3, '{"autoExtractTasks": true, "autoSchedule": true,
				"smartPrioritization": true, "language": "en"}'::jsonb),
			COALESCE($4, 'light'))
		ON CONFLICT (user_id)
		DO UPDATE SET
			notification_settings = COALESCE($2, user_preferences.notification_settings),
			ai_preferences = COALESCE($3, user_preferences.ai_preferences),
			theme = COALESCE($4, user_preferences.theme),
			updated_at = NOW()
		RETURNING ` + preferencesColumns

	return scanPreferences(r.db.QueryRow(ctx, query, userID, settings, ai, theme))
}
