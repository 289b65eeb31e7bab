package repository

import (
	"context"
	"fmt"
	"strings"

	"omnimind-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MeetingRepository handles database operations for meetings
type MeetingRepository struct {
	db *pgxpool.Pool
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *pgxpool.Pool) *MeetingRepository {
	return &MeetingRepository{db: db}
}

const meetingColumns = `id, user_id, title, description, start_time, end_time,
	source, source_id, transcript, summary, action_items, participants,
	location, created_at, updated_at`

func scanMeeting(row interface{ Scan(...interface{}) error }) (*models.Meeting, error) {
	meeting := &models.Meeting{}
	err := row.Scan(
		&meeting.ID,
		&meeting.UserID,
		&meeting.Title,
		&meeting.Description,
		&meeting.StartTime,
		&meeting.EndTime,
		&meeting.Source,
		&meeting.SourceID,
		&meeting.Transcript,
		&meeting.Summary,
		&meeting.ActionItems,
		&meeting.Participants,
		&meeting.Location,
		&meeting.CreatedAt,
		&meeting.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if meeting.Participants == nil {
		meeting.Participants = []string{}
	}
	if meeting.ActionItems == nil {
		meeting.ActionItems = make(models.ActionItems, 0)
	}
	return meeting, nil
}

// Create creates a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	query := `
		INSERT INTO meetings (
			user_id, title, description, start_time, end_time,
			source, source_id, transcript, participants, location
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	participants := meeting.Participants
	if participants == nil {
		participants = []string{}
	}

	return r.db.QueryRow(
		ctx, query,
		meeting.UserID,
		meeting.Title,
		meeting.Description,
		meeting.StartTime,
		meeting.EndTime,
		meeting.Source,
		meeting.SourceID,
		meeting.Transcript,
		participants,
		meeting.Location,
	).Scan(&meeting.ID, &meeting.CreatedAt, &meeting.UpdatedAt)
}

// GetByID retrieves a meeting owned by the given user
func (r *MeetingRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1 AND user_id = $2`
	return scanMeeting(r.db.QueryRow(ctx, query, id, userID))
}

// ListByUserID retrieves all meetings for a user, most recent first
func (r *MeetingRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Meeting, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings
		WHERE user_id = $1
		ORDER BY start_time DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []*models.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}

	return meetings, rows.Err()
}

// Update applies an allow-listed partial update
func (r *MeetingRepository) Update(ctx context.Context, id, userID uuid.UUID, update models.MeetingUpdate) (*models.Meeting, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	appendSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.Title != nil {
		appendSet("title", *update.Title)
	}
	if update.Description != nil {
		appendSet("description", *update.Description)
	}
	if update.StartTime != nil {
		appendSet("start_time", *update.StartTime)
	}
	if update.EndTime != nil {
		appendSet("end_time", *update.EndTime)
	}
	if update.Transcript != nil {
		appendSet("transcript", *update.Transcript)
	}
	if update.Participants != nil {
		appendSet("participants", update.Participants)
	}
	if update.Location != nil {
		appendSet("location", *update.Location)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id, userID)

	query := fmt.Sprintf(`
		UPDATE meetings SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+meetingColumns,
		strings.Join(setClauses, ", "), argIndex, argIndex+1)

	return scanMeeting(r.db.QueryRow(ctx, query, args...))
}

// SetSummary stores the AI-derived summary and action items
func (r *MeetingRepository) SetSummary(ctx context.Context, id, userID uuid.UUID, summary string, items models.ActionItems) error {
	query := `
		UPDATE meetings SET
			summary = $3,
			action_items = $4,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	_, err := r.db.Exec(ctx, query, id, userID, summary, items)
	return err
}

// Delete deletes a meeting owned by the given user. Returns the number of
// rows deleted.
func (r *MeetingRepository) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM meetings WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UpcomingWindow is a compact upcoming-meeting shape for conflict detection
type UpcomingWindow struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

// Upcoming retrieves meetings starting within the next N days
func (r *MeetingRepository) Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]UpcomingWindow, error) {
	query := `
		SELECT id, title, start_time::text, end_time::text
		FROM meetings
		WHERE user_id = $1
		  AND start_time BETWEEN NOW() AND NOW() + $2 * INTERVAL '1 day'
		ORDER BY start_time`

	rows, err := r.db.Query(ctx, query, userID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []UpcomingWindow
	for rows.Next() {
		var m UpcomingWindow
		if err := rows.Scan(&m.ID, &m.Title, &m.StartTime, &m.EndTime); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}

	return meetings, rows.Err()
}
