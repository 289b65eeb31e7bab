package repository

import (
	"context"
	"fmt"

	"omnimind-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, title, message, priority, read,
	action_url, metadata, scheduled_for, sent_at, created_at`

func scanNotification(row interface{ Scan(...interface{}) error }) (*models.Notification, error) {
	n := &models.Notification{}
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Priority,
		&n.Read,
		&n.ActionURL,
		&n.Metadata,
		&n.ScheduledFor,
		&n.SentAt,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// NotificationFilter holds the optional predicates for notification lists
type NotificationFilter struct {
	Read   *bool
	Type   *models.NotificationType
	Limit  int
	Offset int
}

// List retrieves notifications for a user plus the unread count
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, filter NotificationFilter) ([]*models.Notification, int, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`

	args := []interface{}{userID}
	argIndex := 2

	if filter.Read != nil {
		query += fmt.Sprintf(" AND read = $%d", argIndex)
		args = append(args, *filter.Read)
		argIndex++
	}
	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, *filter.Type)
		argIndex++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var unread int
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`,
		userID,
	).Scan(&unread)
	if err != nil {
		return nil, 0, err
	}

	return notifications, unread, nil
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (
			user_id, type, title, message, priority,
			action_url, metadata, scheduled_for
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, read, created_at`

	return r.db.QueryRow(
		ctx, query,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.Priority,
		n.ActionURL,
		n.Metadata,
		n.ScheduledFor,
	).Scan(&n.ID, &n.Read, &n.CreatedAt)
}

// MarkRead marks one notification read; pgx.ErrNoRows when not owned
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	query := `
		UPDATE notifications SET read = true
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns

	return scanNotification(r.db.QueryRow(ctx, query, id, userID))
}

// MarkAllRead marks every unread notification of the user as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`,
		userID,
	)
	return err
}

// Delete deletes one notification owned by the user. Returns rows deleted.
func (r *NotificationRepository) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteAll clears every notification of the user
func (r *NotificationRepository) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	return err
}

// DueScheduled retrieves scheduled notifications whose time has come and that
// have not been dispatched yet.
func (r *NotificationRepository) DueScheduled(ctx context.Context) ([]*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE scheduled_for IS NOT NULL
		  AND scheduled_for <= NOW()
		  AND sent_at IS NULL
		ORDER BY scheduled_for`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkSent stamps sent_at after a scheduled notification is dispatched
func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE notifications SET sent_at = NOW() WHERE id = $1`, id)
	return err
}
