package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"omnimind-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *pgxpool.Pool
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter holds the optional predicates for task list queries
type TaskFilter struct {
	ProjectID   *uuid.UUID
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Sort        string
	Order       string
	Page        int
	Limit       int
}

// taskSortColumns is the allow-list for ORDER BY; anything else falls back to
// due_date.
var taskSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_date":   true,
	"title":      true,
	"priority":   true,
	"status":     true,
}

const taskColumns = `t.id, t.user_id, t.project_id, t.title, t.description,
	t.status, t.priority, t.due_date, t.completed_at,
	t.estimated_duration, t.actual_duration, t.tags, t.metadata,
	t.created_at, t.updated_at`

func scanTask(row interface{ Scan(...interface{}) error }, withProject bool) (*models.Task, error) {
	task := &models.Task{}
	dest := []interface{}{
		&task.ID,
		&task.UserID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.CompletedAt,
		&task.EstimatedDuration,
		&task.ActualDuration,
		&task.Tags,
		&task.Metadata,
		&task.CreatedAt,
		&task.UpdatedAt,
	}
	if withProject {
		dest = append(dest, &task.ProjectName, &task.ProjectColor)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	return task, nil
}

// List retrieves tasks for a user with filters and pagination, plus the total
// row count for the pagination envelope.
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*models.Task, int, error) {
	query := `
		SELECT ` + taskColumns + `, p.name AS project_name, p.color AS project_color
		FROM tasks t
		LEFT JOIN projects p ON t.project_id = p.id
		WHERE t.user_id = $1`

	args := []interface{}{userID}
	argIndex := 2

	if filter.ProjectID != nil {
		query += fmt.Sprintf(" AND t.project_id = $%d", argIndex)
		args = append(args, *filter.ProjectID)
		argIndex++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.Priority != nil {
		query += fmt.Sprintf(" AND t.priority = $%d", argIndex)
		args = append(args, *filter.Priority)
		argIndex++
	}
	if filter.DueDateFrom != nil {
		query += fmt.Sprintf(" AND t.due_date >= $%d", argIndex)
		args = append(args, *filter.DueDateFrom)
		argIndex++
	}
	if filter.DueDateTo != nil {
		query += fmt.Sprintf(" AND t.due_date <= $%d", argIndex)
		args = append(args, *filter.DueDateTo)
		argIndex++
	}

	sort := filter.Sort
	if !taskSortColumns[sort] {
		sort = "due_date"
	}
	order := filter.Order
	if order != "asc" && order != "desc" {
		order = "asc"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	query += fmt.Sprintf(" ORDER BY t.%s %s LIMIT $%d OFFSET $%d", sort, order, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows, true)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// GetByID retrieves a task owned by the given user
func (r *TaskRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		WHERE t.id = $1 AND t.user_id = $2`

	return scanTask(r.db.QueryRow(ctx, query, id, userID), false)
}

// Upcoming retrieves unfinished tasks due in the next N days, earliest first
func (r *TaskRepository) Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `, p.name AS project_name, p.color AS project_color
		FROM tasks t
		LEFT JOIN projects p ON t.project_id = p.id
		WHERE t.user_id = $1
		  AND t.status NOT IN ('completed', 'cancelled')
		  AND t.due_date BETWEEN NOW() AND NOW() + $2 * INTERVAL '1 day'
		ORDER BY t.due_date ASC
		LIMIT 20`

	rows, err := r.db.Query(ctx, query, userID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows, true)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			user_id, project_id, title, description,
			status, priority, due_date, estimated_duration, tags
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, metadata, created_at, updated_at`

	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	return r.db.QueryRow(
		ctx, query,
		task.UserID,
		task.ProjectID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.EstimatedDuration,
		tags,
	).Scan(&task.ID, &task.Metadata, &task.CreatedAt, &task.UpdatedAt)
}

// Update applies an allow-listed partial update. A status change to completed
// stamps completed_at; a change to any other status clears it. Returns
// pgx.ErrNoRows when the task does not exist or is not owned by userID.
func (r *TaskRepository) Update(ctx context.Context, id, userID uuid.UUID, update models.TaskUpdate) (*models.Task, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	appendSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.ProjectID != nil {
		appendSet("project_id", *update.ProjectID)
	}
	if update.Title != nil {
		appendSet("title", *update.Title)
	}
	if update.Description != nil {
		appendSet("description", *update.Description)
	}
	if update.Status != nil {
		appendSet("status", *update.Status)
		if *update.Status == models.TaskStatusCompleted {
			setClauses = append(setClauses, "completed_at = NOW()")
		} else {
			setClauses = append(setClauses, "completed_at = NULL")
		}
	}
	if update.Priority != nil {
		appendSet("priority", *update.Priority)
	}
	if update.DueDate != nil {
		appendSet("due_date", *update.DueDate)
	}
	if update.EstimatedDuration != nil {
		appendSet("estimated_duration", *update.EstimatedDuration)
	}
	if update.ActualDuration != nil {
		appendSet("actual_duration", *update.ActualDuration)
	}
	if update.Tags != nil {
		appendSet("tags", update.Tags)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id, userID)

	query := fmt.Sprintf(`
		UPDATE tasks t SET %s
		WHERE t.id = $%d AND t.user_id = $%d
		RETURNING `+taskColumns,
		strings.Join(setClauses, ", "), argIndex, argIndex+1)

	return scanTask(r.db.QueryRow(ctx, query, args...), false)
}

// Complete is the completion shortcut: status=completed, completed_at=NOW()
func (r *TaskRepository) Complete(ctx context.Context, id, userID uuid.UUID) (*models.Task, error) {
	query := `
		UPDATE tasks t
		SET status = 'completed', completed_at = NOW(), updated_at = NOW()
		WHERE t.id = $1 AND t.user_id = $2
		RETURNING ` + taskColumns

	return scanTask(r.db.QueryRow(ctx, query, id, userID), false)
}

// Delete deletes a task owned by the given user. Returns the number of rows
// deleted.
func (r *TaskRepository) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// TaskHistoryRow is a compact historical record fed to productivity analysis
type TaskHistoryRow struct {
	Date              time.Time           `json:"date"`
	Status            models.TaskStatus   `json:"status"`
	Priority          models.TaskPriority `json:"priority"`
	EstimatedDuration *int                `json:"estimated_duration"`
	ActualDuration    *int                `json:"actual_duration"`
	DayOfWeek         int                 `json:"day_of_week"`
}

// History retrieves per-task history rows for the trailing N days
func (r *TaskRepository) History(ctx context.Context, userID uuid.UUID, days int) ([]TaskHistoryRow, error) {
	query := `
		SELECT DATE(created_at), status, priority,
			estimated_duration, actual_duration,
			EXTRACT(DOW FROM created_at)::int
		FROM tasks
		WHERE user_id = $1 AND created_at > NOW() - $2 * INTERVAL '1 day'
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, userID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []TaskHistoryRow
	for rows.Next() {
		var h TaskHistoryRow
		err := rows.Scan(&h.Date, &h.Status, &h.Priority, &h.EstimatedDuration, &h.ActualDuration, &h.DayOfWeek)
		if err != nil {
			return nil, err
		}
		history = append(history, h)
	}

	return history, rows.Err()
}

// DigestStats holds the per-user aggregates for the daily digest email
type DigestStats struct {
	Total     int
	Completed int
	Overdue   int
	DueToday  int
}

// Digest computes task aggregates for the daily digest email
func (r *TaskRepository) Digest(ctx context.Context, userID uuid.UUID) (DigestStats, error) {
	var stats DigestStats
	query := `
		SELECT COUNT(*),
			COUNT(CASE WHEN status = 'completed' THEN 1 END),
			COUNT(CASE WHEN status NOT IN ('completed', 'cancelled') AND due_date < NOW() THEN 1 END),
			COUNT(CASE WHEN status NOT IN ('completed', 'cancelled') AND DATE(due_date) = CURRENT_DATE THEN 1 END)
		FROM tasks
		WHERE user_id = $1`

	err := r.db.QueryRow(ctx, query, userID).Scan(&stats.Total, &stats.Completed, &stats.Overdue, &stats.DueToday)
	return stats, err
}
