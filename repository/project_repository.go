package repository

import (
	"context"
	"fmt"
	"strings"

	"omnimind-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// projectSortColumns is the allow-list for ORDER BY; anything else falls back
// to created_at.
var projectSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_date":   true,
	"name":       true,
	"status":     true,
}

// ListByUserID retrieves all projects for a user with task aggregates
func (r *ProjectRepository) ListByUserID(ctx context.Context, userID uuid.UUID, status *models.ProjectStatus, sort, order string) ([]*models.Project, error) {
	query := `
		SELECT p.id, p.user_id, p.name, p.description, p.status, p.color, p.icon,
			p.due_date, p.metadata, p.created_at, p.updated_at,
			COUNT(t.id) AS task_count,
			COALESCE(SUM(CASE WHEN t.status = 'completed' THEN 1 ELSE 0 END), 0) AS completed_tasks
		FROM projects p
		LEFT JOIN tasks t ON p.id = t.project_id
		WHERE p.user_id = $1`

	args := []interface{}{userID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND p.status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	if !projectSortColumns[sort] {
		sort = "created_at"
	}
	if order != "asc" && order != "desc" {
		order = "desc"
	}
	query += fmt.Sprintf(" GROUP BY p.id ORDER BY p.%s %s", sort, order)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project := &models.Project{}
		var taskCount, completedTasks int
		err := rows.Scan(
			&project.ID,
			&project.UserID,
			&project.Name,
			&project.Description,
			&project.Status,
			&project.Color,
			&project.Icon,
			&project.DueDate,
			&project.Metadata,
			&project.CreatedAt,
			&project.UpdatedAt,
			&taskCount,
			&completedTasks,
		)
		if err != nil {
			return nil, err
		}
		project.TaskCount = &taskCount
		project.CompletedTasks = &completedTasks
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// GetByID retrieves a project owned by the given user
func (r *ProjectRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Project, error) {
	project := &models.Project{}
	query := `
		SELECT id, user_id, name, description, status, color, icon,
			due_date, metadata, created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2`

	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.Color,
		&project.Icon,
		&project.DueDate,
		&project.Metadata,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return project, nil
}

// GetTaskSummaries retrieves the embedded task shapes for a single project view
func (r *ProjectRepository) GetTaskSummaries(ctx context.Context, projectID, userID uuid.UUID) ([]models.ProjectTaskSummary, error) {
	query := `
		SELECT id, title, status, priority, due_date
		FROM tasks
		WHERE project_id = $1 AND user_id = $2
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, projectID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.ProjectTaskSummary, 0)
	for rows.Next() {
		var t models.ProjectTaskSummary
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.Priority, &t.DueDate); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (user_id, name, description, status, color, icon, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, metadata, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		project.UserID,
		project.Name,
		project.Description,
		project.Status,
		project.Color,
		project.Icon,
		project.DueDate,
	).Scan(&project.ID, &project.Metadata, &project.CreatedAt, &project.UpdatedAt)
}

// Update applies an allow-listed partial update. Returns the updated row, or
// pgx.ErrNoRows when the project does not exist or is not owned by userID.
func (r *ProjectRepository) Update(ctx context.Context, id, userID uuid.UUID, update models.ProjectUpdate) (*models.Project, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	appendSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.Name != nil {
		appendSet("name", *update.Name)
	}
	if update.Description != nil {
		appendSet("description", *update.Description)
	}
	if update.Status != nil {
		appendSet("status", *update.Status)
	}
	if update.Color != nil {
		appendSet("color", *update.Color)
	}
	if update.Icon != nil {
		appendSet("icon", *update.Icon)
	}
	if update.DueDate != nil {
		appendSet("due_date", *update.DueDate)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id, userID)

	query := fmt.Sprintf(`
		UPDATE projects SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING id, user_id, name, description, status, color, icon,
			due_date, metadata, created_at, updated_at`,
		strings.Join(setClauses, ", "), argIndex, argIndex+1)

	project := &models.Project{}
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.Color,
		&project.Icon,
		&project.DueDate,
		&project.Metadata,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return project, nil
}

// Delete deletes a project owned by the given user; cascades to its tasks.
// Returns the number of rows deleted.
func (r *ProjectRepository) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Stats returns per-status project counts with overdue counts
func (r *ProjectRepository) Stats(ctx context.Context, userID uuid.UUID) ([]models.ProjectStat, error) {
	query := `
		SELECT status,
			COUNT(*) AS count,
			COUNT(CASE WHEN due_date < NOW() THEN 1 END) AS overdue
		FROM projects
		WHERE user_id = $1
		GROUP BY status`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]models.ProjectStat, 0)
	for rows.Next() {
		var s models.ProjectStat
		if err := rows.Scan(&s.Status, &s.Count, &s.Overdue); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
