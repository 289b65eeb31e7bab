package repository

import (
	"context"

	"omnimind-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AIJobRepository handles database operations for the AI processing queue
type AIJobRepository struct {
	db *pgxpool.Pool
}

// NewAIJobRepository creates a new AI job repository
func NewAIJobRepository(db *pgxpool.Pool) *AIJobRepository {
	return &AIJobRepository{db: db}
}

const aiJobColumns = `id, user_id, type, status, input_data, output_data,
	error_message, retry_count, processed_at, created_at`

func scanAIJob(row interface{ Scan(...interface{}) error }) (*models.AIJob, error) {
	job := &models.AIJob{}
	err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.Type,
		&job.Status,
		&job.InputData,
		&job.OutputData,
		&job.ErrorMessage,
		&job.RetryCount,
		&job.ProcessedAt,
		&job.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Create inserts a pending queue entry
func (r *AIJobRepository) Create(ctx context.Context, job *models.AIJob) error {
	query := `
		INSERT INTO ai_processing_queue (user_id, type, input_data)
		VALUES ($1, $2, $3)
		RETURNING id, status, retry_count, created_at`

	return r.db.QueryRow(
		ctx, query,
		job.UserID,
		job.Type,
		job.InputData,
	).Scan(&job.ID, &job.Status, &job.RetryCount, &job.CreatedAt)
}

// GetByID retrieves a queue entry by ID
func (r *AIJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AIJob, error) {
	query := `SELECT ` + aiJobColumns + ` FROM ai_processing_queue WHERE id = $1`
	return scanAIJob(r.db.QueryRow(ctx, query, id))
}

// GetByIDForUser retrieves a queue entry owned by the given user
func (r *AIJobRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.AIJob, error) {
	query := `SELECT ` + aiJobColumns + ` FROM ai_processing_queue WHERE id = $1 AND user_id = $2`
	return scanAIJob(r.db.QueryRow(ctx, query, id, userID))
}

// MarkProcessing moves an entry into the processing state
func (r *AIJobRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE ai_processing_queue SET status = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, models.AIJobStatusProcessing)
	return err
}

// Complete stores the output and marks the entry completed
func (r *AIJobRepository) Complete(ctx context.Context, id uuid.UUID, output models.JSONMap) error {
	query := `
		UPDATE ai_processing_queue SET
			status = $2,
			output_data = $3,
			processed_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.AIJobStatusCompleted, output)
	return err
}

// Fail marks the entry failed, increments retry_count by exactly one, and
// returns the new retry count so the caller can decide whether to retry.
func (r *AIJobRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string) (int, error) {
	query := `
		UPDATE ai_processing_queue SET
			status = $2,
			error_message = $3,
			retry_count = retry_count + 1
		WHERE id = $1
		RETURNING retry_count`

	var retryCount int
	err := r.db.QueryRow(ctx, query, id, models.AIJobStatusFailed, errorMessage).Scan(&retryCount)
	return retryCount, err
}
