package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"omnimind-backend/middleware"
	"omnimind-backend/models"
	"omnimind-backend/repository"
	"omnimind-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryJobStore backs the AI service during handler tests
type memoryJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.AIJob
}

func newMemoryJobStore() *memoryJobStore {
	return &memoryJobStore{jobs: make(map[uuid.UUID]*models.AIJob)}
}

func (m *memoryJobStore) Create(ctx context.Context, job *models.AIJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.ID = uuid.New()
	job.Status = models.AIJobStatusPending
	job.CreatedAt = time.Now()
	m.jobs[job.ID] = job
	return nil
}

func (m *memoryJobStore) GetByID(ctx context.Context, id uuid.UUID) (*models.AIJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (m *memoryJobStore) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.AIJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (m *memoryJobStore) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[id].Status = models.AIJobStatusProcessing
	return nil
}

func (m *memoryJobStore) Complete(ctx context.Context, id uuid.UUID, output models.JSONMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[id].Status = models.AIJobStatusCompleted
	m.jobs[id].OutputData = output
	return nil
}

func (m *memoryJobStore) Fail(ctx context.Context, id uuid.UUID, errorMessage string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := m.jobs[id]
	job.Status = models.AIJobStatusFailed
	job.ErrorMessage = &errorMessage
	job.RetryCount++
	return job.RetryCount, nil
}

func (m *memoryJobStore) status(id uuid.UUID) models.AIJobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id].Status
}

// stubCompleter returns a fixed completion or a fixed error
type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

// emptyTaskReader serves the synchronous analysis endpoints
type emptyTaskReader struct{}

func (emptyTaskReader) History(ctx context.Context, userID uuid.UUID, days int) ([]repository.TaskHistoryRow, error) {
	return nil, nil
}

func (emptyTaskReader) Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]*models.Task, error) {
	return nil, nil
}

type emptyMeetingReader struct{}

func (emptyMeetingReader) Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]repository.UpcomingWindow, error) {
	return nil, nil
}

func newAIRouter(jobs *memoryJobStore, completer *stubCompleter, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ai := service.NewAIService(
		service.AIWithJobStore(jobs),
		service.AIWithTaskStore(emptyTaskReader{}),
		service.AIWithMeetingStore(emptyMeetingReader{}),
		service.AIWithCompleter(completer),
		service.AIWithRetryDelay(time.Millisecond),
	)
	h := NewAIHandler(ai)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	})
	r.POST("/ai/extract-tasks", h.ExtractTasks)
	r.POST("/ai/summarize-meeting", h.SummarizeMeeting)
	r.POST("/ai/optimize-schedule", h.OptimizeSchedule)
	r.GET("/ai/jobs/:id", h.GetJob)
	r.GET("/ai/productivity-insights", h.ProductivityInsights)
	r.GET("/ai/detect-conflicts", h.DetectConflicts)
	return r
}

func TestExtractTasksReturnsTasks(t *testing.T) {
	r := newAIRouter(newMemoryJobStore(), &stubCompleter{
		response: `{"tasks":[{"title":"Send the report","priority":"high"}]}`,
	}, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/ai/extract-tasks", gin.H{
		"text":    "Remember to send the quarterly report by Friday",
		"context": gin.H{"source": "email"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Tasks   []struct {
			Title    string `json:"title"`
			Priority string `json:"priority"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "Send the report", resp.Tasks[0].Title)
}

func TestExtractTasksUpstreamFailure(t *testing.T) {
	r := newAIRouter(newMemoryJobStore(), &stubCompleter{
		err: errors.New("model unavailable"),
	}, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/ai/extract-tasks", gin.H{
		"text": "Remember to send the quarterly report by Friday",
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "Failed to extract tasks")
}

func TestExtractTasksRejectsShortText(t *testing.T) {
	r := newAIRouter(newMemoryJobStore(), &stubCompleter{response: "{}"}, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/ai/extract-tasks", gin.H{"text": "too short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummarizeMeetingReturnsSummary(t *testing.T) {
	r := newAIRouter(newMemoryJobStore(), &stubCompleter{
		response: `{"summary":"Team agreed to ship in March.","key_decisions":["Ship in March"],"action_items":[],"next_steps":[]}`,
	}, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/ai/summarize-meeting", gin.H{
		"transcript": "We discussed the roadmap at length and agreed on three deliverables for Q2.",
		"duration":   45,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Team agreed to ship in March.")
}

func TestSummarizeMeetingRejectsBadDuration(t *testing.T) {
	r := newAIRouter(newMemoryJobStore(), &stubCompleter{response: "{}"}, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/ai/summarize-meeting", gin.H{
		"transcript": "We discussed the roadmap at length and agreed on three deliverables for Q2.",
		"duration":   500,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizeScheduleQueuesJob(t *testing.T) {
	jobs := newMemoryJobStore()
	r := newAIRouter(jobs, &stubCompleter{
		response: `{"daily_schedule":[],"recommendations":[],"warnings":[]}`,
	}, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/ai/optimize-schedule", gin.H{
		"tasks": []gin.H{{"title": "Write report", "priority": "high"}},
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		JobID  uuid.UUID `json:"job_id"`
		Status string    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp.Status)

	require.Eventually(t, func() bool {
		return jobs.status(resp.JobID) == models.AIJobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOptimizeScheduleRequiresTasks(t *testing.T) {
	r := newAIRouter(newMemoryJobStore(), &stubCompleter{response: "{}"}, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/ai/optimize-schedule", gin.H{
		"tasks": []gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJobScopedToOwner(t *testing.T) {
	jobs := newMemoryJobStore()
	owner := uuid.New()
	r := newAIRouter(jobs, &stubCompleter{response: `{"tasks":[]}`}, owner)

	job := &models.AIJob{UserID: uuid.New(), Type: models.AIJobTypeExtractTasks}
	require.NoError(t, jobs.Create(context.Background(), job))

	w := doJSON(t, r, http.MethodGet, "/ai/jobs/"+job.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetJobReturnsOutput(t *testing.T) {
	jobs := newMemoryJobStore()
	userID := uuid.New()
	r := newAIRouter(jobs, &stubCompleter{response: `{"tasks":[]}`}, userID)

	job := &models.AIJob{UserID: userID, Type: models.AIJobTypeExtractTasks}
	require.NoError(t, jobs.Create(context.Background(), job))
	require.NoError(t, jobs.Complete(context.Background(), job.ID, models.JSONMap{"tasks": []interface{}{}}))

	w := doJSON(t, r, http.MethodGet, "/ai/jobs/"+job.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completed"`)
}

func TestProductivityInsightsEmptyHistory(t *testing.T) {
	r := newAIRouter(newMemoryJobStore(), &stubCompleter{response: "{}"}, uuid.New())

	w := doJSON(t, r, http.MethodGet, "/ai/productivity-insights?days=14", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"patterns"`)
	assert.Contains(t, w.Body.String(), `"suggestions"`)
}

func TestDetectConflictsWithNoSchedule(t *testing.T) {
	r := newAIRouter(newMemoryJobStore(), &stubCompleter{response: `{"conflicts":[],"suggestions":[]}`}, uuid.New())

	w := doJSON(t, r, http.MethodGet, "/ai/detect-conflicts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"analysis"`)
}
