package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"omnimind-backend/models"
	"omnimind-backend/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter returns canned responses or errors in order
type fakeCompleter struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	prompts   []string
	systems   []string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	f.systems = append(f.systems, system)
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "{}", nil
}

// fakeJobStore keeps queue rows in memory
type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.AIJob
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]*models.AIJob)}
}

func (f *fakeJobStore) Create(ctx context.Context, job *models.AIJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.ID = uuid.New()
	job.Status = models.AIJobStatusPending
	job.CreatedAt = time.Now()
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobStore) GetByID(ctx context.Context, id uuid.UUID) (*models.AIJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobStore) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.AIJob, error) {
	job, err := f.GetByID(ctx, id)
	if err != nil || job.UserID != userID {
		return nil, errors.New("no rows")
	}
	return job, nil
}

func (f *fakeJobStore) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[id].Status = models.AIJobStatusProcessing
	return nil
}

func (f *fakeJobStore) Complete(ctx context.Context, id uuid.UUID, output models.JSONMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.jobs[id].Status = models.AIJobStatusCompleted
	f.jobs[id].OutputData = output
	f.jobs[id].ProcessedAt = &now
	return nil
}

func (f *fakeJobStore) Fail(ctx context.Context, id uuid.UUID, errorMessage string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := f.jobs[id]
	job.Status = models.AIJobStatusFailed
	job.ErrorMessage = &errorMessage
	job.RetryCount++
	return job.RetryCount, nil
}

func (f *fakeJobStore) status(id uuid.UUID) models.AIJobStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id].Status
}

func (f *fakeJobStore) retries(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id].RetryCount
}

type fakeTaskReader struct {
	history  []repository.TaskHistoryRow
	upcoming []*models.Task
}

func (f *fakeTaskReader) History(ctx context.Context, userID uuid.UUID, days int) ([]repository.TaskHistoryRow, error) {
	return f.history, nil
}

func (f *fakeTaskReader) Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]*models.Task, error) {
	return f.upcoming, nil
}

type fakeMeetingReader struct {
	windows []repository.UpcomingWindow
}

func (f *fakeMeetingReader) Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]repository.UpcomingWindow, error) {
	return f.windows, nil
}

func TestExtractTasksParsesWrappedObject(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		`{"tasks": [{"title": "Send the quarterly report", "priority": "high", "estimated_duration_minutes": 45, "category": "work", "assignee": "me"}]}`,
	}}
	svc := NewAIService(AIWithCompleter(completer))

	tasks, err := svc.ExtractTasks(context.Background(), "Don't forget to send the quarterly report by Friday", ExtractionContext{Source: "email"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Send the quarterly report", tasks[0].Title)
	assert.Equal(t, "high", tasks[0].Priority)
	assert.Equal(t, 45, tasks[0].EstimatedDurationMinutes)

	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "quarterly report")
	assert.Contains(t, completer.prompts[0], "Source: email")
	assert.Contains(t, completer.prompts[0], "Only return valid JSON")
}

func TestExtractTasksParsesBareArray(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		`[{"title": "Book flights"}]`,
	}}
	svc := NewAIService(AIWithCompleter(completer))

	tasks, err := svc.ExtractTasks(context.Background(), "Need to book flights for the offsite", ExtractionContext{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Book flights", tasks[0].Title)
}

func TestExtractTasksEmptyResult(t *testing.T) {
	completer := &fakeCompleter{responses: []string{`{"tasks": []}`}}
	svc := NewAIService(AIWithCompleter(completer))

	tasks, err := svc.ExtractTasks(context.Background(), "Nothing actionable in here at all", ExtractionContext{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestExtractTasksUnparseableCompletion(t *testing.T) {
	completer := &fakeCompleter{responses: []string{`sorry, I cannot help with that`}}
	svc := NewAIService(AIWithCompleter(completer))

	_, err := svc.ExtractTasks(context.Background(), "some text long enough", ExtractionContext{})
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestSummarizeMeeting(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		`{"summary": "The team agreed to ship in March.", "key_decisions": ["Ship in March"], "action_items": [{"task": "Write release notes", "assignee": "Dana", "priority": "medium"}], "next_steps": ["Draft announcement"]}`,
	}}
	svc := NewAIService(AIWithCompleter(completer))

	summary, err := svc.SummarizeMeeting(context.Background(), "long transcript of the planning meeting goes here", 30, []string{"Dana", "Kim"})
	require.NoError(t, err)
	assert.Equal(t, "The team agreed to ship in March.", summary.Summary)
	require.Len(t, summary.ActionItems, 1)
	assert.Equal(t, "Write release notes", summary.ActionItems[0].Task)
	assert.Contains(t, completer.prompts[0], "Dana, Kim")
	assert.Contains(t, completer.prompts[0], "Duration: 30 minutes")
}

func TestAnalyzeProductivityEmptyHistory(t *testing.T) {
	completer := &fakeCompleter{}
	svc := NewAIService(
		AIWithCompleter(completer),
		AIWithTaskStore(&fakeTaskReader{}),
	)

	insights, err := svc.AnalyzeProductivity(context.Background(), uuid.New(), 30)
	require.NoError(t, err)
	assert.Equal(t, models.JSONMap{}, insights["patterns"])
	assert.Empty(t, insights["suggestions"])
	// The model is never consulted when there is no history
	assert.Equal(t, 0, completer.calls)
}

func TestAnalyzeProductivityWithHistory(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		`{"patterns": {"average_completion_rate": 72}, "suggestions": ["Batch email work"], "predicted_productivity_score": 68}`,
	}}
	svc := NewAIService(
		AIWithCompleter(completer),
		AIWithTaskStore(&fakeTaskReader{history: []repository.TaskHistoryRow{
			{Date: time.Now(), Status: models.TaskStatusCompleted, Priority: models.TaskPriorityHigh, DayOfWeek: 2},
		}}),
	)

	insights, err := svc.AnalyzeProductivity(context.Background(), uuid.New(), 30)
	require.NoError(t, err)
	assert.EqualValues(t, 68, insights["predicted_productivity_score"])
}

func TestDetectConflicts(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		`{"conflicts": [], "suggestions": [], "workload_assessment": {"total_hours_required": 12, "available_hours": 40, "overload_percentage": 0}}`,
	}}
	svc := NewAIService(
		AIWithCompleter(completer),
		AIWithTaskStore(&fakeTaskReader{}),
		AIWithMeetingStore(&fakeMeetingReader{}),
	)

	result, err := svc.DetectConflicts(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Contains(t, result, "workload_assessment")
}

func TestQueueJobRejectsUnknownType(t *testing.T) {
	svc := NewAIService(AIWithJobStore(newFakeJobStore()))

	_, err := svc.QueueJob(context.Background(), uuid.New(), "translate_document", models.JSONMap{})
	assert.ErrorIs(t, err, ErrUnknownJobType)
}

func TestQueueJobCompletesInBackground(t *testing.T) {
	store := newFakeJobStore()
	completer := &fakeCompleter{responses: []string{`{"tasks": [{"title": "Call the vendor"}]}`}}
	svc := NewAIService(
		AIWithJobStore(store),
		AIWithCompleter(completer),
	)

	job, err := svc.QueueJob(context.Background(), uuid.New(), models.AIJobTypeExtractTasks, models.JSONMap{
		"text": "call the vendor about the renewal",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, job.ID)

	require.Eventually(t, func() bool {
		return store.status(job.ID) == models.AIJobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := store.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.OutputData)
	assert.Contains(t, stored.OutputData, "tasks")
	assert.NotNil(t, stored.ProcessedAt)
}

func TestProcessJobRetriesUntilLimit(t *testing.T) {
	store := newFakeJobStore()
	boom := errors.New("model unavailable")
	completer := &fakeCompleter{errs: []error{boom, boom, boom, boom}}
	svc := NewAIService(
		AIWithJobStore(store),
		AIWithCompleter(completer),
		AIWithRetryDelay(5*time.Millisecond),
	)

	job := &models.AIJob{UserID: uuid.New(), Type: models.AIJobTypeExtractTasks, InputData: models.JSONMap{"text": "whatever"}}
	require.NoError(t, store.Create(context.Background(), job))

	err := svc.ProcessJob(context.Background(), job.ID)
	require.Error(t, err)

	// Two more scheduled attempts, then the row stays failed
	require.Eventually(t, func() bool {
		return store.retries(job.ID) == 3
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, store.retries(job.ID))
	assert.Equal(t, models.AIJobStatusFailed, store.status(job.ID))
}

func TestProcessJobRecoversOnRetry(t *testing.T) {
	store := newFakeJobStore()
	completer := &fakeCompleter{
		errs:      []error{errors.New("timeout"), nil},
		responses: []string{"", `{"tasks": []}`},
	}
	svc := NewAIService(
		AIWithJobStore(store),
		AIWithCompleter(completer),
		AIWithRetryDelay(5*time.Millisecond),
	)

	job := &models.AIJob{UserID: uuid.New(), Type: models.AIJobTypeExtractTasks, InputData: models.JSONMap{"text": "whatever"}}
	require.NoError(t, store.Create(context.Background(), job))

	require.Error(t, svc.ProcessJob(context.Background(), job.ID))

	require.Eventually(t, func() bool {
		return store.status(job.ID) == models.AIJobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, store.retries(job.ID))
}

func TestGetJobForUserScopesToOwner(t *testing.T) {
	store := newFakeJobStore()
	svc := NewAIService(AIWithJobStore(store))

	owner := uuid.New()
	job := &models.AIJob{UserID: owner, Type: models.AIJobTypeExtractTasks, InputData: models.JSONMap{}}
	require.NoError(t, store.Create(context.Background(), job))

	got, err := svc.GetJobForUser(context.Background(), job.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	_, err = svc.GetJobForUser(context.Background(), job.ID, uuid.New())
	assert.ErrorIs(t, err, ErrAIJobNotFound)
}
