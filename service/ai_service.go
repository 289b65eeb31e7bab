package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"omnimind-backend/models"
	"omnimind-backend/repository"

	"github.com/google/uuid"
)

// AIJobStore is the queue persistence surface the AI service depends on
type AIJobStore interface {
	Create(ctx context.Context, job *models.AIJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AIJob, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.AIJob, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID, output models.JSONMap) error
	Fail(ctx context.Context, id uuid.UUID, errorMessage string) (int, error)
}

// AITaskStore is the task read surface for productivity and conflict analysis
type AITaskStore interface {
	History(ctx context.Context, userID uuid.UUID, days int) ([]repository.TaskHistoryRow, error)
	Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]*models.Task, error)
}

// AIMeetingStore is the meeting read surface for conflict analysis
type AIMeetingStore interface {
	Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]repository.UpcomingWindow, error)
}

// AIService turns unstructured text and task data into structured JSON via
// prompted LLM calls, and manages retries for queued jobs.
type AIService struct {
	jobs       AIJobStore
	tasks      AITaskStore
	meetings   AIMeetingStore
	completer  Completer
	retryDelay time.Duration
	maxRetries int
}

// AIServiceOption is a functional option for AIService
type AIServiceOption func(*AIService)

// AIWithJobStore sets the queue store
func AIWithJobStore(store AIJobStore) AIServiceOption {
	return func(s *AIService) {
		s.jobs = store
	}
}

// AIWithTaskStore sets the task read store
func AIWithTaskStore(store AITaskStore) AIServiceOption {
	return func(s *AIService) {
		s.tasks = store
	}
}

// AIWithMeetingStore sets the meeting read store
func AIWithMeetingStore(store AIMeetingStore) AIServiceOption {
	return func(s *AIService) {
		s.meetings = store
	}
}

// AIWithCompleter sets the LLM completer
func AIWithCompleter(completer Completer) AIServiceOption {
	return func(s *AIService) {
		s.completer = completer
	}
}

// AIWithRetryDelay overrides the delay between retry attempts
func AIWithRetryDelay(delay time.Duration) AIServiceOption {
	return func(s *AIService) {
		s.retryDelay = delay
	}
}

// NewAIService creates a new AI service
func NewAIService(opts ...AIServiceOption) *AIService {
	s := &AIService{
		retryDelay: 5 * time.Second,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrExtractionFailed    = errors.New("failed to extract tasks")
	ErrSummarizationFailed = errors.New("failed to summarize meeting")
	ErrOptimizationFailed  = errors.New("failed to optimize schedule")
	ErrAnalysisFailed      = errors.New("failed to analyze productivity patterns")
	ErrConflictsFailed     = errors.New("failed to detect conflicts")
	ErrAIJobNotFound       = errors.New("job not found in queue")
	ErrUnknownJobType      = errors.New("unknown job type")
	ErrCompleterNotSet     = errors.New("completer not set")
)

// ExtractionContext carries the metadata embedded in extraction prompts
type ExtractionContext struct {
	Source   string `json:"source"`
	Timezone string `json:"timezone"`
}

// ExtractedTask is one task descriptor returned by the extractor
type ExtractedTask struct {
	Title                    string  `json:"title"`
	Description              string  `json:"description"`
	Priority                 string  `json:"priority"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
	DueDate                  *string `json:"due_date"`
	Category                 string  `json:"category"`
	Assignee                 string  `json:"assignee"`
}

// MeetingSummary is the structured summarizer output
type MeetingSummary struct {
	Summary         string              `json:"summary"`
	KeyDecisions    []string            `json:"key_decisions"`
	ActionItems     []models.ActionItem `json:"action_items"`
	NextSteps       []string            `json:"next_steps"`
	FollowUpMeeting models.JSONMap      `json:"follow_up_meeting,omitempty"`
}

// ScheduleConstraints carries the user constraints for schedule optimization
type ScheduleConstraints struct {
	AvailableHours int            `json:"availableHours,omitempty"`
	FocusHours     string         `json:"focusHours,omitempty"`
	BreakDuration  string         `json:"breakDuration,omitempty"`
	ShortBreak     string         `json:"shortBreak,omitempty"`
	AvoidTimes     string         `json:"avoidTimes,omitempty"`
	Preferences    models.JSONMap `json:"preferences,omitempty"`
}

// ExtractTasks extracts actionable task descriptors from free-form text
func (s *AIService) ExtractTasks(ctx context.Context, text string, extractionCtx ExtractionContext) ([]ExtractedTask, error) {
	if s.completer == nil {
		return nil, ErrCompleterNotSet
	}

	source := extractionCtx.Source
	if source == "" {
		source = "general"
	}
	timezone := extractionCtx.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	prompt := fmt.Sprintf(`You are an expert task extraction assistant. Extract actionable tasks from the following text.

Text: %q

Context:
- Source: %s
- Current Date: %s
- User Timezone: %s

Extract tasks and return as JSON object {"tasks": [...]}. Each task should have:
- title (string): Clear, actionable task title
- description (string): More details about the task
- priority (string: "high", "medium", or "low"): Based on urgency and importance
- estimated_duration_minutes (number): Estimated time to complete
- due_date (string in ISO format): If mentioned, extract date. If not, leave null
- category (string): "work", "personal", "meeting", "email", "other"
- assignee (string): If mentioned, who should do it. Default to "me"

If no tasks are found, return {"tasks": []}.

Only return valid JSON. No other text.`,
		text, source, time.Now().Format("2006-01-02"), timezone)

	raw, err := s.completer.Complete(ctx, "You extract tasks from text and return valid JSON only.", prompt, 0.1)
	if err != nil {
		log.Printf("Error extracting tasks: %v", err)
		return nil, ErrExtractionFailed
	}

	tasks, err := parseExtractedTasks(raw)
	if err != nil {
		log.Printf("Error parsing extracted tasks: %v", err)
		return nil, ErrExtractionFailed
	}

	return tasks, nil
}

func parseExtractedTasks(raw string) ([]ExtractedTask, error) {
	// Models usually honor the {"tasks": [...]} wrapper, but a bare array
	// slips through occasionally.
	var wrapped struct {
		Tasks []ExtractedTask `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil {
		if wrapped.Tasks == nil {
			wrapped.Tasks = []ExtractedTask{}
		}
		return wrapped.Tasks, nil
	}

	var bare []ExtractedTask
	if err := json.Unmarshal([]byte(raw), &bare); err != nil {
		return nil, fmt.Errorf("unparseable completion: %w", err)
	}
	return bare, nil
}

// SummarizeMeeting summarizes a transcript and extracts action items
func (s *AIService) SummarizeMeeting(ctx context.Context, transcript string, durationMinutes int, participants []string) (*MeetingSummary, error) {
	if s.completer == nil {
		return nil, ErrCompleterNotSet
	}

	prompt := fmt.Sprintf(`You are a meeting summarization expert. Summarize this meeting and extract action items.

Meeting Transcript:
"""
%s
"""

Meeting Details:
- Duration: %d minutes
- Participants: %s
- Date: %s

Provide a comprehensive summary in JSON format with:
- summary (string): 2-3 paragraph summary of key discussion points
- key_decisions (array): List of decisions made
- action_items (array of objects): Each with:
  * task (string): Action item description
  * assignee (string): Person responsible
  * due_date (string): Deadline in ISO format
  * priority (string: "high", "medium", "low")
- next_steps (array): What needs to happen next
- follow_up_meeting (object or null): If needed, with topic and suggested_date

Only return valid JSON. No other text.`,
		transcript, durationMinutes, strings.Join(participants, ", "), time.Now().Format("2006-01-02"))

	raw, err := s.completer.Complete(ctx, "You summarize meetings and extract action items. Return valid JSON only.", prompt, 0.2)
	if err != nil {
		log.Printf("Error summarizing meeting: %v", err)
		return nil, ErrSummarizationFailed
	}

	var summary MeetingSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		log.Printf("Error parsing meeting summary: %v", err)
		return nil, ErrSummarizationFailed
	}

	return &summary, nil
}

// OptimizeSchedule asks the model for a 7-day schedule; there is no local
// constraint solver.
func (s *AIService) OptimizeSchedule(ctx context.Context, tasks interface{}, constraints ScheduleConstraints) (models.JSONMap, error) {
	if s.completer == nil {
		return nil, ErrCompleterNotSet
	}

	tasksJSON, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, ErrOptimizationFailed
	}

	availableHours := constraints.AvailableHours
	if availableHours == 0 {
		availableHours = 8
	}
	focusHours := constraints.FocusHours
	if focusHours == "" {
		focusHours = "09:00-12:00"
	}
	breakDuration := constraints.BreakDuration
	if breakDuration == "" {
		breakDuration = "30 minutes"
	}
	shortBreak := constraints.ShortBreak
	if shortBreak == "" {
		shortBreak = "5 minutes"
	}
	avoidTimes := constraints.AvoidTimes
	if avoidTimes == "" {
		avoidTimes = "none"
	}
	prefsJSON, _ := json.Marshal(constraints.Preferences)

	prompt := fmt.Sprintf(`Optimize this schedule considering tasks and constraints.

Tasks (in JSON format):
%s

Constraints:
- Available hours per day: %d
- Focus hours: %s
- Breaks: %s lunch, %s short breaks every hour
- Avoid scheduling: %s
- User preferences: %s

Create an optimized schedule for the next 7 days. Return JSON with:
- daily_schedule (array of objects for each day):
  * date (string)
  * tasks (array of scheduled tasks with start_time, end_time, and task_id)
  * total_hours (number)
  * focus_time_utilization (percentage)
- recommendations (array): Suggestions for better productivity
- warnings (array): If any tasks can't be scheduled

Only return valid JSON. No other text.`,
		tasksJSON, availableHours, focusHours, breakDuration, shortBreak, avoidTimes, prefsJSON)

	raw, err := s.completer.Complete(ctx, "You are a scheduling optimization expert. Return valid JSON only.", prompt, 0.3)
	if err != nil {
		log.Printf("Error optimizing schedule: %v", err)
		return nil, ErrOptimizationFailed
	}

	var schedule models.JSONMap
	if err := json.Unmarshal([]byte(raw), &schedule); err != nil {
		log.Printf("Error parsing optimized schedule: %v", err)
		return nil, ErrOptimizationFailed
	}

	return schedule, nil
}

// AnalyzeProductivity reads the trailing task history and derives insights
func (s *AIService) AnalyzeProductivity(ctx context.Context, userID uuid.UUID, days int) (models.JSONMap, error) {
	if s.completer == nil {
		return nil, ErrCompleterNotSet
	}
	if s.tasks == nil {
		return nil, errors.New("task store not set")
	}
	if days <= 0 {
		days = 30
	}

	history, err := s.tasks.History(ctx, userID, days)
	if err != nil {
		log.Printf("Error loading task history: %v", err)
		return nil, ErrAnalysisFailed
	}

	if len(history) == 0 {
		return models.JSONMap{
			"patterns":    models.JSONMap{},
			"suggestions": []interface{}{},
		}, nil
	}

	historyJSON, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return nil, ErrAnalysisFailed
	}

	prompt := fmt.Sprintf(`Analyze this productivity data and provide insights:

Task Data (in JSON):
%s

Analyze and return JSON with:
- patterns (object):
  * most_productive_days (array of day names)
  * average_completion_rate (percentage)
  * common_task_types (array)
  * time_estimation_accuracy (percentage)
  * priority_distribution (object with high/medium/low percentages)
- suggestions (array): Specific, actionable suggestions for improvement
- predicted_productivity_score (number 1-100)
- recommended_focus_times (array of best times to work based on patterns)

Only return valid JSON. No other text.`, historyJSON)

	raw, err := s.completer.Complete(ctx, "You are a productivity analyst. Return valid JSON only.", prompt, 0.2)
	if err != nil {
		log.Printf("Error analyzing productivity patterns: %v", err)
		return nil, ErrAnalysisFailed
	}

	var insights models.JSONMap
	if err := json.Unmarshal([]byte(raw), &insights); err != nil {
		log.Printf("Error parsing productivity insights: %v", err)
		return nil, ErrAnalysisFailed
	}

	return insights, nil
}

// DetectConflicts analyzes upcoming tasks and meetings for scheduling
// conflicts and workload problems.
func (s *AIService) DetectConflicts(ctx context.Context, userID uuid.UUID) (models.JSONMap, error) {
	if s.completer == nil {
		return nil, ErrCompleterNotSet
	}
	if s.tasks == nil || s.meetings == nil {
		return nil, errors.New("task and meeting stores not set")
	}

	tasks, err := s.tasks.Upcoming(ctx, userID, 7)
	if err != nil {
		log.Printf("Error loading upcoming tasks: %v", err)
		return nil, ErrConflictsFailed
	}
	meetings, err := s.meetings.Upcoming(ctx, userID, 7)
	if err != nil {
		log.Printf("Error loading upcoming meetings: %v", err)
		return nil, ErrConflictsFailed
	}

	type taskWindow struct {
		ID                uuid.UUID           `json:"id"`
		Title             string              `json:"title"`
		DueDate           *time.Time          `json:"due_date"`
		Priority          models.TaskPriority `json:"priority"`
		EstimatedDuration *int                `json:"estimated_duration"`
	}
	windows := make([]taskWindow, 0, len(tasks))
	for _, t := range tasks {
		windows = append(windows, taskWindow{
			ID:                t.ID,
			Title:             t.Title,
			DueDate:           t.DueDate,
			Priority:          t.Priority,
			EstimatedDuration: t.EstimatedDuration,
		})
	}

	tasksJSON, _ := json.MarshalIndent(windows, "", "  ")
	meetingsJSON, _ := json.MarshalIndent(meetings, "", "  ")

	prompt := fmt.Sprintf(`Analyze these upcoming items for conflicts and provide suggestions:

Upcoming Tasks:
%s

Upcoming Meetings:
%s

Analyze and return JSON with:
- conflicts (array of objects):
  * type (string): "time_conflict", "priority_conflict", "workload_conflict"
  * description (string)
  * items_involved (array of item IDs)
  * severity (string: "high", "medium", "low")
- suggestions (array of objects):
  * type (string): "reschedule", "delegate", "break_down", "prioritize"
  * description (string)
  * items_affected (array of item IDs)
  * estimated_benefit (string)
- workload_assessment (object):
  * total_hours_required (number)
  * available_hours (number, default 40)
  * overload_percentage (number)
  * recommended_adjustments (array)

Only return valid JSON. No other text.`, tasksJSON, meetingsJSON)

	raw, err := s.completer.Complete(ctx, "You are a scheduling conflict detection system. Return valid JSON only.", prompt, 0.1)
	if err != nil {
		log.Printf("Error detecting conflicts: %v", err)
		return nil, ErrConflictsFailed
	}

	var result models.JSONMap
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.Printf("Error parsing conflict analysis: %v", err)
		return nil, ErrConflictsFailed
	}

	return result, nil
}

// QueueJob inserts a pending queue entry and kicks off background processing.
// The caller does not wait for completion; it polls the job row instead.
func (s *AIService) QueueJob(ctx context.Context, userID uuid.UUID, jobType models.AIJobType, input models.JSONMap) (*models.AIJob, error) {
	if s.jobs == nil {
		return nil, errors.New("job store not set")
	}
	if !models.ValidAIJobType(jobType) {
		return nil, ErrUnknownJobType
	}

	job := &models.AIJob{
		UserID:    userID,
		Type:      jobType,
		InputData: input,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create queue entry: %w", err)
	}

	// Background context, not the request context: the HTTP response returns
	// long before the job finishes.
	go s.runJob(job.ID)

	return job, nil
}

func (s *AIService) runJob(id uuid.UUID) {
	if err := s.ProcessJob(context.Background(), id); err != nil {
		log.Printf("AI job %s failed: %v", id, err)
	}
}

// ProcessJob loads a queue entry, marks it processing, dispatches to the
// handler for its type, and writes back the output or the error. A failed
// attempt increments retry_count and reschedules after retryDelay while the
// count stays below maxRetries; after that the row is left failed.
func (s *AIService) ProcessJob(ctx context.Context, id uuid.UUID) error {
	if s.jobs == nil {
		return errors.New("job store not set")
	}

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return ErrAIJobNotFound
	}

	if err := s.jobs.MarkProcessing(ctx, id); err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}

	output, err := s.dispatch(ctx, job)
	if err != nil {
		retryCount, failErr := s.jobs.Fail(ctx, id, err.Error())
		if failErr != nil {
			log.Printf("Failed to record job failure for %s: %v", id, failErr)
			return err
		}
		if retryCount < s.maxRetries {
			// In-memory timer: a restart before it fires drops the retry.
			time.AfterFunc(s.retryDelay, func() { s.runJob(id) })
		}
		return err
	}

	if err := s.jobs.Complete(ctx, id, output); err != nil {
		return fmt.Errorf("store job output: %w", err)
	}

	log.Printf("AI job completed: %s for user %s", job.Type, job.UserID)
	return nil
}

func (s *AIService) dispatch(ctx context.Context, job *models.AIJob) (models.JSONMap, error) {
	switch job.Type {
	case models.AIJobTypeExtractTasks:
		text, _ := job.InputData["text"].(string)
		extractionCtx := ExtractionContext{}
		if raw, ok := job.InputData["context"].(map[string]interface{}); ok {
			extractionCtx.Source, _ = raw["source"].(string)
			extractionCtx.Timezone, _ = raw["timezone"].(string)
		}
		tasks, err := s.ExtractTasks(ctx, text, extractionCtx)
		if err != nil {
			return nil, err
		}
		return toJSONMap(map[string]interface{}{"tasks": tasks})

	case models.AIJobTypeSummarizeMeeting:
		transcript, _ := job.InputData["transcript"].(string)
		duration := 0
		if d, ok := job.InputData["duration"].(float64); ok {
			duration = int(d)
		}
		var participants []string
		if raw, ok := job.InputData["participants"].([]interface{}); ok {
			for _, p := range raw {
				if name, ok := p.(string); ok {
					participants = append(participants, name)
				}
			}
		}
		summary, err := s.SummarizeMeeting(ctx, transcript, duration, participants)
		if err != nil {
			return nil, err
		}
		return toJSONMap(summary)

	case models.AIJobTypeOptimizeSchedule:
		constraints := ScheduleConstraints{}
		if raw, ok := job.InputData["constraints"]; ok {
			if data, err := json.Marshal(raw); err == nil {
				_ = json.Unmarshal(data, &constraints)
			}
		}
		return s.OptimizeSchedule(ctx, job.InputData["tasks"], constraints)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}
}

// GetJobForUser retrieves a queue entry scoped to its owner
func (s *AIService) GetJobForUser(ctx context.Context, id, userID uuid.UUID) (*models.AIJob, error) {
	if s.jobs == nil {
		return nil, errors.New("job store not set")
	}
	job, err := s.jobs.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, ErrAIJobNotFound
	}
	return job, nil
}

func toJSONMap(v interface{}) (models.JSONMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out models.JSONMap
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
