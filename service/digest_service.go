package service

import (
	"context"
	"log"
	"time"

	"omnimind-backend/models"
	"omnimind-backend/repository"

	"github.com/google/uuid"
)

// DigestUserStore lists users who opted into the daily digest
type DigestUserStore interface {
	ListDigestRecipients(ctx context.Context) ([]*models.User, error)
}

// DigestTaskStore provides the task aggregates behind a digest
type DigestTaskStore interface {
	Digest(ctx context.Context, userID uuid.UUID) (repository.DigestStats, error)
	Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]*models.Task, error)
}

// ScheduledNotificationStore provides due scheduled notifications
type ScheduledNotificationStore interface {
	DueScheduled(ctx context.Context) ([]*models.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

// DigestMailer sends the daily digest email
type DigestMailer interface {
	IsConfigured() bool
	SendDailyDigest(ctx context.Context, to string, data DailyDigestData) error
}

// DigestService assembles and sends the daily digest and dispatches
// notifications whose scheduled time has arrived.
type DigestService struct {
	users         DigestUserStore
	tasks         DigestTaskStore
	notifications ScheduledNotificationStore
	mailer        DigestMailer
}

// DigestServiceOption is a functional option for DigestService
type DigestServiceOption func(*DigestService)

// DigestWithUserStore sets the user store
func DigestWithUserStore(store DigestUserStore) DigestServiceOption {
	return func(s *DigestService) {
		s.users = store
	}
}

// DigestWithTaskStore sets the task store
func DigestWithTaskStore(store DigestTaskStore) DigestServiceOption {
	return func(s *DigestService) {
		s.tasks = store
	}
}

// DigestWithNotificationStore sets the scheduled notification store
func DigestWithNotificationStore(store ScheduledNotificationStore) DigestServiceOption {
	return func(s *DigestService) {
		s.notifications = store
	}
}

// DigestWithMailer sets the digest mailer
func DigestWithMailer(mailer DigestMailer) DigestServiceOption {
	return func(s *DigestService) {
		s.mailer = mailer
	}
}

// NewDigestService creates a new digest service
func NewDigestService(opts ...DigestServiceOption) *DigestService {
	s := &DigestService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendDailyDigests emails the morning summary to every opted-in user.
// One failed recipient does not stop the run.
func (s *DigestService) SendDailyDigests(ctx context.Context) error {
	if s.mailer == nil || !s.mailer.IsConfigured() {
		log.Printf("Daily digest skipped: email not configured")
		return nil
	}

	recipients, err := s.users.ListDigestRecipients(ctx)
	if err != nil {
		return err
	}

	sent := 0
	for _, user := range recipients {
		data, err := s.buildDigest(ctx, user)
		if err != nil {
			log.Printf("Failed to build digest for %s: %v", user.ID, err)
			continue
		}
		if err := s.mailer.SendDailyDigest(ctx, user.Email, *data); err != nil {
			log.Printf("Failed to send digest to %s: %v", user.Email, err)
			continue
		}
		sent++
	}

	log.Printf("Daily digest run complete: %d/%d sent", sent, len(recipients))
	return nil
}

func (s *DigestService) buildDigest(ctx context.Context, user *models.User) (*DailyDigestData, error) {
	stats, err := s.tasks.Digest(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.tasks.Upcoming(ctx, user.ID, 3)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)

	items := make([]DigestTask, 0, len(upcoming))
	for _, t := range upcoming {
		due := "no due date"
		if t.DueDate != nil {
			due = t.DueDate.In(loc).Format("Mon Jan 2, 3:04 PM")
		}
		items = append(items, DigestTask{
			Title:    t.Title,
			DueDate:  due,
			Priority: string(t.Priority),
		})
	}

	return &DailyDigestData{
		UserName:       user.Name,
		Date:           now.Format("Monday, January 2"),
		TasksDueToday:  stats.DueToday,
		TasksOverdue:   stats.Overdue,
		TasksCompleted: stats.Completed,
		UpcomingTasks:  items,
	}, nil
}

// DispatchScheduled stamps sent_at on every notification whose scheduled
// time has passed, making it visible to the list endpoint as delivered.
func (s *DigestService) DispatchScheduled(ctx context.Context) error {
	due, err := s.notifications.DueScheduled(ctx)
	if err != nil {
		return err
	}

	for _, n := range due {
		if err := s.notifications.MarkSent(ctx, n.ID); err != nil {
			log.Printf("Failed to dispatch notification %s: %v", n.ID, err)
		}
	}

	if len(due) > 0 {
		log.Printf("Dispatched %d scheduled notifications", len(due))
	}
	return nil
}
