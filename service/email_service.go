package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"omnimind-backend/models"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	From        string
	FromName    string
	FrontendURL string
}

// EmailService sends transactional email over SMTP
type EmailService struct {
	config EmailConfig
	server string
	auth   smtp.Auth
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	return &EmailService{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
	}
}

// IsConfigured returns true if email is configured
func (s *EmailService) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendHTMLEmail sends a multipart email with an HTML body
func (s *EmailService) SendHTMLEmail(to []string, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	boundary := "boundary-omnimind"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	// Plain text part (fallback)
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "Please view this email in an HTML-capable email client.\r\n")
	fmt.Fprintf(&msg, "\r\n")

	// HTML part
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg.Bytes())
}

// WelcomeData holds data for the welcome template
type WelcomeData struct {
	AppName      string
	UserName     string
	DashboardURL string
}

// TaskReminderData holds data for the task reminder template
type TaskReminderData struct {
	AppName  string
	UserName string
	Title    string
	DueDate  string
	Priority string
	TaskURL  string
}

// DailyDigestData holds data for the daily digest template
type DailyDigestData struct {
	AppName        string
	UserName       string
	Date           string
	TasksDueToday  int
	TasksOverdue   int
	TasksCompleted int
	UpcomingTasks  []DigestTask
	DashboardURL   string
}

// DigestTask is one task line in the daily digest
type DigestTask struct {
	Title    string
	DueDate  string
	Priority string
}


// SendWelcome sends the post-registration welcome email
func (s *EmailService) SendWelcome(ctx context.Context, to, name string) error {
	data := WelcomeData{
		AppName:      "OmniMind",
		UserName:     name,
		DashboardURL: s.config.FrontendURL + "/dashboard",
	}

	html, err := renderEmailTemplate(welcomeEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render welcome template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, "Welcome to OmniMind!", html)
}

// SendTaskReminder sends a reminder for a task approaching its due date
func (s *EmailService) SendTaskReminder(ctx context.Context, to, name string, task *models.Task) error {
	due := "No due date"
	if task.DueDate != nil {
		due = task.DueDate.Format("Monday, January 2 at 3:04 PM")
	}

	data := TaskReminderData{
		AppName:  "OmniMind",
		UserName: name,
		Title:    task.Title,
		DueDate:  due,
		Priority: strings.ToUpper(string(task.Priority)),
		TaskURL:  fmt.Sprintf("%s/tasks/%s", s.config.FrontendURL, task.ID),
	}

	html, err := renderEmailTemplate(taskReminderEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render task reminder template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, fmt.Sprintf("Reminder: %s", task.Title), html)
}

// SendDailyDigest sends the morning summary of the day's workload
func (s *EmailService) SendDailyDigest(ctx context.Context, to string, data DailyDigestData) error {
	data.AppName = "OmniMind"
	data.DashboardURL = s.config.FrontendURL + "/dashboard"

	html, err := renderEmailTemplate(dailyDigestEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render daily digest template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, fmt.Sprintf("Your OmniMind digest for %s", data.Date), html)
}


func renderEmailTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const welcomeEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Welcome to {{.AppName}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #6c5ce7; padding-bottom: 10px; margin-bottom: 20px; }
        .button { display: inline-block; padding: 12px 24px; background: #6c5ce7; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Welcome, {{.UserName}}!</h2>

    <p>Your account is ready. {{.AppName}} turns your notes, emails and meeting transcripts into organized tasks so nothing slips through.</p>

    <p>A few things to try first:</p>
    <ul>
        <li>Paste any text into the task extractor and watch it become a task list</li>
        <li>Upload a meeting transcript for an automatic summary with action items</li>
        <li>Let the schedule optimizer plan your week around your focus hours</li>
    </ul>

    <p>
        <a href="{{.DashboardURL}}" class="button">Open Your Dashboard</a>
    </p>

    <div class="footer">
        <p>You are receiving this because an account was created with this address on {{.AppName}}.</p>
    </div>
</body>
</html>`

const taskReminderEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Task Reminder</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #6c5ce7; padding-bottom: 10px; margin-bottom: 20px; }
        .task-card { background: #f8f9fa; border-left: 4px solid #6c5ce7; padding: 16px; border-radius: 4px; margin: 20px 0; }
        .priority { display: inline-block; padding: 2px 10px; border-radius: 10px; font-size: 12px; background: #ffeaa7; }
        .button { display: inline-block; padding: 12px 24px; background: #6c5ce7; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Hi {{.UserName}},</h2>

    <p>This is a reminder about an upcoming task:</p>

    <div class="task-card">
        <h3>{{.Title}}</h3>
        <p>Due: {{.DueDate}}</p>
        <span class="priority">{{.Priority}}</span>
    </div>

    <p>
        <a href="{{.TaskURL}}" class="button">View Task</a>
    </p>

    <div class="footer">
        <p>You can turn off task reminders in your notification preferences.</p>
    </div>
</body>
</html>`

const dailyDigestEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your Daily Digest</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #6c5ce7; padding-bottom: 10px; margin-bottom: 20px; }
        .stats { display: flex; margin: 20px 0; }
        .stat { background: #f8f9fa; border-radius: 4px; padding: 12px 20px; margin-right: 12px; text-align: center; }
        .stat .num { font-size: 24px; font-weight: bold; color: #6c5ce7; }
        .task-row { padding: 10px 0; border-bottom: 1px solid #eee; }
        .button { display: inline-block; padding: 12px 24px; background: #6c5ce7; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Good morning, {{.UserName}}!</h2>
    <p>Here is your summary for {{.Date}}:</p>

    <div class="stats">
        <div class="stat"><div class="num">{{.TasksDueToday}}</div>Due today</div>
        <div class="stat"><div class="num">{{.TasksOverdue}}</div>Overdue</div>
        <div class="stat"><div class="num">{{.TasksCompleted}}</div>Completed yesterday</div>
    </div>

    {{if .UpcomingTasks}}
    <h3>Coming up</h3>
    {{range .UpcomingTasks}}
    <div class="task-row">
        <strong>{{.Title}}</strong> &mdash; {{.DueDate}} ({{.Priority}})
    </div>
    {{end}}
    {{end}}

    <p>
        <a href="{{.DashboardURL}}" class="button">Open Your Dashboard</a>
    </p>

    <div class="footer">
        <p>You can turn off the daily digest in your notification preferences.</p>
    </div>
</body>
</html>`

