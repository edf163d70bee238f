package service

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/pkg/config"
	"github.com/noah-isme/internship-portal-api/pkg/jobs"
	"github.com/noah-isme/internship-portal-api/pkg/mail"
)

const (
	mailJobPasswordReset = "password_reset"
	mailJobWelcome       = "welcome"
)

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "password_reset"}}<p>Hello {{.Name}},</p>
<p>We received a request to reset your Internship Portal password. The link below is valid for {{.Validity}}.</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>If you did not ask for this you can ignore this email.</p>{{end}}
{{define "welcome"}}<p>Hello {{.Name}},</p>
<p>Your Internship Portal account has been created with the role {{.Role}}.</p>
<p><a href="{{.Link}}">Sign in</a></p>{{end}}
`))

// NotificationService renders account emails and delivers them through a
// background queue so requests never wait on SMTP.
type NotificationService struct {
	sender  mail.Sender
	queue   *jobs.Queue[mail.Message]
	appURL  string
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs the service and its delivery queue. Call
// Start before sending.
func NewNotificationService(sender mail.Sender, cfg config.MailConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{sender: sender, appURL: cfg.AppURL, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue[mail.Message]("mail", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop cancels the workers and waits for in-flight deliveries to return.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// SendPasswordReset queues the reset link email.
func (s *NotificationService) SendPasswordReset(ctx context.Context, to, name, token string, validity time.Duration) error {
	body, err := render(mailJobPasswordReset, map[string]string{
		"Name":     name,
		"Link":     s.appURL + "/reset-password?token=" + token,
		"Validity": validity.String(),
	})
	if err != nil {
		return err
	}
	return s.enqueue(mailJobPasswordReset, mail.Message{To: to, Subject: "Reset your password", HTML: body})
}

// SendWelcome queues the account created email.
func (s *NotificationService) SendWelcome(ctx context.Context, to, name, role string) error {
	body, err := render(mailJobWelcome, map[string]string{
		"Name": name,
		"Role": role,
		"Link": s.appURL + "/login",
	})
	if err != nil {
		return err
	}
	return s.enqueue(mailJobWelcome, mail.Message{To: to, Subject: "Welcome to the Internship Portal", HTML: body})
}

func (s *NotificationService) enqueue(kind string, msg mail.Message) error {
	if err := s.queue.Enqueue(jobs.Job[mail.Message]{Type: kind, Payload: msg}); err != nil {
		s.logger.Warn("failed to queue mail", zap.String("type", kind), zap.String("to", msg.To), zap.Error(err))
		return err
	}
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job[mail.Message]) error {
	err := s.sender.Send(ctx, job.Payload)
	s.metrics.ObserveMail(err)
	if err == nil {
		s.logger.Debug("mail delivered", zap.String("type", job.Type), zap.String("to", job.Payload.To))
	}
	return err
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
