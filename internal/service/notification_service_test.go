package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/pkg/config"
	"github.com/noah-isme/internship-portal-api/pkg/mail"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []mail.Message
	failures int
}

func (f *fakeSender) Send(ctx context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp unavailable")
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeSender) sent() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.messages...)
}

func TestNotificationServiceDeliversPasswordReset(t *testing.T) {
	sender := &fakeSender{}
	metrics := NewMetricsService()
	svc := NewNotificationService(sender, config.MailConfig{AppURL: "https://portal.example.com", Workers: 1}, metrics, zap.NewNop())
	svc.Start(context.Background())
	defer svc.Stop()

	require.NoError(t, svc.SendPasswordReset(context.Background(), "sana@nu.edu.pk", "Sana", "abc123", time.Hour))

	assert.Eventually(t, func() bool { return len(sender.sent()) == 1 }, time.Second, 10*time.Millisecond)
	msg := sender.sent()[0]
	assert.Equal(t, "sana@nu.edu.pk", msg.To)
	assert.Equal(t, "Reset your password", msg.Subject)
	assert.Contains(t, msg.HTML, "https://portal.example.com/reset-password?token=abc123")
	assert.Contains(t, msg.HTML, "1h0m0s")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.mailDeliveries.WithLabelValues("sent")))
}

func TestNotificationServiceEscapesNames(t *testing.T) {
	sender := &fakeSender{}
	svc := NewNotificationService(sender, config.MailConfig{AppURL: "http://localhost:3000"}, nil, zap.NewNop())
	svc.Start(context.Background())
	defer svc.Stop()

	require.NoError(t, svc.SendWelcome(context.Background(), "new@nu.edu.pk", "<b>Bold</b>", "STUDENT"))

	assert.Eventually(t, func() bool { return len(sender.sent()) == 1 }, time.Second, 10*time.Millisecond)
	body := sender.sent()[0].HTML
	assert.Contains(t, body, "&lt;b&gt;Bold&lt;/b&gt;")
	assert.Contains(t, body, "STUDENT")
	assert.Contains(t, body, "http://localhost:3000/login")
}

func TestNotificationServiceRequiresStart(t *testing.T) {
	svc := NewNotificationService(&fakeSender{}, config.MailConfig{}, nil, zap.NewNop())
	assert.Error(t, svc.SendWelcome(context.Background(), "a@b.co", "A", "ADMIN"))
}
