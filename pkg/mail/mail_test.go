package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/internship-portal-api/pkg/config"
)

func TestComposeOrdersHeaders(t *testing.T) {
	raw := string(Compose("noreply@portal.test", Message{To: "a@b.c", Subject: "Hi", HTML: "<p>x</p>"}))

	head, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found)
	assert.Equal(t, "<p>x</p>", body)
	lines := strings.Split(head, "\r\n")
	assert.Equal(t, "Content-Type: text/html; charset=UTF-8", lines[0])
	assert.Contains(t, lines, "To: a@b.c")
	assert.Contains(t, lines, "Subject: Hi")
}

func TestNewFallsBackToLogSender(t *testing.T) {
	sender := New(config.MailConfig{SMTPHost: "smtp.test"}, nil)
	_, ok := sender.(*LogSender)
	assert.True(t, ok)

	sender = New(config.MailConfig{SMTPHost: "smtp.test", SMTPUsername: "u", SMTPPassword: "p"}, nil)
	_, ok = sender.(*SMTPSender)
	assert.True(t, ok)
}

func TestLogSenderRecordsMessage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	require.NoError(t, sender.Send(context.Background(), Message{To: "a@b.c", Subject: "Reset"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "a@b.c", logs.All()[0].ContextMap()["to"])
}
