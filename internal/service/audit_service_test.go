package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/internship-portal-api/internal/models"
)

type failingAuditRepo struct{}

func (failingAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	return errors.New("insert failed")
}

func TestAuditServiceRecord(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := NewAuditService(repo, zap.NewNop())

	svc.Record(context.Background(), AuditEntry{
		Action:     models.AuditActionComplete,
		Resource:   "internship",
		ResourceID: "I1",
		Payload:    map[string]int{"studentsUpdated": 2},
		IP:         "127.0.0.1",
	})

	require.Len(t, repo.logs, 1)
	log := repo.logs[0]
	assert.Nil(t, log.UserID)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "I1", *log.ResourceID)
	assert.JSONEq(t, `{"studentsUpdated":2}`, string(log.Payload))
}

func TestAuditServiceFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := NewAuditService(failingAuditRepo{}, zap.New(core))

	svc.Record(context.Background(), AuditEntry{Action: models.AuditActionLogin, Resource: "auth"})

	assert.Equal(t, 1, logs.FilterMessage("failed to record audit log").Len())

	var nilSvc *AuditService
	nilSvc.Record(context.Background(), AuditEntry{Action: models.AuditActionLogin})
}
