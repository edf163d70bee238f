package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/models"
)

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// AuditEntry describes one audited action.
type AuditEntry struct {
	UserID     string
	Action     string
	Resource   string
	ResourceID string
	Payload    interface{}
	IP         string
	UserAgent  string
}

// AuditService writes the audit trail. Failures are logged and never fail the
// audited request.
type AuditService struct {
	repo   auditRepository
	logger *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record persists an entry.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	if s == nil || s.repo == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     optionalString(entry.UserID),
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: optionalString(entry.ResourceID),
		IPAddress:  entry.IP,
		UserAgent:  entry.UserAgent,
	}
	if entry.Payload != nil {
		raw, err := json.Marshal(entry.Payload)
		if err != nil {
			s.logger.Warn("failed to encode audit payload", zap.String("action", entry.Action), zap.Error(err))
		} else {
			log.Payload = raw
		}
	}
	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err),
		)
	}
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
