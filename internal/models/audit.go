package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded for mutating internship and account operations.
const (
	AuditActionRegister        = "REGISTER"
	AuditActionLogin           = "LOGIN"
	AuditActionPasswordReset   = "PASSWORD_RESET"
	AuditActionAssignStudent   = "ASSIGN_STUDENT"
	AuditActionUnassignStudent = "UNASSIGN_STUDENT"
	AuditActionAssignFaculty   = "ASSIGN_FACULTY"
	AuditActionApprove         = "APPROVE"
	AuditActionComplete        = "COMPLETE"
	AuditActionReconcile       = "RECONCILE"
	AuditActionDelete          = "DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	UserID     *string         `db:"user_id" json:"user_id,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resource_id,omitempty"`
	Payload    json.RawMessage `db:"payload" json:"payload,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address"`
	UserAgent  string          `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
