package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/internship-portal-api/internal/models"
)

// PasswordResetRepository stores single-use password reset tokens.
type PasswordResetRepository struct {
	db *sqlx.DB
}

// NewPasswordResetRepository constructs a PasswordResetRepository.
func NewPasswordResetRepository(db *sqlx.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Create persists a new reset token.
func (r *PasswordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	token.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO password_reset_tokens (id, user_id, token, expires_at, created_at)
        VALUES (:id, :user_id, :token, :expires_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return mapWriteError("create reset token", err)
	}
	return nil
}

// FindActive returns an unused, unexpired token.
func (r *PasswordResetRepository) FindActive(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, error) {
	const query = `SELECT id, user_id, token, expires_at, used_at, created_at FROM password_reset_tokens
        WHERE token = $1 AND used_at IS NULL AND expires_at > $2`
	var t models.PasswordResetToken
	if err := r.db.GetContext(ctx, &t, query, token, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return &t, nil
}

// MarkUsed consumes a token. Returns sql.ErrNoRows if it was already used.
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	const query = `UPDATE password_reset_tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, usedAt)
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}
	return requireAffected(res, "mark reset token used")
}
