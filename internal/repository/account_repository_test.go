package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-portal-api/internal/models"
)

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("admin@uni.edu").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "university_id", "active", "last_login", "created_at", "updated_at"}).
			AddRow("u-1", "admin@uni.edu", "hash", "Admin", "ADMIN", nil, true, nil, now, now))

	user, err := repo.FindByEmail(context.Background(), "admin@uni.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Nil(t, user.UniversityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRepositoryFlow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPasswordResetRepository(db)

	now := time.Now()
	mock.ExpectExec("INSERT INTO password_reset_tokens").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE token = $1 AND used_at IS NULL AND expires_at > $2")).
		WithArgs("tok", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "used_at", "created_at"}).
			AddRow("r-1", "u-1", "tok", now.Add(time.Hour), nil, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE password_reset_tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL")).
		WithArgs("r-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE password_reset_tokens").
		WithArgs("r-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Create(context.Background(), &models.PasswordResetToken{UserID: "u-1", Token: "tok", ExpiresAt: now.Add(time.Hour)}))
	token, err := repo.FindActive(context.Background(), "tok", now)
	require.NoError(t, err)
	require.NoError(t, repo.MarkUsed(context.Background(), token.ID, now))
	assert.ErrorIs(t, repo.MarkUsed(context.Background(), token.ID, now), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditLog{Action: models.AuditActionComplete, Resource: "internship", Payload: json.RawMessage(`{"students":2}`)}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskAndSubmissionRepositories(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	tasks := NewTaskRepository(db)
	submissions := NewSubmissionRepository(db)

	mock.ExpectExec("INSERT INTO tasks").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO submissions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM submissions WHERE 1=1 AND task_id = $1 ORDER BY submitted_at DESC")).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id", "student_name", "student_id", "file", "submitted_at"}).
			AddRow("sub-1", "t-1", "Ayesha Khan", nil, "submissions/t-1/report.pdf", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM submissions")).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	task := &models.Task{InternshipID: "i-1", Title: "Week 1 report", Deadline: time.Now().Add(24 * time.Hour), Marks: 10}
	require.NoError(t, tasks.Create(context.Background(), task))

	sub := &models.Submission{TaskID: task.ID, StudentName: "Ayesha Khan", File: "submissions/t-1/report.pdf"}
	require.NoError(t, submissions.Create(context.Background(), sub))
	assert.False(t, sub.SubmittedAt.IsZero())

	items, total, err := submissions.List(context.Background(), models.SubmissionFilter{TaskID: "t-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ayesha Khan", items[0].StudentName)
	assert.Nil(t, items[0].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
