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

const submissionColumns = "id, task_id, student_name, student_id, file, submitted_at"

// SubmissionRepository manages persistence for task submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// List returns submissions, newest first.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	base := "FROM submissions WHERE 1=1"
	var args []interface{}
	if filter.TaskID != "" {
		args = append(args, filter.TaskID)
		base += fmt.Sprintf(" AND task_id = $%d", len(args))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		base += fmt.Sprintf(" AND student_id = $%d", len(args))
	}
	limit, offset := paginate(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY submitted_at DESC LIMIT %d OFFSET %d", submissionColumns, base, limit, offset)
	var items []models.Submission
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}
	return items, total, nil
}

// FindByID fetches a submission by ID.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	var s models.Submission
	if err := r.db.GetContext(ctx, &s, "SELECT "+submissionColumns+" FROM submissions WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &s, nil
}

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO submissions (id, task_id, student_name, student_id, file, submitted_at)
        VALUES (:id, :task_id, :student_name, :student_id, :file, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return mapWriteError("create submission", err)
	}
	return nil
}

// Update overwrites the submitter fields and file reference.
func (r *SubmissionRepository) Update(ctx context.Context, s *models.Submission) error {
	const query = `UPDATE submissions SET student_name = :student_name, student_id = :student_id, file = :file WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return mapWriteError("update submission", err)
	}
	return requireAffected(res, "update submission")
}

// Delete removes a submission.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "submissions", id)
}
