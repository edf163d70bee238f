package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/internship-portal-api/internal/models"
)

const internshipColumns = `id, university_id, title, host_institution, category, compensation_type, stipend, location, description,
        start_date, end_date, is_approved, is_complete, number_of_students, assigned_faculty, assigned_students, assigned_department,
        created_at, updated_at`

// Guard adds optional preconditions to the assignment statements.
type Guard struct {
	// RequireOpen rejects the write when the internship is complete.
	RequireOpen bool
	// EnforceCapacity rejects a student append once number_of_students is reached.
	EnforceCapacity bool
}

// InternshipRepository manages persistence for internships. Reference-set
// mutations are single statements so each is atomic per row.
type InternshipRepository struct {
	db *sqlx.DB
}

// NewInternshipRepository constructs an InternshipRepository.
func NewInternshipRepository(db *sqlx.DB) *InternshipRepository {
	return &InternshipRepository{db: db}
}

// List returns internships matching the filter with the total count.
func (r *InternshipRepository) List(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.UniversityID != "" {
		args = append(args, filter.UniversityID)
		conditions = append(conditions, fmt.Sprintf("university_id = $%d", len(args)))
	}
	if filter.IsApproved != nil {
		args = append(args, *filter.IsApproved)
		conditions = append(conditions, fmt.Sprintf("is_approved = $%d", len(args)))
	}
	if filter.IsComplete != nil {
		args = append(args, *filter.IsComplete)
		conditions = append(conditions, fmt.Sprintf("is_complete = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(host_institution) LIKE $%d)", len(args), len(args)))
	}
	base := "FROM internships WHERE " + strings.Join(conditions, " AND ")
	limit, offset := paginate(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY start_date DESC, title ASC LIMIT %d OFFSET %d", internshipColumns, base, limit, offset)
	var items []models.Internship
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list internships: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count internships: %w", err)
	}
	return items, total, nil
}

// ListByUniversity returns every internship of a university.
func (r *InternshipRepository) ListByUniversity(ctx context.Context, universityID string) ([]models.Internship, error) {
	query := "SELECT " + internshipColumns + " FROM internships WHERE university_id = $1"
	var items []models.Internship
	if err := r.db.SelectContext(ctx, &items, query, universityID); err != nil {
		return nil, fmt.Errorf("list internships by university: %w", err)
	}
	return items, nil
}

// FindByID fetches an internship by ID.
func (r *InternshipRepository) FindByID(ctx context.Context, id string) (*models.Internship, error) {
	var item models.Internship
	if err := r.db.GetContext(ctx, &item, "SELECT "+internshipColumns+" FROM internships WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find internship: %w", err)
	}
	return &item, nil
}

// Create inserts a new internship. Flags start false and student and faculty sets start empty.
func (r *InternshipRepository) Create(ctx context.Context, item *models.Internship) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.IsApproved = false
	item.IsComplete = false
	item.AssignedStudents = pq.StringArray{}
	item.AssignedFaculty = pq.StringArray{}
	item.Normalize()
	const query = `INSERT INTO internships (id, university_id, title, host_institution, category, compensation_type, stipend, location, description,
        start_date, end_date, is_approved, is_complete, number_of_students, assigned_faculty, assigned_students, assigned_department, created_at, updated_at)
        VALUES (:id, :university_id, :title, :host_institution, :category, :compensation_type, :stipend, :location, :description,
        :start_date, :end_date, :is_approved, :is_complete, :number_of_students, :assigned_faculty, :assigned_students, :assigned_department, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return mapWriteError("create internship", err)
	}
	return nil
}

// Update overwrites descriptive fields. Flags and reference sets other than
// assigned_department are left untouched.
func (r *InternshipRepository) Update(ctx context.Context, item *models.Internship) error {
	item.UpdatedAt = time.Now().UTC()
	item.Normalize()
	const query = `UPDATE internships SET title = :title, host_institution = :host_institution, category = :category,
        compensation_type = :compensation_type, stipend = :stipend, location = :location, description = :description,
        start_date = :start_date, end_date = :end_date, number_of_students = :number_of_students,
        assigned_department = :assigned_department, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return mapWriteError("update internship", err)
	}
	return requireAffected(res, "update internship")
}

// Delete removes an internship.
func (r *InternshipRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "internships", id)
}

// AppendStudent adds the student to assigned_students unless already present.
// Returns sql.ErrNoRows when nothing was written: the internship is missing,
// already holds the student, or a guard rejected the write.
func (r *InternshipRepository) AppendStudent(ctx context.Context, id, studentID string, guard Guard) (*models.Internship, error) {
	query := `UPDATE internships SET assigned_students = array_append(assigned_students, $2), updated_at = $3
        WHERE id = $1 AND NOT ($2 = ANY(assigned_students))`
	if guard.RequireOpen {
		query += " AND is_complete = false"
	}
	if guard.EnforceCapacity {
		query += " AND cardinality(assigned_students) < number_of_students"
	}
	return r.returning(ctx, "append student", query, id, studentID, time.Now().UTC())
}

// RemoveStudent drops the student from assigned_students. Returns sql.ErrNoRows
// when the student was not assigned or the row is missing.
func (r *InternshipRepository) RemoveStudent(ctx context.Context, id, studentID string, guard Guard) (*models.Internship, error) {
	query := `UPDATE internships SET assigned_students = array_remove(assigned_students, $2), updated_at = $3
        WHERE id = $1 AND $2 = ANY(assigned_students)`
	if guard.RequireOpen {
		query += " AND is_complete = false"
	}
	return r.returning(ctx, "remove student", query, id, studentID, time.Now().UTC())
}

// AppendFaculty adds the faculty member to assigned_faculty unless already present.
func (r *InternshipRepository) AppendFaculty(ctx context.Context, id, facultyID string, guard Guard) (*models.Internship, error) {
	query := `UPDATE internships SET assigned_faculty = array_append(assigned_faculty, $2), updated_at = $3
        WHERE id = $1 AND NOT ($2 = ANY(assigned_faculty))`
	if guard.RequireOpen {
		query += " AND is_complete = false"
	}
	return r.returning(ctx, "append faculty", query, id, facultyID, time.Now().UTC())
}

// MarkComplete sets is_complete and returns the row as stored after the update,
// so callers propagate from the post-completion assigned set.
func (r *InternshipRepository) MarkComplete(ctx context.Context, id string) (*models.Internship, error) {
	const query = `UPDATE internships SET is_complete = true, updated_at = $2 WHERE id = $1`
	return r.returning(ctx, "mark internship complete", query, id, time.Now().UTC())
}

// SetApproval sets is_approved.
func (r *InternshipRepository) SetApproval(ctx context.Context, id string, approved bool, guard Guard) (*models.Internship, error) {
	query := `UPDATE internships SET is_approved = $2, updated_at = $3 WHERE id = $1`
	if guard.RequireOpen {
		query += " AND is_complete = false"
	}
	return r.returning(ctx, "set internship approval", query, id, approved, time.Now().UTC())
}

// MarkStudentsCompleted sets did_internship for the given student IDs and
// returns how many rows changed. Re-running it is harmless.
func (r *InternshipRepository) MarkStudentsCompleted(ctx context.Context, studentIDs []string) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	const query = `UPDATE students SET did_internship = true, updated_at = $2 WHERE id = ANY($1) AND did_internship = false`
	res, err := r.db.ExecContext(ctx, query, pq.Array(studentIDs), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("mark students completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark students completed rows affected: %w", err)
	}
	return n, nil
}

const (
	flagCompletedQuery = `UPDATE students SET did_internship = true, updated_at = $1
        WHERE did_internship = false AND id IN (SELECT unnest(assigned_students) FROM internships WHERE is_complete = true)`
	clearStaleQuery = `UPDATE students SET did_internship = false, updated_at = $1
        WHERE did_internship = true
          AND NOT EXISTS (SELECT 1 FROM internships WHERE is_complete = true AND students.id = ANY(assigned_students))`
)

// ClearStaleCompletions resets did_internship for the given students when they
// no longer appear in any completed internship. Returns the number of rows changed.
func (r *InternshipRepository) ClearStaleCompletions(ctx context.Context, studentIDs []string) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, clearStaleQuery+" AND id = ANY($2)", time.Now().UTC(), pq.Array(studentIDs))
	if err != nil {
		return 0, fmt.Errorf("clear stale completions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear stale completions rows affected: %w", err)
	}
	return n, nil
}

// ReconcileCompletedStudents makes did_internship equal to membership in a
// completed internship's assigned set, in both directions, and returns the
// number of repaired rows.
func (r *InternshipRepository) ReconcileCompletedStudents(ctx context.Context) (repaired int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reconcile completed students: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, query := range []string{flagCompletedQuery, clearStaleQuery} {
		res, execErr := tx.ExecContext(ctx, query, now)
		if execErr != nil {
			err = fmt.Errorf("reconcile completed students: %w", execErr)
			return 0, err
		}
		n, rowsErr := res.RowsAffected()
		if rowsErr != nil {
			err = fmt.Errorf("reconcile completed students rows affected: %w", rowsErr)
			return 0, err
		}
		repaired += n
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reconcile completed students: %w", err)
	}
	return repaired, nil
}

func (r *InternshipRepository) returning(ctx context.Context, op, query string, args ...interface{}) (*models.Internship, error) {
	var item models.Internship
	if err := r.db.GetContext(ctx, &item, query+" RETURNING "+internshipColumns, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}
