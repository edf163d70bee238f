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

const studentColumns = `id, university_id, department_id, first_name, last_name, email, registration_number, batch, section, phone,
        did_internship, cv, gpa, created_at, updated_at`

// StudentRepository manages persistence for student records. It never writes
// did_internship; that flag is owned by InternshipRepository's propagation statements.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func studentConditions(universityID, departmentID string, didInternship *bool, search string) (string, []interface{}) {
	conditions := []string{"1=1"}
	var args []interface{}
	if universityID != "" {
		args = append(args, universityID)
		conditions = append(conditions, fmt.Sprintf("university_id = $%d", len(args)))
	}
	if departmentID != "" {
		args = append(args, departmentID)
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if didInternship != nil {
		args = append(args, *didInternship)
		conditions = append(conditions, fmt.Sprintf("did_internship = $%d", len(args)))
	}
	if search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(registration_number) LIKE $%d)", n, n, n, n))
	}
	return "FROM students WHERE " + strings.Join(conditions, " AND "), args
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base, args := studentConditions(filter.UniversityID, filter.DepartmentID, filter.DidInternship, filter.Search)
	limit, offset := paginate(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY registration_number ASC LIMIT %d OFFSET %d", studentColumns, base, limit, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListByUniversity returns every student of a university, optionally narrowed to one department.
func (r *StudentRepository) ListByUniversity(ctx context.Context, universityID, departmentID string) ([]models.Student, error) {
	base, args := studentConditions(universityID, departmentID, nil, "")
	query := fmt.Sprintf("SELECT %s %s ORDER BY registration_number ASC", studentColumns, base)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students by university: %w", err)
	}
	return students, nil
}

// ListByIDs returns the students whose IDs are in the set. Unknown IDs are skipped.
func (r *StudentRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	if len(ids) == 0 {
		return []models.Student{}, nil
	}
	query := "SELECT " + studentColumns + " FROM students WHERE id = ANY($1) ORDER BY registration_number ASC"
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list students by ids: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var s models.Student
	if err := r.db.GetContext(ctx, &s, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &s, nil
}

// FindByEmail fetches a student by email address.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	var s models.Student
	if err := r.db.GetContext(ctx, &s, "SELECT "+studentColumns+" FROM students WHERE email = $1", email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return &s, nil
}

// ExistsByEmail checks if a student with the email exists, optionally excluding an ID.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return exists(ctx, r.db, "students", "email", email, excludeID)
}

// ExistsByRegistrationNumber checks if a student with the registration number exists.
func (r *StudentRepository) ExistsByRegistrationNumber(ctx context.Context, regNo, excludeID string) (bool, error) {
	return exists(ctx, r.db, "students", "registration_number", regNo, excludeID)
}

// Create inserts a new student. did_internship always starts at its column default.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	student.DidInternship = false
	const query = `INSERT INTO students (id, university_id, department_id, first_name, last_name, email, registration_number, batch, section, phone, cv, gpa, created_at, updated_at)
        VALUES (:id, :university_id, :department_id, :first_name, :last_name, :email, :registration_number, :batch, :section, :phone, :cv, :gpa, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return mapWriteError("create student", err)
	}
	return nil
}

// Update modifies an existing student's profile fields.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET university_id = :university_id, department_id = :department_id, first_name = :first_name,
        last_name = :last_name, email = :email, registration_number = :registration_number, batch = :batch, section = :section,
        phone = :phone, gpa = :gpa, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return mapWriteError("update student", err)
	}
	return requireAffected(res, "update student")
}

// UpdateCV stores the file reference of an uploaded CV.
func (r *StudentRepository) UpdateCV(ctx context.Context, id, cv string) error {
	const query = `UPDATE students SET cv = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, cv, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update student cv: %w", err)
	}
	return requireAffected(res, "update student cv")
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "students", id)
}
