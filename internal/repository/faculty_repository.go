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

	"github.com/noah-isme/internship-portal-api/internal/models"
)

const facultyColumns = `id, university_id, department_id, first_name, last_name, email, cnic, phone, designation, qualification, created_at, updated_at`

// FacultyRepository manages persistence for faculty members.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs a FacultyRepository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// List returns faculty matching the filter with the total count.
func (r *FacultyRepository) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error) {
	base := "FROM faculty WHERE 1=1"
	var args []interface{}
	if filter.UniversityID != "" {
		base += fmt.Sprintf(" AND university_id = $%d", len(args)+1)
		args = append(args, filter.UniversityID)
	}
	if filter.DepartmentID != "" {
		base += fmt.Sprintf(" AND department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	limit, offset := paginate(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY first_name ASC, last_name ASC LIMIT %d OFFSET %d", facultyColumns, base, limit, offset)
	var items []models.Faculty
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list faculty: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count faculty: %w", err)
	}
	return items, total, nil
}

// FindByID returns a faculty member by ID.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	var f models.Faculty
	if err := r.db.GetContext(ctx, &f, "SELECT "+facultyColumns+" FROM faculty WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find faculty: %w", err)
	}
	return &f, nil
}

// ExistsByEmail checks whether another faculty member uses the email.
func (r *FacultyRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return exists(ctx, r.db, "faculty", "email", email, excludeID)
}

// ExistsByCNIC checks whether another faculty member uses the CNIC.
func (r *FacultyRepository) ExistsByCNIC(ctx context.Context, cnic, excludeID string) (bool, error) {
	return exists(ctx, r.db, "faculty", "cnic", cnic, excludeID)
}

// Create inserts a new faculty member.
func (r *FacultyRepository) Create(ctx context.Context, f *models.Faculty) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	const query = `INSERT INTO faculty (id, university_id, department_id, first_name, last_name, email, cnic, phone, designation, qualification, created_at, updated_at)
        VALUES (:id, :university_id, :department_id, :first_name, :last_name, :email, :cnic, :phone, :designation, :qualification, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, f); err != nil {
		return mapWriteError("create faculty", err)
	}
	return nil
}

// Update overwrites the mutable fields of a faculty member.
func (r *FacultyRepository) Update(ctx context.Context, f *models.Faculty) error {
	f.UpdatedAt = time.Now().UTC()
	const query = `UPDATE faculty SET university_id = :university_id, department_id = :department_id, first_name = :first_name,
        last_name = :last_name, email = :email, cnic = :cnic, phone = :phone, designation = :designation,
        qualification = :qualification, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, f)
	if err != nil {
		return mapWriteError("update faculty", err)
	}
	return requireAffected(res, "update faculty")
}

// Delete removes a faculty member.
func (r *FacultyRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "faculty", id)
}
