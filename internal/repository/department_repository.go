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

const departmentColumns = `id, university_id, name, category, hod_name, email, cnic, coordinator_name, coordinator_email,
        focal_person_name, focal_person_email, created_at, updated_at`

// DepartmentRepository manages persistence for departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns departments matching the filter with the total count.
func (r *DepartmentRepository) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, int, error) {
	base := "FROM departments WHERE 1=1"
	var args []interface{}
	if filter.UniversityID != "" {
		base += fmt.Sprintf(" AND university_id = $%d", len(args)+1)
		args = append(args, filter.UniversityID)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	limit, offset := paginate(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", departmentColumns, base, limit, offset)
	var items []models.Department
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list departments: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count departments: %w", err)
	}
	return items, total, nil
}

// FindByID returns a department by ID.
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	var d models.Department
	if err := r.db.GetContext(ctx, &d, "SELECT "+departmentColumns+" FROM departments WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find department: %w", err)
	}
	return &d, nil
}

// ExistsByEmail checks whether another department already uses the HOD email.
func (r *DepartmentRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return exists(ctx, r.db, "departments", "email", email, excludeID)
}

// ExistsByCNIC checks whether another department already uses the HOD CNIC.
func (r *DepartmentRepository) ExistsByCNIC(ctx context.Context, cnic, excludeID string) (bool, error) {
	return exists(ctx, r.db, "departments", "cnic", cnic, excludeID)
}

// Create inserts a new department.
func (r *DepartmentRepository) Create(ctx context.Context, d *models.Department) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	const query = `INSERT INTO departments (id, university_id, name, category, hod_name, email, cnic, coordinator_name, coordinator_email,
        focal_person_name, focal_person_email, created_at, updated_at)
        VALUES (:id, :university_id, :name, :category, :hod_name, :email, :cnic, :coordinator_name, :coordinator_email,
        :focal_person_name, :focal_person_email, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, d); err != nil {
		return mapWriteError("create department", err)
	}
	return nil
}

// Update overwrites the mutable fields of a department.
func (r *DepartmentRepository) Update(ctx context.Context, d *models.Department) error {
	d.UpdatedAt = time.Now().UTC()
	const query = `UPDATE departments SET university_id = :university_id, name = :name, category = :category, hod_name = :hod_name,
        email = :email, cnic = :cnic, coordinator_name = :coordinator_name, coordinator_email = :coordinator_email,
        focal_person_name = :focal_person_name, focal_person_email = :focal_person_email, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, d)
	if err != nil {
		return mapWriteError("update department", err)
	}
	return requireAffected(res, "update department")
}

// Delete removes a department.
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "departments", id)
}
