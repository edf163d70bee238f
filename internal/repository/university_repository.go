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

const universityColumns = "id, name, location, address, email, created_at, updated_at"

// UniversityRepository manages persistence for universities.
type UniversityRepository struct {
	db *sqlx.DB
}

// NewUniversityRepository constructs a UniversityRepository.
func NewUniversityRepository(db *sqlx.DB) *UniversityRepository {
	return &UniversityRepository{db: db}
}

// List returns universities matching the filter with the total count.
func (r *UniversityRepository) List(ctx context.Context, filter models.UniversityFilter) ([]models.University, int, error) {
	base := "FROM universities WHERE 1=1"
	var args []interface{}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	limit, offset := paginate(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", universityColumns, base, limit, offset)
	var items []models.University
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list universities: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count universities: %w", err)
	}
	return items, total, nil
}

// FindByID returns a university by ID.
func (r *UniversityRepository) FindByID(ctx context.Context, id string) (*models.University, error) {
	var u models.University
	query := "SELECT " + universityColumns + " FROM universities WHERE id = $1"
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find university: %w", err)
	}
	return &u, nil
}

// ExistsByEmail checks whether another university already uses the email.
func (r *UniversityRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return exists(ctx, r.db, "universities", "email", email, excludeID)
}

// Create inserts a new university.
func (r *UniversityRepository) Create(ctx context.Context, u *models.University) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	const query = `INSERT INTO universities (id, name, location, address, email, created_at, updated_at)
        VALUES (:id, :name, :location, :address, :email, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		return mapWriteError("create university", err)
	}
	return nil
}

// Update overwrites the mutable fields of a university.
func (r *UniversityRepository) Update(ctx context.Context, u *models.University) error {
	u.UpdatedAt = time.Now().UTC()
	const query = `UPDATE universities SET name = :name, location = :location, address = :address, email = :email, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		return mapWriteError("update university", err)
	}
	return requireAffected(res, "update university")
}

// Delete removes a university. Dependent records are not cascaded.
func (r *UniversityRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "universities", id)
}
