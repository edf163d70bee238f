package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/internship-portal-api/internal/models"
	"github.com/noah-isme/internship-portal-api/internal/repository"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
	"github.com/noah-isme/internship-portal-api/pkg/response"
)

type universityLookup interface {
	FindByID(ctx context.Context, id string) (*models.University, error)
}

type departmentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

// loadError maps a repository read failure onto NotFound or Internal.
func loadError(err error, label string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, label+" not found")
	}
	return appErrors.Internal(err, "failed to load "+label)
}

// writeError maps a repository write failure. Unique violations that slipped
// past the pre-checks still surface as duplicates.
func writeError(err error, label, verb string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrDuplicate, label+" already exists")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, label+" not found")
	default:
		return appErrors.Internal(err, "failed to "+verb+" "+label)
	}
}

func duplicate(field string) error {
	return appErrors.Clone(appErrors.ErrDuplicate, field+" already used")
}

// checkUnique runs one ExistsBy lookup.
func checkUnique(ctx context.Context, exists func(context.Context, string, string) (bool, error), value, excludeID, field string) error {
	if value == "" {
		return nil
	}
	found, err := exists(ctx, value, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check "+field+" uniqueness")
	}
	if found {
		return duplicate(field)
	}
	return nil
}

// placement resolves the university and department a record points at and
// checks that the department belongs to the university.
func placement(ctx context.Context, universities universityLookup, departments departmentLookup, universityID, departmentID string) error {
	if _, err := universities.FindByID(ctx, universityID); err != nil {
		return loadError(err, "university")
	}
	if departments == nil || departmentID == "" {
		return nil
	}
	department, err := departments.FindByID(ctx, departmentID)
	if err != nil {
		return loadError(err, "department")
	}
	if department.UniversityID != universityID {
		return appErrors.Clone(appErrors.ErrValidation, "departmentId does not belong to universityId")
	}
	return nil
}

func pagination(page, size, total int) *response.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &response.Pagination{Page: page, PageSize: size, TotalCount: total}
}
