package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
	"github.com/noah-isme/internship-portal-api/pkg/response"
)

type universityRepository interface {
	List(ctx context.Context, filter models.UniversityFilter) ([]models.University, int, error)
	FindByID(ctx context.Context, id string) (*models.University, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, u *models.University) error
	Update(ctx context.Context, u *models.University) error
	Delete(ctx context.Context, id string) error
}

// UniversityService orchestrates university operations.
type UniversityService struct {
	repo      universityRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUniversityService constructs a UniversityService.
func NewUniversityService(repo universityRepository, validate *validator.Validate, logger *zap.Logger) *UniversityService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UniversityService{repo: repo, validator: validate, logger: logger}
}

// List returns universities plus pagination data.
func (s *UniversityService) List(ctx context.Context, filter models.UniversityFilter) ([]models.University, *response.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list universities")
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a university by id.
func (s *UniversityService) Get(ctx context.Context, id string) (*models.University, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "university")
	}
	return item, nil
}

// Create registers a university.
func (s *UniversityService) Create(ctx context.Context, req dto.CreateUniversityRequest) (*models.University, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "university")
	}
	email := normalizeEmail(req.Email)
	if err := checkUnique(ctx, s.repo.ExistsByEmail, email, "", "email"); err != nil {
		return nil, err
	}

	item := &models.University{
		Name:     trimmed(req.Name),
		Location: trimmed(req.Location),
		Address:  trimmed(req.Address),
		Email:    email,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, writeError(err, "university", "create")
	}
	s.logger.Info("university created", zap.String("university_id", item.ID))
	return item, nil
}

// Update applies a partial update.
func (s *UniversityService) Update(ctx context.Context, id string, req dto.UpdateUniversityRequest) (*models.University, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "university")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := checkUnique(ctx, s.repo.ExistsByEmail, email, id, "email"); err != nil {
			return nil, err
		}
		item.Email = email
	}
	setString(&item.Name, req.Name)
	setString(&item.Location, req.Location)
	setString(&item.Address, req.Address)

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, writeError(err, "university", "update")
	}
	return item, nil
}

// Delete removes a university. Records pointing at it are left in place.
func (s *UniversityService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "university", "delete")
	}
	return nil
}
