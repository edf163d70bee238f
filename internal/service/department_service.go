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

type departmentRepository interface {
	List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, int, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByCNIC(ctx context.Context, cnic, excludeID string) (bool, error)
	Create(ctx context.Context, d *models.Department) error
	Update(ctx context.Context, d *models.Department) error
	Delete(ctx context.Context, id string) error
}

// DepartmentService orchestrates department operations. HOD email and CNIC
// are unique across departments.
type DepartmentService struct {
	repo         departmentRepository
	universities universityLookup
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewDepartmentService constructs a DepartmentService.
func NewDepartmentService(repo departmentRepository, universities universityLookup, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{repo: repo, universities: universities, validator: validate, logger: logger}
}

// List returns departments plus pagination data.
func (s *DepartmentService) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, *response.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list departments")
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a department by id.
func (s *DepartmentService) Get(ctx context.Context, id string) (*models.Department, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "department")
	}
	return item, nil
}

// Create registers a department under an existing university.
func (s *DepartmentService) Create(ctx context.Context, req dto.CreateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "department")
	}
	universityID := trimmed(req.UniversityID)
	if err := placement(ctx, s.universities, nil, universityID, ""); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	cnic := trimmed(req.CNIC)
	if err := s.ensureUnique(ctx, email, cnic, ""); err != nil {
		return nil, err
	}

	item := &models.Department{
		UniversityID:     universityID,
		Name:             trimmed(req.Name),
		Category:         trimmed(req.Category),
		HODName:          trimmed(req.HODName),
		Email:            email,
		CNIC:             cnic,
		CoordinatorName:  trimmed(req.CoordinatorName),
		CoordinatorEmail: normalizeEmail(req.CoordinatorEmail),
		FocalPersonName:  trimmed(req.FocalPersonName),
		FocalPersonEmail: normalizeEmail(req.FocalPersonEmail),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, writeError(err, "department", "create")
	}
	s.logger.Info("department created", zap.String("department_id", item.ID), zap.String("university_id", universityID))
	return item, nil
}

// Update applies a partial update.
func (s *DepartmentService) Update(ctx context.Context, id string, req dto.UpdateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "department")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.UniversityID != nil {
		universityID := trimmed(*req.UniversityID)
		if err := placement(ctx, s.universities, nil, universityID, ""); err != nil {
			return nil, err
		}
		item.UniversityID = universityID
	}
	email, cnic := "", ""
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
	}
	if req.CNIC != nil {
		cnic = trimmed(*req.CNIC)
	}
	if err := s.ensureUnique(ctx, email, cnic, id); err != nil {
		return nil, err
	}
	if email != "" {
		item.Email = email
	}
	if cnic != "" {
		item.CNIC = cnic
	}
	setString(&item.Name, req.Name)
	setString(&item.Category, req.Category)
	setString(&item.HODName, req.HODName)
	setString(&item.CoordinatorName, req.CoordinatorName)
	setString(&item.CoordinatorEmail, req.CoordinatorEmail)
	setString(&item.FocalPersonName, req.FocalPersonName)
	setString(&item.FocalPersonEmail, req.FocalPersonEmail)

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, writeError(err, "department", "update")
	}
	return item, nil
}

// Delete removes a department.
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "department", "delete")
	}
	return nil
}

func (s *DepartmentService) ensureUnique(ctx context.Context, email, cnic, excludeID string) error {
	if err := checkUnique(ctx, s.repo.ExistsByEmail, email, excludeID, "email"); err != nil {
		return err
	}
	return checkUnique(ctx, s.repo.ExistsByCNIC, cnic, excludeID, "cnic")
}
