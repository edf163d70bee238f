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

type facultyRepository interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error)
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByCNIC(ctx context.Context, cnic, excludeID string) (bool, error)
	Create(ctx context.Context, f *models.Faculty) error
	Update(ctx context.Context, f *models.Faculty) error
	Delete(ctx context.Context, id string) error
}

// FacultyService orchestrates faculty operations.
type FacultyService struct {
	repo         facultyRepository
	universities universityLookup
	departments  departmentLookup
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewFacultyService constructs a FacultyService.
func NewFacultyService(repo facultyRepository, universities universityLookup, departments departmentLookup, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, universities: universities, departments: departments, validator: validate, logger: logger}
}

// List returns faculty plus pagination data.
func (s *FacultyService) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, *response.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list faculty")
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a faculty member by id.
func (s *FacultyService) Get(ctx context.Context, id string) (*models.Faculty, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "faculty")
	}
	return item, nil
}

// Create registers a faculty member.
func (s *FacultyService) Create(ctx context.Context, req dto.CreateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "faculty")
	}
	universityID, departmentID := trimmed(req.UniversityID), trimmed(req.DepartmentID)
	if err := placement(ctx, s.universities, s.departments, universityID, departmentID); err != nil {
		return nil, err
	}
	email, cnic := normalizeEmail(req.Email), trimmed(req.CNIC)
	if err := s.ensureUnique(ctx, email, cnic, ""); err != nil {
		return nil, err
	}

	item := &models.Faculty{
		UniversityID:  universityID,
		DepartmentID:  departmentID,
		FirstName:     trimmed(req.FirstName),
		LastName:      trimmed(req.LastName),
		Email:         email,
		CNIC:          cnic,
		Phone:         trimmed(req.Phone),
		Designation:   trimmed(req.Designation),
		Qualification: qualification(req.Qualification),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, writeError(err, "faculty", "create")
	}
	return item, nil
}

// Update applies a partial update.
func (s *FacultyService) Update(ctx context.Context, id string, req dto.UpdateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "faculty")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.UniversityID != nil || req.DepartmentID != nil {
		setString(&item.UniversityID, req.UniversityID)
		setString(&item.DepartmentID, req.DepartmentID)
		if err := placement(ctx, s.universities, s.departments, item.UniversityID, item.DepartmentID); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := checkUnique(ctx, s.repo.ExistsByEmail, email, id, "email"); err != nil {
			return nil, err
		}
		item.Email = email
	}
	if req.CNIC != nil {
		cnic := trimmed(*req.CNIC)
		if err := checkUnique(ctx, s.repo.ExistsByCNIC, cnic, id, "cnic"); err != nil {
			return nil, err
		}
		item.CNIC = cnic
	}
	setString(&item.FirstName, req.FirstName)
	setString(&item.LastName, req.LastName)
	setString(&item.Phone, req.Phone)
	setString(&item.Designation, req.Designation)
	if req.Qualification != nil {
		item.Qualification = qualification(*req.Qualification)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, writeError(err, "faculty", "update")
	}
	return item, nil
}

// Delete removes a faculty member.
func (s *FacultyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "faculty", "delete")
	}
	return nil
}

func (s *FacultyService) ensureUnique(ctx context.Context, email, cnic, excludeID string) error {
	if err := checkUnique(ctx, s.repo.ExistsByEmail, email, excludeID, "email"); err != nil {
		return err
	}
	return checkUnique(ctx, s.repo.ExistsByCNIC, cnic, excludeID, "cnic")
}

func qualification(p dto.QualificationPayload) models.Qualification {
	return models.Qualification{
		Degree:         trimmed(p.Degree),
		Institute:      trimmed(p.Institute),
		PassingYear:    p.PassingYear,
		Specialization: trimmed(p.Specialization),
	}
}
