package service

import (
	"context"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
	"github.com/noah-isme/internship-portal-api/pkg/response"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByRegistrationNumber(ctx context.Context, regNo, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	UpdateCV(ctx context.Context, id, cv string) error
	Delete(ctx context.Context, id string) error
}

// StudentService orchestrates student records. It never writes didInternship.
type StudentService struct {
	repo         studentRepository
	universities universityLookup
	departments  departmentLookup
	files        *FileService
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewStudentService constructs a StudentService. files and cache may be nil.
func NewStudentService(
	repo studentRepository,
	universities universityLookup,
	departments departmentLookup,
	files *FileService,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:         repo,
		universities: universities,
		departments:  departments,
		files:        files,
		cache:        cache,
		validator:    validate,
		logger:       logger,
	}
}

// List returns students plus pagination data.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *response.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "student")
	}
	return item, nil
}

// GetByEmail returns a student by email.
func (s *StudentService) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	item, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, loadError(err, "student")
	}
	return item, nil
}

// Lookup resolves an identifier that is either a student id or an email.
func (s *StudentService) Lookup(ctx context.Context, idOrEmail string) (*models.Student, error) {
	if strings.Contains(idOrEmail, "@") {
		return s.GetByEmail(ctx, idOrEmail)
	}
	return s.Get(ctx, idOrEmail)
}

// Create registers a student. didInternship always starts false.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "student")
	}
	universityID, departmentID := trimmed(req.UniversityID), trimmed(req.DepartmentID)
	if err := placement(ctx, s.universities, s.departments, universityID, departmentID); err != nil {
		return nil, err
	}
	email, regNo := normalizeEmail(req.Email), trimmed(req.RegistrationNumber)
	if err := s.ensureUnique(ctx, email, regNo, ""); err != nil {
		return nil, err
	}

	item := &models.Student{
		UniversityID:       universityID,
		DepartmentID:       departmentID,
		FirstName:          trimmed(req.FirstName),
		LastName:           trimmed(req.LastName),
		Email:              email,
		RegistrationNumber: regNo,
		Batch:              trimmed(req.Batch),
		Section:            trimmed(req.Section),
		Phone:              trimmed(req.Phone),
		GPA:                req.GPA,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, writeError(err, "student", "create")
	}
	s.invalidate(ctx, universityID)
	return item, nil
}

// Update applies a partial update. didInternship is not part of the payload.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "student")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previousUniversity := item.UniversityID

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
	if req.RegistrationNumber != nil {
		regNo := trimmed(*req.RegistrationNumber)
		if err := checkUnique(ctx, s.repo.ExistsByRegistrationNumber, regNo, id, "registrationNumber"); err != nil {
			return nil, err
		}
		item.RegistrationNumber = regNo
	}
	setString(&item.FirstName, req.FirstName)
	setString(&item.LastName, req.LastName)
	setString(&item.Batch, req.Batch)
	setString(&item.Section, req.Section)
	setString(&item.Phone, req.Phone)
	if req.GPA != nil {
		item.GPA = req.GPA
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, writeError(err, "student", "update")
	}
	s.invalidate(ctx, item.UniversityID)
	if previousUniversity != item.UniversityID {
		s.invalidate(ctx, previousUniversity)
	}
	return item, nil
}

// Delete removes a student. Internship sets that reference it are left as is.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "student", "delete")
	}
	if item.CV != nil && s.files != nil {
		s.files.Remove(ctx, *item.CV)
	}
	s.invalidate(ctx, item.UniversityID)
	return nil
}

// UploadCV stores a CV file and points the student at it.
func (s *StudentService) UploadCV(ctx context.Context, id, filename, contentType string, size int64, r io.Reader) (*dto.UploadedFile, error) {
	if s.files == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "file storage is not configured")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	uploaded, err := s.files.Upload(ctx, FileKindCV, id, filename, contentType, size, r)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCV(ctx, id, uploaded.Key); err != nil {
		s.files.Remove(ctx, uploaded.Key)
		return nil, writeError(err, "student", "update")
	}
	if item.CV != nil && *item.CV != uploaded.Key {
		s.files.Remove(ctx, *item.CV)
	}
	return uploaded, nil
}

func (s *StudentService) ensureUnique(ctx context.Context, email, regNo, excludeID string) error {
	if err := checkUnique(ctx, s.repo.ExistsByEmail, email, excludeID, "email"); err != nil {
		return err
	}
	return checkUnique(ctx, s.repo.ExistsByRegistrationNumber, regNo, excludeID, "registrationNumber")
}

func (s *StudentService) invalidate(ctx context.Context, universityID string) {
	_ = s.cache.InvalidateUnassigned(ctx, universityID)
}
