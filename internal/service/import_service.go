package service

import (
	"context"
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	"github.com/noah-isme/internship-portal-api/internal/repository"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
	"github.com/noah-isme/internship-portal-api/pkg/spreadsheet"
)

type importStudentRepository interface {
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByRegistrationNumber(ctx context.Context, regNo, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

// ImportService bulk creates students from an uploaded workbook.
type ImportService struct {
	students     importStudentRepository
	universities universityLookup
	departments  departmentLookup
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(
	students importStudentRepository,
	universities universityLookup,
	departments departmentLookup,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *ImportService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		students:     students,
		universities: universities,
		departments:  departments,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// ImportStudents creates one student per sheet row. Rows whose email or
// registration number already exists, in the store or earlier in the sheet,
// are skipped and reported.
func (s *ImportService) ImportStudents(ctx context.Context, defaults dto.ImportStudentsDefaults, r io.Reader) (*dto.ImportStudentsResponse, error) {
	if err := s.validator.Struct(defaults); err != nil {
		return nil, validationError(err, "students")
	}
	universityID, departmentID := trimmed(defaults.UniversityID), trimmed(defaults.DepartmentID)
	if err := placement(ctx, s.universities, s.departments, universityID, departmentID); err != nil {
		return nil, err
	}

	rows, err := spreadsheet.ParseStudents(r)
	if err != nil {
		return nil, appErrors.Validation(err, "invalid student workbook: "+err.Error())
	}

	result := &dto.ImportStudentsResponse{Total: len(rows), Skipped: []dto.ImportRowError{}}
	seenEmail := make(map[string]int, len(rows))
	seenRegNo := make(map[string]int, len(rows))
	skip := func(row spreadsheet.StudentRow, reason string) {
		result.Skipped = append(result.Skipped, dto.ImportRowError{Row: row.Row, Email: row.Email, Reason: reason})
	}

	for _, row := range rows {
		if row.FirstName == "" || row.RegistrationNumber == "" {
			skip(row, "first name and registration number are required")
			continue
		}
		if err := s.validator.Var(row.Email, "required,email"); err != nil {
			skip(row, "invalid email")
			continue
		}
		if row.GPA != nil && (*row.GPA < 0 || *row.GPA > 4) {
			skip(row, "gpa must be between 0 and 4")
			continue
		}
		if _, dup := seenEmail[row.Email]; dup {
			skip(row, "duplicate email in sheet")
			continue
		}
		if _, dup := seenRegNo[row.RegistrationNumber]; dup {
			skip(row, "duplicate registration number in sheet")
			continue
		}
		seenEmail[row.Email] = row.Row
		seenRegNo[row.RegistrationNumber] = row.Row

		if found, err := s.students.ExistsByEmail(ctx, row.Email, ""); err != nil {
			return nil, appErrors.Internal(err, "failed to check email uniqueness")
		} else if found {
			skip(row, "email already used")
			continue
		}
		if found, err := s.students.ExistsByRegistrationNumber(ctx, row.RegistrationNumber, ""); err != nil {
			return nil, appErrors.Internal(err, "failed to check registration number uniqueness")
		} else if found {
			skip(row, "registrationNumber already used")
			continue
		}

		student := &models.Student{
			UniversityID:       universityID,
			DepartmentID:       departmentID,
			FirstName:          row.FirstName,
			LastName:           row.LastName,
			Email:              row.Email,
			RegistrationNumber: row.RegistrationNumber,
			Phone:              row.Phone,
			Batch:              firstNonEmpty(row.Batch, trimmed(defaults.Batch)),
			Section:            firstNonEmpty(row.Section, trimmed(defaults.Section)),
			GPA:                row.GPA,
		}
		if err := s.students.Create(ctx, student); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				skip(row, "student already exists")
				continue
			}
			return nil, appErrors.Internal(err, "failed to create student")
		}
		result.Imported++
	}

	s.metrics.ObserveImport(result.Imported, len(result.Skipped))
	if result.Imported > 0 {
		_ = s.cache.InvalidateUnassigned(ctx, universityID)
	}
	s.logger.Info("students imported",
		zap.String("university_id", universityID),
		zap.String("department_id", departmentID),
		zap.Int("total", result.Total),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
