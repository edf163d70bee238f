package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
	"github.com/noah-isme/internship-portal-api/pkg/response"
)

type internshipRepository interface {
	List(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, int, error)
	FindByID(ctx context.Context, id string) (*models.Internship, error)
	Create(ctx context.Context, item *models.Internship) error
	Update(ctx context.Context, item *models.Internship) error
	Delete(ctx context.Context, id string) error
}

type completionReleaser interface {
	ReleaseStudents(ctx context.Context, studentIDs []string) (int64, error)
}

type internshipPage struct {
	Items []models.Internship `json:"items"`
	Total int                 `json:"total"`
}

// InternshipService manages the descriptive side of internships. Assigned sets
// and the approval and completion flags belong to AssignmentService.
type InternshipService struct {
	repo         internshipRepository
	universities universityLookup
	departments  departmentLookup
	completions  completionReleaser
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewInternshipService constructs an InternshipService. completions clears
// didInternship when a completed internship is deleted.
func NewInternshipService(
	repo internshipRepository,
	universities universityLookup,
	departments departmentLookup,
	completions completionReleaser,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *InternshipService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InternshipService{
		repo:         repo,
		universities: universities,
		departments:  departments,
		completions:  completions,
		cache:        cache,
		validator:    validate,
		logger:       logger,
	}
}

// List returns internships plus pagination data. Results are cached until the
// next internship write.
func (s *InternshipService) List(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, *response.Pagination, error) {
	key := internshipListKey(filter)
	var page internshipPage
	if hit, _ := s.cache.Get(ctx, key, &page); hit {
		return page.Items, pagination(filter.Page, filter.PageSize, page.Total), nil
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list internships")
	}
	if items == nil {
		items = []models.Internship{}
	}
	_ = s.cache.Set(ctx, key, internshipPage{Items: items, Total: total}, 0)
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns an internship by id.
func (s *InternshipService) Get(ctx context.Context, id string) (*models.Internship, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "internship")
	}
	return item, nil
}

// Create posts a new internship. It starts unapproved, incomplete and with
// no students or faculty.
func (s *InternshipService) Create(ctx context.Context, req dto.CreateInternshipRequest) (*models.Internship, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "internship")
	}
	universityID := trimmed(req.UniversityID)
	if err := placement(ctx, s.universities, nil, universityID, ""); err != nil {
		return nil, err
	}
	departments, err := s.resolveDepartments(ctx, universityID, req.AssignedDepartment)
	if err != nil {
		return nil, err
	}

	item := &models.Internship{
		UniversityID:       universityID,
		Title:              trimmed(req.Title),
		HostInstitution:    trimmed(req.HostInstitution),
		Category:           trimmed(req.Category),
		CompensationType:   compensation(req.CompensationType, req.Stipend),
		Stipend:            req.Stipend,
		Location:           trimmed(req.Location),
		Description:        trimmed(req.Description),
		StartDate:          req.StartDate.UTC(),
		EndDate:            req.EndDate.UTC(),
		NumberOfStudents:   req.NumberOfStudents,
		AssignedDepartment: departments,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, writeError(err, "internship", "create")
	}
	_ = s.cache.InvalidateInternships(ctx)
	s.logger.Info("internship created", zap.String("internship_id", item.ID), zap.String("university_id", universityID))
	return item, nil
}

// Update applies a partial update of descriptive fields.
func (s *InternshipService) Update(ctx context.Context, id string, req dto.UpdateInternshipRequest) (*models.Internship, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "internship")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	setString(&item.Title, req.Title)
	setString(&item.HostInstitution, req.HostInstitution)
	setString(&item.Category, req.Category)
	setString(&item.Location, req.Location)
	setString(&item.Description, req.Description)
	if req.CompensationType != nil {
		item.CompensationType = *req.CompensationType
	}
	if req.Stipend != nil {
		item.Stipend = req.Stipend
	}
	if item.CompensationType == models.CompensationUnpaid {
		item.Stipend = nil
	}
	if req.StartDate != nil {
		item.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		item.EndDate = req.EndDate.UTC()
	}
	if item.EndDate.Before(item.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid internship payload: endDate must not be before startDate")
	}
	if req.NumberOfStudents != nil {
		item.NumberOfStudents = *req.NumberOfStudents
	}
	if req.AssignedDepartment != nil {
		departments, err := s.resolveDepartments(ctx, item.UniversityID, req.AssignedDepartment)
		if err != nil {
			return nil, err
		}
		item.AssignedDepartment = departments
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, writeError(err, "internship", "update")
	}
	_ = s.cache.InvalidateInternships(ctx)
	return item, nil
}

// Delete removes an internship. Deleting a completed internship clears
// didInternship for its students unless another completed internship holds them.
func (s *InternshipService) Delete(ctx context.Context, id string) error {
	if err := requireIDs("id", id); err != nil {
		return err
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "internship", "delete")
	}
	_ = s.cache.InvalidateInternships(ctx)
	_ = s.cache.InvalidateUnassigned(ctx, item.UniversityID)

	if item.IsComplete && len(item.AssignedStudents) > 0 && s.completions != nil {
		if _, err := s.completions.ReleaseStudents(ctx, item.AssignedStudents); err != nil {
			return err
		}
	}
	return nil
}

func (s *InternshipService) resolveDepartments(ctx context.Context, universityID string, ids []string) (pq.StringArray, error) {
	out := pq.StringArray{}
	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		id := trimmed(raw)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		department, err := s.departments.FindByID(ctx, id)
		if err != nil {
			return nil, loadError(err, "department")
		}
		if department.UniversityID != universityID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assignedDepartment must belong to the internship's university")
		}
		out = append(out, id)
	}
	return out, nil
}

func compensation(kind string, stipend *float64) string {
	if kind != "" {
		return kind
	}
	if stipend != nil && *stipend > 0 {
		return models.CompensationPaid
	}
	return models.CompensationUnpaid
}

func internshipListKey(f models.InternshipFilter) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%d:%d", cachePrefixInternships, f.UniversityID,
		optionalBool(f.IsApproved), optionalBool(f.IsComplete), f.Search, f.Page, f.PageSize)
}

func optionalBool(v *bool) string {
	if v == nil {
		return "any"
	}
	return fmt.Sprintf("%t", *v)
}
