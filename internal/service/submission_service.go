package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
	"github.com/noah-isme/internship-portal-api/pkg/response"
)

type submissionRepository interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error)
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	Create(ctx context.Context, s *models.Submission) error
	Update(ctx context.Context, s *models.Submission) error
	Delete(ctx context.Context, id string) error
}

type taskLookup interface {
	FindByID(ctx context.Context, id string) (*models.Task, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// SubmissionService stores task submissions and their files.
type SubmissionService struct {
	repo      submissionRepository
	tasks     taskLookup
	students  studentLookup
	files     *FileService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(repo submissionRepository, tasks taskLookup, students studentLookup, files *FileService, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{repo: repo, tasks: tasks, students: students, files: files, validator: validate, logger: logger}
}

// List returns submissions plus pagination data.
func (s *SubmissionService) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, *response.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list submissions")
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a submission by id.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "submission")
	}
	return item, nil
}

// Create stores the uploaded file and records the submission against its task.
func (s *SubmissionService) Create(ctx context.Context, req dto.CreateSubmissionRequest) (*models.Submission, *dto.UploadedFile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, validationError(err, "submission")
	}
	taskID := trimmed(req.TaskID)
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		return nil, nil, loadError(err, "task")
	}
	studentID := normalizeOptional(&req.StudentID)
	if studentID != nil {
		if _, err := s.students.FindByID(ctx, *studentID); err != nil {
			return nil, nil, loadError(err, "student")
		}
	}
	if s.files == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrInternal, "file storage is not configured")
	}

	uploaded, err := s.files.Upload(ctx, FileKindSubmission, taskID, req.FileName, req.ContentType, req.Size, req.File)
	if err != nil {
		return nil, nil, err
	}
	item := &models.Submission{
		TaskID:      taskID,
		StudentName: trimmed(req.StudentName),
		StudentID:   studentID,
		File:        uploaded.Key,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		s.files.Remove(ctx, uploaded.Key)
		return nil, nil, writeError(err, "submission", "create")
	}
	return item, uploaded, nil
}

// Update changes the submitter fields. The file is immutable.
func (s *SubmissionService) Update(ctx context.Context, id string, req dto.UpdateSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "submission")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	setString(&item.StudentName, req.StudentName)
	if req.StudentID != nil {
		item.StudentID = normalizeOptional(req.StudentID)
		if item.StudentID != nil {
			if _, err := s.students.FindByID(ctx, *item.StudentID); err != nil {
				return nil, loadError(err, "student")
			}
		}
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, writeError(err, "submission", "update")
	}
	return item, nil
}

// Delete removes a submission and its stored file.
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "submission", "delete")
	}
	if s.files != nil {
		s.files.Remove(ctx, item.File)
	}
	return nil
}

// FileURL returns a signed download link for a submission's file.
func (s *SubmissionService) FileURL(ctx context.Context, id string) (string, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.files == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "file storage is not configured")
	}
	return s.files.URL(item.TaskID, item.File)
}
