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

type taskRepository interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)
	FindByID(ctx context.Context, id string) (*models.Task, error)
	Create(ctx context.Context, t *models.Task) error
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id string) error
}

type internshipLookup interface {
	FindByID(ctx context.Context, id string) (*models.Internship, error)
}

// TaskService orchestrates internship tasks.
type TaskService struct {
	repo        taskRepository
	internships internshipLookup
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTaskService constructs a TaskService.
func NewTaskService(repo taskRepository, internships internshipLookup, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, internships: internships, validator: validate, logger: logger}
}

// List returns tasks plus pagination data.
func (s *TaskService) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, *response.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list tasks")
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a task by id.
func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "task")
	}
	return item, nil
}

// Create adds a task to an existing internship.
func (s *TaskService) Create(ctx context.Context, req dto.CreateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "task")
	}
	internshipID := trimmed(req.InternshipID)
	if _, err := s.internships.FindByID(ctx, internshipID); err != nil {
		return nil, loadError(err, "internship")
	}

	item := &models.Task{
		InternshipID: internshipID,
		Title:        trimmed(req.Title),
		Description:  trimmed(req.Description),
		Deadline:     req.Deadline.UTC(),
		Marks:        req.Marks,
		Weightage:    req.Weightage,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, writeError(err, "task", "create")
	}
	return item, nil
}

// Update applies a partial update.
func (s *TaskService) Update(ctx context.Context, id string, req dto.UpdateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "task")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.InternshipID != nil {
		internshipID := trimmed(*req.InternshipID)
		if _, err := s.internships.FindByID(ctx, internshipID); err != nil {
			return nil, loadError(err, "internship")
		}
		item.InternshipID = internshipID
	}
	setString(&item.Title, req.Title)
	setString(&item.Description, req.Description)
	if req.Deadline != nil {
		item.Deadline = req.Deadline.UTC()
	}
	if req.Marks != nil {
		item.Marks = *req.Marks
	}
	if req.Weightage != nil {
		item.Weightage = *req.Weightage
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, writeError(err, "task", "update")
	}
	return item, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "task", "delete")
	}
	return nil
}
