package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/internship-portal-api/internal/models"
)

const taskColumns = "id, internship_id, title, description, deadline, marks, weightage, created_at, updated_at"

// TaskRepository manages persistence for internship tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs a TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns tasks, optionally for one internship, ordered by deadline.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	base := "FROM tasks WHERE 1=1"
	var args []interface{}
	if filter.InternshipID != "" {
		args = append(args, filter.InternshipID)
		base += fmt.Sprintf(" AND internship_id = $%d", len(args))
	}
	limit, offset := paginate(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY deadline ASC LIMIT %d OFFSET %d", taskColumns, base, limit, offset)
	var items []models.Task
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}
	return items, total, nil
}

// FindByID fetches a task by ID.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := r.db.GetContext(ctx, &t, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &t, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	const query = `INSERT INTO tasks (id, internship_id, title, description, deadline, marks, weightage, created_at, updated_at)
        VALUES (:id, :internship_id, :title, :description, :deadline, :marks, :weightage, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return mapWriteError("create task", err)
	}
	return nil
}

// Update overwrites the mutable fields of a task.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	t.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tasks SET internship_id = :internship_id, title = :title, description = :description, deadline = :deadline,
        marks = :marks, weightage = :weightage, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return mapWriteError("update task", err)
	}
	return requireAffected(res, "update task")
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "tasks", id)
}
