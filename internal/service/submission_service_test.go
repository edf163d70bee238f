package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	"github.com/noah-isme/internship-portal-api/pkg/config"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
)

type memTaskRepo struct {
	items map[string]*models.Task
	seq   int
}

func (m *memTaskRepo) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	out := []models.Task{}
	for _, item := range m.items {
		if filter.InternshipID == "" || item.InternshipID == filter.InternshipID {
			out = append(out, *item)
		}
	}
	return out, len(out), nil
}

func (m *memTaskRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memTaskRepo) Create(ctx context.Context, t *models.Task) error {
	m.seq++
	t.ID = fmt.Sprintf("T%d", m.seq+100)
	cp := *t
	m.items[t.ID] = &cp
	return nil
}

func (m *memTaskRepo) Update(ctx context.Context, t *models.Task) error {
	if _, ok := m.items[t.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *t
	m.items[t.ID] = &cp
	return nil
}

func (m *memTaskRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type memSubmissionRepo struct {
	items     map[string]*models.Submission
	createErr error
}

func (m *memSubmissionRepo) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	out := []models.Submission{}
	for _, item := range m.items {
		if filter.TaskID == "" || item.TaskID == filter.TaskID {
			out = append(out, *item)
		}
	}
	return out, len(out), nil
}

func (m *memSubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memSubmissionRepo) Create(ctx context.Context, s *models.Submission) error {
	if m.createErr != nil {
		return m.createErr
	}
	s.ID = fmt.Sprintf("SUB%d", len(m.items)+1)
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *memSubmissionRepo) Update(ctx context.Context, s *models.Submission) error {
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *memSubmissionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type submissionFixture struct {
	tasks       *TaskService
	submissions *SubmissionService
	taskRepo    *memTaskRepo
	repo        *memSubmissionRepo
	store       *memFileStore
}

func newSubmissionFixture() *submissionFixture {
	f := newAssignmentFixture(config.AssignmentConfig{})
	taskRepo := &memTaskRepo{items: map[string]*models.Task{
		"T1": {ID: "T1", InternshipID: "I1", Title: "Weekly report", Marks: 10},
	}}
	repo := &memSubmissionRepo{items: map[string]*models.Submission{}}
	store := newMemFileStore()
	return &submissionFixture{
		tasks:       NewTaskService(taskRepo, f.internships, nil, zap.NewNop()),
		submissions: NewSubmissionService(repo, taskRepo, f.students, newTestFileService(store), nil, zap.NewNop()),
		taskRepo:    taskRepo,
		repo:        repo,
		store:       store,
	}
}

func submissionRequest(taskID, studentID string) dto.CreateSubmissionRequest {
	return dto.CreateSubmissionRequest{
		TaskID:      taskID,
		StudentName: " Ayesha Malik ",
		StudentID:   studentID,
		FileName:    "week1.pdf",
		ContentType: "application/pdf",
		Size:        4,
		File:        strings.NewReader("%PDF"),
	}
}

func TestTaskServiceRequiresInternship(t *testing.T) {
	f := newSubmissionFixture()
	ctx := context.Background()
	deadline := time.Now().Add(72 * time.Hour)

	task, err := f.tasks.Create(ctx, dto.CreateTaskRequest{InternshipID: "I2", Title: "Design doc", Deadline: deadline, Marks: 20, Weightage: 15})
	require.NoError(t, err)
	assert.Equal(t, "I2", task.InternshipID)

	_, err = f.tasks.Create(ctx, dto.CreateTaskRequest{InternshipID: "missing", Title: "Design doc", Deadline: deadline})
	require.Error(t, err)
	assert.Equal(t, "internship not found", appErrors.FromError(err).Message)

	moved := "missing"
	_, err = f.tasks.Update(ctx, task.ID, dto.UpdateTaskRequest{InternshipID: &moved})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	assert.True(t, errors.Is(f.tasks.Delete(ctx, "nope"), appErrors.ErrNotFound))
}

func TestSubmissionServiceCreateStoresFile(t *testing.T) {
	f := newSubmissionFixture()

	item, uploaded, err := f.submissions.Create(context.Background(), submissionRequest("T1", "S1"))
	require.NoError(t, err)
	assert.Equal(t, "Ayesha Malik", item.StudentName)
	require.NotNil(t, item.StudentID)
	assert.Equal(t, "S1", *item.StudentID)
	assert.Equal(t, uploaded.Key, item.File)
	assert.True(t, strings.HasPrefix(item.File, "submissions/T1/"))
	assert.Contains(t, f.store.files, item.File)
	assert.False(t, item.SubmittedAt.IsZero())
}

func TestSubmissionServiceStudentIsOptional(t *testing.T) {
	f := newSubmissionFixture()
	ctx := context.Background()

	item, _, err := f.submissions.Create(ctx, submissionRequest("T1", "  "))
	require.NoError(t, err)
	assert.Nil(t, item.StudentID)

	_, _, err = f.submissions.Create(ctx, submissionRequest("T1", "ghost"))
	require.Error(t, err)
	assert.Equal(t, "student not found", appErrors.FromError(err).Message)

	_, _, err = f.submissions.Create(ctx, submissionRequest("T9", ""))
	assert.Equal(t, "task not found", appErrors.FromError(err).Message)
}

func TestSubmissionServiceRemovesFileWhenCreateFails(t *testing.T) {
	f := newSubmissionFixture()
	f.repo.createErr = errors.New("insert failed")

	_, _, err := f.submissions.Create(context.Background(), submissionRequest("T1", ""))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.store.files)
	assert.Len(t, f.store.deleted, 1)
}

func TestSubmissionServiceDeleteRemovesFile(t *testing.T) {
	f := newSubmissionFixture()
	ctx := context.Background()

	item, _, err := f.submissions.Create(ctx, submissionRequest("T1", ""))
	require.NoError(t, err)

	link, err := f.submissions.FileURL(ctx, item.ID)
	require.NoError(t, err)
	assert.Contains(t, link, "/api/files/download?token=")

	require.NoError(t, f.submissions.Delete(ctx, item.ID))
	assert.Equal(t, []string{item.File}, f.store.deleted)

	_, err = f.submissions.FileURL(ctx, item.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
