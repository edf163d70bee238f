package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
)

type mockUniversityRepo struct {
	items      map[string]*models.University
	emailIndex map[string]string
	listErr    error
}

func (m *mockUniversityRepo) List(ctx context.Context, filter models.UniversityFilter) ([]models.University, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	out := make([]models.University, 0, len(m.items))
	for _, u := range m.items {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockUniversityRepo) FindByID(ctx context.Context, id string) (*models.University, error) {
	if u, ok := m.items[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUniversityRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	owner, ok := m.emailIndex[email]
	return ok && owner != excludeID, nil
}

func (m *mockUniversityRepo) Create(ctx context.Context, u *models.University) error {
	if m.items == nil {
		m.items = make(map[string]*models.University)
	}
	if m.emailIndex == nil {
		m.emailIndex = make(map[string]string)
	}
	if u.ID == "" {
		u.ID = "generated"
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.items[u.ID] = &cp
	m.emailIndex[u.Email] = u.ID
	return nil
}

func (m *mockUniversityRepo) Update(ctx context.Context, u *models.University) error {
	if _, ok := m.items[u.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *u
	m.items[u.ID] = &cp
	return nil
}

func (m *mockUniversityRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func TestUniversityServiceCreate(t *testing.T) {
	repo := &mockUniversityRepo{}
	svc := NewUniversityService(repo, nil, zap.NewNop())

	u, err := svc.Create(context.Background(), dto.CreateUniversityRequest{
		Name:  "  FAST NUCES ",
		Email: "Admin@NU.edu.pk",
	})
	require.NoError(t, err)
	assert.Equal(t, "FAST NUCES", u.Name)
	assert.Equal(t, "admin@nu.edu.pk", u.Email)
	assert.Len(t, repo.items, 1)
}

func TestUniversityServiceCreateValidation(t *testing.T) {
	svc := NewUniversityService(&mockUniversityRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateUniversityRequest{Email: "not-an-email"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "name is required")
	assert.Contains(t, appErr.Message, "email must be a valid email")
}

func TestUniversityServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockUniversityRepo{emailIndex: map[string]string{"admin@nu.edu.pk": "u0"}}
	svc := NewUniversityService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateUniversityRequest{Name: "NU", Email: "admin@nu.edu.pk"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicate))
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestUniversityServiceUpdateAndDelete(t *testing.T) {
	repo := &mockUniversityRepo{
		items:      map[string]*models.University{"u1": {ID: "u1", Name: "NU", Email: "admin@nu.edu.pk"}},
		emailIndex: map[string]string{"admin@nu.edu.pk": "u1"},
	}
	svc := NewUniversityService(repo, nil, zap.NewNop())
	ctx := context.Background()

	location := "Lahore"
	sameEmail := "admin@nu.edu.pk"
	updated, err := svc.Update(ctx, "u1", dto.UpdateUniversityRequest{Location: &location, Email: &sameEmail})
	require.NoError(t, err)
	assert.Equal(t, "Lahore", updated.Location)
	assert.Equal(t, "NU", updated.Name)

	_, err = svc.Update(ctx, "missing", dto.UpdateUniversityRequest{Location: &location})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, svc.Delete(ctx, "u1"))
	err = svc.Delete(ctx, "u1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestUniversityServiceListFailureIsInternal(t *testing.T) {
	svc := NewUniversityService(&mockUniversityRepo{listErr: errors.New("boom")}, nil, zap.NewNop())

	_, _, err := svc.List(context.Background(), models.UniversityFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
