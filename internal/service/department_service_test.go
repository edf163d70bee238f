package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	"github.com/noah-isme/internship-portal-api/internal/repository"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
)

type mockDepartmentRepo struct {
	items     map[string]*models.Department
	emailIdx  map[string]string
	cnicIdx   map[string]string
	createErr error
}

func (m *mockDepartmentRepo) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, int, error) {
	out := []models.Department{}
	for _, d := range m.items {
		if filter.UniversityID == "" || d.UniversityID == filter.UniversityID {
			out = append(out, *d)
		}
	}
	return out, len(out), nil
}

func (m *mockDepartmentRepo) FindByID(ctx context.Context, id string) (*models.Department, error) {
	if d, ok := m.items[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDepartmentRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	owner, ok := m.emailIdx[email]
	return ok && owner != excludeID, nil
}

func (m *mockDepartmentRepo) ExistsByCNIC(ctx context.Context, cnic, excludeID string) (bool, error) {
	owner, ok := m.cnicIdx[cnic]
	return ok && owner != excludeID, nil
}

func (m *mockDepartmentRepo) Create(ctx context.Context, d *models.Department) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.items == nil {
		m.items = make(map[string]*models.Department)
	}
	d.ID = fmt.Sprintf("d%d", len(m.items)+1)
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockDepartmentRepo) Update(ctx context.Context, d *models.Department) error {
	if _, ok := m.items[d.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockDepartmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func universitiesFixture() *mockUniversityRepo {
	return &mockUniversityRepo{items: map[string]*models.University{
		"U1": {ID: "U1", Name: "NU", Email: "admin@nu.edu.pk"},
		"U2": {ID: "U2", Name: "LUMS", Email: "admin@lums.edu.pk"},
	}}
}

func departmentsFixture() *mockDepartmentRepo {
	return &mockDepartmentRepo{
		items: map[string]*models.Department{
			"D1": {ID: "D1", UniversityID: "U1", Name: "Computer Science", Email: "hod.cs@nu.edu.pk", CNIC: "35202-1111111-1"},
			"D2": {ID: "D2", UniversityID: "U1", Name: "Electrical", Email: "hod.ee@nu.edu.pk", CNIC: "35202-2222222-2"},
			"D9": {ID: "D9", UniversityID: "U2", Name: "Economics", Email: "hod.econ@lums.edu.pk", CNIC: "35202-9999999-9"},
		},
		emailIdx: map[string]string{"hod.cs@nu.edu.pk": "D1", "hod.ee@nu.edu.pk": "D2"},
		cnicIdx:  map[string]string{"35202-1111111-1": "D1", "35202-2222222-2": "D2"},
	}
}

func validDepartmentRequest() dto.CreateDepartmentRequest {
	return dto.CreateDepartmentRequest{
		UniversityID: "U1",
		Name:         "Software Engineering",
		HODName:      "Dr. Sana",
		Email:        "hod.se@nu.edu.pk",
		CNIC:         "35202-3333333-3",
	}
}

func TestDepartmentServiceCreate(t *testing.T) {
	repo := departmentsFixture()
	svc := NewDepartmentService(repo, universitiesFixture(), nil, zap.NewNop())

	d, err := svc.Create(context.Background(), validDepartmentRequest())
	require.NoError(t, err)
	assert.Equal(t, "U1", d.UniversityID)
	assert.NotEmpty(t, d.ID)
	assert.Contains(t, repo.items, d.ID)
}

func TestDepartmentServiceCreateMissingFields(t *testing.T) {
	svc := NewDepartmentService(departmentsFixture(), universitiesFixture(), nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateDepartmentRequest{UniversityID: "U1", Name: "X"})
	require.Error(t, err)
	msg := appErrors.FromError(err).Message
	assert.Contains(t, msg, "email is required")
	assert.Contains(t, msg, "cnic is required")
}

func TestDepartmentServiceCreateUnknownUniversity(t *testing.T) {
	repo := departmentsFixture()
	svc := NewDepartmentService(repo, universitiesFixture(), nil, zap.NewNop())
	req := validDepartmentRequest()
	req.UniversityID = "U404"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Len(t, repo.items, 3)
}

func TestDepartmentServiceCreateDuplicateEmailOrCNIC(t *testing.T) {
	ctx := context.Background()

	t.Run("email", func(t *testing.T) {
		svc := NewDepartmentService(departmentsFixture(), universitiesFixture(), nil, zap.NewNop())
		req := validDepartmentRequest()
		req.Email = "HOD.CS@nu.edu.pk"
		_, err := svc.Create(ctx, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrDuplicate))
		assert.Equal(t, "email already used", appErrors.FromError(err).Message)
	})

	t.Run("cnic", func(t *testing.T) {
		svc := NewDepartmentService(departmentsFixture(), universitiesFixture(), nil, zap.NewNop())
		req := validDepartmentRequest()
		req.CNIC = "35202-2222222-2"
		_, err := svc.Create(ctx, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrDuplicate))
		assert.Equal(t, 400, appErrors.FromError(err).Status)
	})

	t.Run("constraint race", func(t *testing.T) {
		repo := departmentsFixture()
		repo.createErr = fmt.Errorf("create department: %w", repository.ErrDuplicate)
		svc := NewDepartmentService(repo, universitiesFixture(), nil, zap.NewNop())
		_, err := svc.Create(ctx, validDepartmentRequest())
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrDuplicate))
	})
}

func TestDepartmentServiceUpdateKeepsOwnEmail(t *testing.T) {
	repo := departmentsFixture()
	svc := NewDepartmentService(repo, universitiesFixture(), nil, zap.NewNop())

	email := "hod.cs@nu.edu.pk"
	name := "CS"
	updated, err := svc.Update(context.Background(), "D1", dto.UpdateDepartmentRequest{Email: &email, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "CS", updated.Name)

	taken := "hod.ee@nu.edu.pk"
	_, err = svc.Update(context.Background(), "D1", dto.UpdateDepartmentRequest{Email: &taken})
	assert.True(t, errors.Is(err, appErrors.ErrDuplicate))
}
