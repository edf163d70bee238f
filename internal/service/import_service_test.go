package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
)

func studentWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf
}

func newImportFixture() (*ImportService, *memStudentRepo, *memCacheRepo) {
	repo := &memStudentRepo{items: map[string]*models.Student{
		"S1": {ID: "S1", UniversityID: "U1", DepartmentID: "D1", FirstName: "Ayesha", Email: "ayesha@nu.edu.pk", RegistrationNumber: "21L-1001"},
	}}
	cacheRepo := newMemCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewImportService(repo, universitiesFixture(), departmentsFixture(), cache, NewMetricsService(), nil, zap.NewNop())
	return svc, repo, cacheRepo
}

func TestImportStudentsSkipsDuplicates(t *testing.T) {
	svc, repo, cacheRepo := newImportFixture()
	cacheRepo.items[UnassignedCacheKey("U1", "")] = []byte(`[]`)

	buf := studentWorkbook(t, [][]interface{}{
		{"Registration Number", "First Name", "Last Name", "Email", "Section"},
		{"21L-2001", "Bilal", "Ahmed", "bilal@nu.edu.pk", ""},
		{"21L-2002", "Chand", "", "ayesha@nu.edu.pk", ""},
		{"21L-1001", "Danish", "", "danish@nu.edu.pk", ""},
		{"21L-2003", "Erum", "", "BILAL@nu.edu.pk", "B"},
		{"21L-2004", "Faraz", "", "not-an-email", ""},
		{"21L-2005", "Gul", "", "gul@nu.edu.pk", "C"},
	})

	result, err := svc.ImportStudents(context.Background(), dto.ImportStudentsDefaults{
		UniversityID: "U1", DepartmentID: "D1", Batch: "2021", Section: "A",
	}, buf)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Total)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Skipped, 4)
	assert.Equal(t, 3, result.Skipped[0].Row)
	assert.Equal(t, "email already used", result.Skipped[0].Reason)
	assert.Equal(t, "registrationNumber already used", result.Skipped[1].Reason)
	assert.Equal(t, "duplicate email in sheet", result.Skipped[2].Reason)
	assert.Equal(t, "invalid email", result.Skipped[3].Reason)

	assert.Len(t, repo.items, 3)
	gul, err := repo.FindByEmail(context.Background(), "gul@nu.edu.pk")
	require.NoError(t, err)
	assert.Equal(t, "C", gul.Section)
	assert.Equal(t, "2021", gul.Batch)
	bilal, err := repo.FindByEmail(context.Background(), "bilal@nu.edu.pk")
	require.NoError(t, err)
	assert.Equal(t, "A", bilal.Section)
	assert.False(t, bilal.DidInternship)

	assert.Empty(t, cacheRepo.items)
}

func TestImportStudentsRejectsBadWorkbook(t *testing.T) {
	svc, _, _ := newImportFixture()

	buf := studentWorkbook(t, [][]interface{}{{"First Name", "Email"}, {"Ayesha", "a@nu.edu.pk"}})
	_, err := svc.ImportStudents(context.Background(), dto.ImportStudentsDefaults{UniversityID: "U1", DepartmentID: "D1"}, buf)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestImportStudentsRequiresKnownDepartment(t *testing.T) {
	svc, _, _ := newImportFixture()

	_, err := svc.ImportStudents(context.Background(), dto.ImportStudentsDefaults{UniversityID: "U1", DepartmentID: "D404"}, bytes.NewReader(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.ImportStudents(context.Background(), dto.ImportStudentsDefaults{}, bytes.NewReader(nil))
	assert.Contains(t, appErrors.FromError(err).Message, "universityId is required")
}
