package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-portal-api/internal/models"
)

func TestFacultyRepositoryFindByIDDecodesQualification(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM faculty WHERE id = $1")).
		WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "university_id", "department_id", "first_name", "last_name", "email", "cnic", "phone",
			"designation", "qualification", "created_at", "updated_at"}).
			AddRow("f-1", "uni-1", "dep-1", "Sana", "Ali", "sana@uni.edu", "35202-9", "", "Lecturer",
				[]byte(`{"degree":"PhD","institute":"LUMS","passing_year":2019}`), now, now))

	f, err := repo.FindByID(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, "PhD", f.Qualification.Degree)
	assert.Equal(t, 2019, f.Qualification.PassingYear)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	mock.ExpectExec("INSERT INTO faculty").WillReturnResult(sqlmock.NewResult(1, 1))

	f := &models.Faculty{UniversityID: "uni-1", DepartmentID: "dep-1", FirstName: "Sana", Email: "sana@uni.edu", CNIC: "1",
		Qualification: models.Qualification{Degree: "MS"}}
	require.NoError(t, repo.Create(context.Background(), f))
	assert.NotEmpty(t, f.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
