package repository

import (
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMapWriteErrorDetectsUniqueViolation(t *testing.T) {
	err := mapWriteError("create department", &pq.Error{Code: "23505", Constraint: "departments_cnic_key"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "departments_cnic_key")

	other := mapWriteError("create department", errors.New("connection reset"))
	assert.False(t, errors.Is(other, ErrDuplicate))
	assert.Contains(t, other.Error(), "create department")
}

func TestPaginateDefaults(t *testing.T) {
	limit, offset := paginate(0, 0)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset = paginate(3, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, _ = paginate(1, 500)
	assert.Equal(t, 20, limit)
}
