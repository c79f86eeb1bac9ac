package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/curricula-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowsResult struct {
	n   int64
	err error
}

func (r rowsResult) LastInsertId() (int64, error) { return 0, nil }
func (r rowsResult) RowsAffected() (int64, error) { return r.n, r.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique", &pgconn.PgError{Code: uniqueViolationCode}, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "lessons_skill_id_fkey"},
			store.ErrReferenceMissing},
		{"check", &pgconn.PgError{Code: checkViolationCode}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "name"}, store.ErrInvalidEntity},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolationCode}), store.ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tt.err), tt.want)
		})
	}

	assert.NoError(t, MapError(nil))
	other := errors.New("connection reset")
	assert.Equal(t, other, MapError(other))
}

func TestMapCreateError(t *testing.T) {
	t.Parallel()

	unique := &pgconn.PgError{Code: uniqueViolationCode}
	err := mapCreateError("course", unique, store.ErrCourseExists)
	assert.ErrorIs(t, err, store.ErrCourseExists)
	assert.EqualError(t, err, "create operation on course failed: already exists: "+store.ErrCourseExists.Error())

	assert.ErrorIs(t, mapCreateError("course", unique, nil), store.ErrDuplicate)
	assert.ErrorIs(t, mapCreateError("course", &pgconn.PgError{Code: foreignKeyViolationCode}, store.ErrCourseExists),
		store.ErrReferenceMissing)
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	err := writeError("lesson", "create", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "lessons_skill_id_fkey"})
	assert.ErrorIs(t, err, store.ErrReferenceMissing)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "lesson", storeErr.Entity)
	assert.Equal(t, "create", storeErr.Operation)
	assert.Contains(t, err.Error(), "create operation on lesson failed: database write failed")

	reset := errors.New("connection reset")
	assert.ErrorIs(t, writeError("course", "update", reset), reset)
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, checkRowsAffected(rowsResult{n: 1}, store.ErrCourseNotFound))
	assert.ErrorIs(t, checkRowsAffected(rowsResult{}, store.ErrCourseNotFound), store.ErrCourseNotFound)
	assert.Error(t, checkRowsAffected(rowsResult{err: errors.New("driver")}, store.ErrCourseNotFound))
}

func TestViolationHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("x")))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: foreignKeyViolationCode}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: uniqueViolationCode}))
}
