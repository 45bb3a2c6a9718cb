package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSequenceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

const upsertPattern = `INSERT INTO sequence_counters .+ ON CONFLICT \(scope\) DO UPDATE SET current_value = sequence_counters\.current_value \+ \$2.+ RETURNING current_value`

func TestSequenceNextStartsAtOne(t *testing.T) {
	db, mock, cleanup := newSequenceMock(t)
	defer cleanup()
	repo := NewSequenceRepository(db)

	mock.ExpectQuery(upsertPattern).
		WithArgs("plants:env-1", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"current_value"}).AddRow(1))

	next, err := repo.Next(context.Background(), "plants:env-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceNextIsMonotonic(t *testing.T) {
	db, mock, cleanup := newSequenceMock(t)
	defer cleanup()
	repo := NewSequenceRepository(db)

	for _, expected := range []int64{1, 2, 3} {
		mock.ExpectQuery(upsertPattern).
			WithArgs("harvests:env-9", int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"current_value"}).AddRow(expected))
	}

	for _, expected := range []int64{1, 2, 3} {
		got, err := repo.Next(context.Background(), "harvests:env-9")
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceNextNReservesBlock(t *testing.T) {
	db, mock, cleanup := newSequenceMock(t)
	defer cleanup()
	repo := NewSequenceRepository(db)

	mock.ExpectQuery(upsertPattern).
		WithArgs("plants:env-1", int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"current_value"}).AddRow(8))

	last, err := repo.NextN(context.Background(), "plants:env-1", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(8), last) // caller owns 4..8
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceNextNValidatesInput(t *testing.T) {
	db, _, cleanup := newSequenceMock(t)
	defer cleanup()
	repo := NewSequenceRepository(db)

	_, err := repo.NextN(context.Background(), "", 1)
	assert.Error(t, err)

	_, err = repo.NextN(context.Background(), "plants:env-1", 0)
	assert.Error(t, err)
}

func TestSequenceCurrentDefaultsToZero(t *testing.T) {
	db, mock, cleanup := newSequenceMock(t)
	defer cleanup()
	repo := NewSequenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT current_value FROM sequence_counters WHERE scope = $1")).
		WithArgs("orders:user-1").
		WillReturnRows(sqlmock.NewRows([]string{"current_value"}))

	value, err := repo.Current(context.Background(), "orders:user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), value)
	assert.NoError(t, mock.ExpectationsWereMet())
}
