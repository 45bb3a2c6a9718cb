package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

func newHarvestMock(t *testing.T) (*HarvestRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewHarvestRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

const ledgerUpdatePattern = `UPDATE harvests\s+SET distributed_grams = distributed_grams \+ \$2`

func TestApplyLedgerDeltaSucceeds(t *testing.T) {
	repo, mock, cleanup := newHarvestMock(t)
	defer cleanup()

	mock.ExpectExec(ledgerUpdatePattern).
		WithArgs("harvest-1", 25.0, 0.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ApplyLedgerDelta(context.Background(), models.LedgerDelta{HarvestID: "harvest-1", DistributedGrams: 25})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyLedgerDeltaRejectsOverdraw(t *testing.T) {
	repo, mock, cleanup := newHarvestMock(t)
	defer cleanup()

	// Zero rows affected: the guard clause filtered out the row.
	mock.ExpectExec(ledgerUpdatePattern).
		WithArgs("harvest-1", 5000.0, 0.0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ApplyLedgerDelta(context.Background(), models.LedgerDelta{HarvestID: "harvest-1", DistributedGrams: 5000})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrLedgerExceeded.Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyLedgerDeltaRejectsNegativeBalance(t *testing.T) {
	repo, mock, cleanup := newHarvestMock(t)
	defer cleanup()

	mock.ExpectExec(ledgerUpdatePattern).
		WithArgs("harvest-1", 0.0, -10.0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ApplyLedgerDelta(context.Background(), models.LedgerDelta{HarvestID: "harvest-1", ExtractedGrams: -10})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHarvestCreateZeroesLedgers(t *testing.T) {
	repo, mock, cleanup := newHarvestMock(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO harvests`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	harvest := &models.Harvest{
		ControlNumber:    "ABCH20250115093000001",
		EnvironmentID:    "env-1",
		PlantID:          "plant-1",
		StrainID:         "strain-1",
		WetWeightGrams:   1200,
		DryWeightGrams:   300,
		DistributedGrams: 99, // must be reset on insert
		CreatedBy:        "user-1",
	}
	err := repo.Create(context.Background(), harvest)
	require.NoError(t, err)
	assert.NotEmpty(t, harvest.ID)
	assert.Zero(t, harvest.DistributedGrams)
	assert.Zero(t, harvest.ExtractedGrams)
	assert.NoError(t, mock.ExpectationsWereMet())
}
