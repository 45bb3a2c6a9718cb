package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantiq/cultiva-api/internal/models"
)

func newPlantMock(t *testing.T) (*PlantRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPlantRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestPlantListFiltersByStage(t *testing.T) {
	repo, mock, cleanup := newPlantMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "control_number", "environment_id", "strain_id", "stage", "source", "mother_id", "batch_id", "planted_at", "notes", "created_by", "created_at", "updated_at"}).
		AddRow("plant-1", "ABCA20250110120000001", "env-1", "strain-1", "flowering", "seed", nil, nil, time.Now(), "", "user-1", time.Now(), time.Now())

	mock.ExpectQuery(`SELECT .+ FROM plants WHERE 1=1 AND environment_id = \$1 AND stage = \$2`).
		WithArgs("env-1", "flowering").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM plants WHERE 1=1 AND environment_id = \$1 AND stage = \$2`).
		WithArgs("env-1", "flowering").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	stage := models.StageFlowering
	plants, total, err := repo.List(context.Background(), models.PlantFilter{EnvironmentID: "env-1", Stage: &stage})
	require.NoError(t, err)
	assert.Len(t, plants, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "ABCA20250110120000001", plants[0].ControlNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlantCreateBatchIsTransactional(t *testing.T) {
	repo, mock, cleanup := newPlantMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO plants`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO plants`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO plants`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	batchID := "batch-1"
	motherID := "plant-0"
	plants := make([]*models.Plant, 3)
	for i := range plants {
		plants[i] = &models.Plant{
			ControlNumber: "ABCCL2025011012000000" + string(rune('1'+i)),
			EnvironmentID: "env-1",
			StrainID:      "strain-1",
			Stage:         models.StageSeedling,
			Source:        models.SourceClone,
			MotherID:      &motherID,
			BatchID:       &batchID,
			PlantedAt:     time.Now().UTC(),
			CreatedBy:     "user-1",
		}
	}
	err := repo.CreateBatch(context.Background(), plants)
	require.NoError(t, err)
	for _, plant := range plants {
		assert.NotEmpty(t, plant.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlantCreateBatchRollsBackOnFailure(t *testing.T) {
	repo, mock, cleanup := newPlantMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO plants`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO plants`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	plants := []*models.Plant{
		{ControlNumber: "ABCCL20250110120000001", EnvironmentID: "env-1", StrainID: "strain-1"},
		{ControlNumber: "ABCCL20250110120000002", EnvironmentID: "env-1", StrainID: "strain-1"},
	}
	err := repo.CreateBatch(context.Background(), plants)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlantCreateBatchNoopOnEmpty(t *testing.T) {
	repo, _, cleanup := newPlantMock(t)
	defer cleanup()

	require.NoError(t, repo.CreateBatch(context.Background(), nil))
}
