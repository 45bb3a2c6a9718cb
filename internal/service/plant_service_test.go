package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type mockPlantRepo struct {
	plants  map[string]*models.Plant
	created []*models.Plant
	batches [][]*models.Plant
}

func newMockPlantRepo() *mockPlantRepo {
	return &mockPlantRepo{plants: make(map[string]*models.Plant)}
}

func (m *mockPlantRepo) List(ctx context.Context, filter models.PlantFilter) ([]models.Plant, int, error) {
	return nil, 0, nil
}

func (m *mockPlantRepo) GetByID(ctx context.Context, id string) (*models.Plant, error) {
	return m.plants[id], nil
}

func (m *mockPlantRepo) GetByControlNumber(ctx context.Context, controlNumber string) (*models.Plant, error) {
	for _, plant := range m.plants {
		if plant.ControlNumber == controlNumber {
			return plant, nil
		}
	}
	return nil, nil
}

func (m *mockPlantRepo) Create(ctx context.Context, plant *models.Plant) error {
	plant.ID = "plant-" + plant.ControlNumber
	m.created = append(m.created, plant)
	m.plants[plant.ID] = plant
	return nil
}

func (m *mockPlantRepo) CreateBatch(ctx context.Context, plants []*models.Plant) error {
	m.batches = append(m.batches, plants)
	for _, plant := range plants {
		plant.ID = "plant-" + plant.ControlNumber
		m.plants[plant.ID] = plant
	}
	return nil
}

func (m *mockPlantRepo) Update(ctx context.Context, plant *models.Plant) error { return nil }
func (m *mockPlantRepo) Delete(ctx context.Context, id string) error           { return nil }

func plantServiceFixture(repo *mockPlantRepo) *PlantService {
	envs := &mockEnvResolver{envs: map[string]*models.Environment{
		"env-1": {ID: "env-1", Name: "Room A", Active: true},
	}}
	numbering := NewNumberingService(newFakeCounters(), fixedGenerator(), nil)
	return NewPlantService(repo, envs, numbering, nil, nil, nil)
}

func TestPlantCreateAssignsControlNumber(t *testing.T) {
	repo := newMockPlantRepo()
	svc := plantServiceFixture(repo)

	plant, err := svc.Create(context.Background(), CreatePlantRequest{
		EnvironmentID: "env-1",
		StrainID:      "strain-1",
		Source:        "seed",
		CreatedBy:     "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "AAAA20250314093000001", plant.ControlNumber)
	assert.Equal(t, models.StageSeedling, plant.Stage)

	second, err := svc.Create(context.Background(), CreatePlantRequest{
		EnvironmentID: "env-1",
		StrainID:      "strain-1",
		Source:        "seed",
		CreatedBy:     "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "AAAA20250314093000002", second.ControlNumber)
}

func TestPlantCreateRejectsMissingEnvironment(t *testing.T) {
	repo := newMockPlantRepo()
	svc := plantServiceFixture(repo)

	_, err := svc.Create(context.Background(), CreatePlantRequest{
		EnvironmentID: "missing",
		StrainID:      "strain-1",
		Source:        "seed",
		CreatedBy:     "user-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingOwner.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created, "no plant row may exist without an owner")
}

func TestCloneBatchSharesBatchIDAndNumbersSiblings(t *testing.T) {
	repo := newMockPlantRepo()
	svc := plantServiceFixture(repo)

	motherID := "plant-0"
	clones, err := svc.CreateCloneBatch(context.Background(), CloneBatchRequest{
		EnvironmentID: "env-1",
		StrainID:      "strain-1",
		MotherID:      &motherID,
		Count:         4,
		CreatedBy:     "user-1",
	})
	require.NoError(t, err)
	require.Len(t, clones, 4)
	require.Len(t, repo.batches, 1)

	batchID := clones[0].BatchID
	require.NotNil(t, batchID)
	for i, clone := range clones {
		assert.Equal(t, models.SourceClone, clone.Source)
		require.NotNil(t, clone.BatchID)
		assert.Equal(t, *batchID, *clone.BatchID, "all siblings share one batch id")
		require.NotNil(t, clone.MotherID)
		assert.Equal(t, motherID, *clone.MotherID)
		if i > 0 {
			assert.Greater(t, clone.ControlNumber, clones[i-1].ControlNumber, "clone numbers are consecutive")
		}
	}
	assert.Equal(t, "AAACL20250314093000001", clones[0].ControlNumber)
	assert.Equal(t, "AAACL20250314093000004", clones[3].ControlNumber)
}

func TestCloneBatchValidatesCount(t *testing.T) {
	repo := newMockPlantRepo()
	svc := plantServiceFixture(repo)

	_, err := svc.CreateCloneBatch(context.Background(), CloneBatchRequest{
		EnvironmentID: "env-1",
		StrainID:      "strain-1",
		Count:         0,
		CreatedBy:     "user-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
