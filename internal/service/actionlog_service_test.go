package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantiq/cultiva-api/internal/models"
	"github.com/verdantiq/cultiva-api/pkg/config"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type mockActionLogRepo struct {
	mu        sync.Mutex
	summaries []*models.BulkActionLog
	logs      []*models.ActionLog
	failFor   map[string]error
	deleted   []string
}

func newMockActionLogRepo() *mockActionLogRepo {
	return &mockActionLogRepo{failFor: make(map[string]error)}
}

func (m *mockActionLogRepo) List(ctx context.Context, filter models.ActionLogFilter) ([]models.ActionLog, int, error) {
	return nil, 0, nil
}

func (m *mockActionLogRepo) Create(ctx context.Context, log *models.ActionLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[log.PlantID]; ok {
		return err
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockActionLogRepo) CreateBulkSummary(ctx context.Context, bulk *models.BulkActionLog) error {
	bulk.ID = "bulk-1"
	bulk.TargetCount = len(bulk.TargetIDs)
	m.mu.Lock()
	m.summaries = append(m.summaries, bulk)
	m.mu.Unlock()
	return nil
}

func (m *mockActionLogRepo) GetBulkByID(ctx context.Context, id string) (*models.BulkActionLog, error) {
	for _, bulk := range m.summaries {
		if bulk.ID == id {
			return bulk, nil
		}
	}
	return nil, nil
}

func (m *mockActionLogRepo) ListBulk(ctx context.Context, environmentID string, page, pageSize int) ([]models.BulkActionLog, int, error) {
	return nil, 0, nil
}

func (m *mockActionLogRepo) DeleteByBulkID(ctx context.Context, bulkID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, bulkID)
	kept := m.logs[:0]
	var removed int64
	for _, log := range m.logs {
		if log.BulkID != nil && *log.BulkID == bulkID {
			removed++
			continue
		}
		kept = append(kept, log)
	}
	m.logs = kept
	return removed, nil
}

type mockEnvResolver struct {
	envs map[string]*models.Environment
}

func (m *mockEnvResolver) GetByID(ctx context.Context, id string) (*models.Environment, error) {
	return m.envs[id], nil
}

type mockPlantIDs struct {
	ids []string
}

func (m *mockPlantIDs) ListIDsByEnvironment(ctx context.Context, environmentID string, stages []models.PlantStage) ([]string, error) {
	return m.ids, nil
}

func bulkService(repo *mockActionLogRepo, ids []string, policy string) *ActionLogService {
	envs := &mockEnvResolver{envs: map[string]*models.Environment{
		"env-1": {ID: "env-1", Name: "Room A", Active: true},
	}}
	cfg := config.BulkActionsConfig{OnPartialFailure: policy, MaxTargets: 500}
	return NewActionLogService(repo, envs, &mockPlantIDs{ids: ids}, cfg, nil, nil)
}

func validBulkRequest(targets []string) BulkActionRequest {
	return BulkActionRequest{
		EnvironmentID: "env-1",
		Action:        "watering",
		Product:       "plain water",
		Amount:        1.5,
		PerformedBy:   "user-1",
		PlantIDs:      targets,
	}
}

func TestBulkCreatesOneRecordPerTargetPlusSummary(t *testing.T) {
	repo := newMockActionLogRepo()
	svc := bulkService(repo, nil, config.PartialFailureIgnore)

	targets := []string{"p1", "p2", "p3", "p4", "p5"}
	result, err := svc.CreateBulk(context.Background(), validBulkRequest(targets))
	require.NoError(t, err)

	assert.Len(t, repo.summaries, 1)
	assert.Len(t, repo.logs, 5)
	assert.Equal(t, 5, result.CreatedCount)
	assert.Equal(t, 5, result.Summary.TargetCount)
	assert.Empty(t, result.FailedTargets)
	for _, log := range repo.logs {
		assert.True(t, log.FromBulk)
		require.NotNil(t, log.BulkID)
		assert.Equal(t, "bulk-1", *log.BulkID)
	}
}

func TestBulkRejectsEmptyTargets(t *testing.T) {
	repo := newMockActionLogRepo()
	svc := bulkService(repo, nil, config.PartialFailureIgnore)

	_, err := svc.CreateBulk(context.Background(), validBulkRequest(nil))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoTargets.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.summaries, "summary must not be written for an empty selection")
}

func TestBulkAllActiveResolvesTargets(t *testing.T) {
	repo := newMockActionLogRepo()
	svc := bulkService(repo, []string{"p1", "p2"}, config.PartialFailureIgnore)

	req := validBulkRequest(nil)
	req.AllActive = true
	result, err := svc.CreateBulk(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedCount)
	assert.ElementsMatch(t, []string{"p1", "p2"}, result.Summary.TargetIDs)
}

func TestBulkIgnorePolicyKeepsPartialResults(t *testing.T) {
	repo := newMockActionLogRepo()
	repo.failFor["p2"] = errors.New("insert failed")
	svc := bulkService(repo, nil, config.PartialFailureIgnore)

	result, err := svc.CreateBulk(context.Background(), validBulkRequest([]string{"p1", "p2", "p3"}))
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Equal(t, []string{"p2"}, result.FailedTargets)
	assert.Len(t, repo.logs, 2)
	assert.Empty(t, repo.deleted)
}

func TestBulkFailPolicyRollsBack(t *testing.T) {
	repo := newMockActionLogRepo()
	repo.failFor["p2"] = errors.New("insert failed")
	svc := bulkService(repo, nil, config.PartialFailureFail)

	_, err := svc.CreateBulk(context.Background(), validBulkRequest([]string{"p1", "p2", "p3"}))
	require.Error(t, err)
	assert.Equal(t, []string{"bulk-1"}, repo.deleted)
	assert.Empty(t, repo.logs, "per-plant records must be rolled back")
}

func TestBulkRejectsOverTargetLimit(t *testing.T) {
	repo := newMockActionLogRepo()
	envs := &mockEnvResolver{envs: map[string]*models.Environment{"env-1": {ID: "env-1"}}}
	cfg := config.BulkActionsConfig{OnPartialFailure: config.PartialFailureIgnore, MaxTargets: 2}
	svc := NewActionLogService(repo, envs, &mockPlantIDs{}, cfg, nil, nil)

	_, err := svc.CreateBulk(context.Background(), validBulkRequest([]string{"p1", "p2", "p3"}))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBulkMissingEnvironment(t *testing.T) {
	repo := newMockActionLogRepo()
	svc := bulkService(repo, nil, config.PartialFailureIgnore)

	req := validBulkRequest([]string{"p1"})
	req.EnvironmentID = "missing"
	_, err := svc.CreateBulk(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingOwner.Code, appErrors.FromError(err).Code)
}
