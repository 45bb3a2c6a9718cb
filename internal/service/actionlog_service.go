package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verdantiq/cultiva-api/internal/models"
	"github.com/verdantiq/cultiva-api/pkg/config"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type actionLogRepository interface {
	List(ctx context.Context, filter models.ActionLogFilter) ([]models.ActionLog, int, error)
	Create(ctx context.Context, log *models.ActionLog) error
	CreateBulkSummary(ctx context.Context, bulk *models.BulkActionLog) error
	GetBulkByID(ctx context.Context, id string) (*models.BulkActionLog, error)
	ListBulk(ctx context.Context, environmentID string, page, pageSize int) ([]models.BulkActionLog, int, error)
	DeleteByBulkID(ctx context.Context, bulkID string) (int64, error)
}

type plantIDLister interface {
	ListIDsByEnvironment(ctx context.Context, environmentID string, stages []models.PlantStage) ([]string, error)
}

// bulkFanOutWorkers bounds concurrent per-plant inserts during a bulk action.
const bulkFanOutWorkers = 8

// ActionLogService records cultivation actions, individually and as bulk
// fan-outs across many plants.
type ActionLogService struct {
	repo         actionLogRepository
	environments environmentResolver
	plantIDs     plantIDLister
	cfg          config.BulkActionsConfig
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewActionLogService constructs the service.
func NewActionLogService(repo actionLogRepository, environments environmentResolver, plantIDs plantIDLister, cfg config.BulkActionsConfig, validate *validator.Validate, logger *zap.Logger) *ActionLogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActionLogService{repo: repo, environments: environments, plantIDs: plantIDs, cfg: cfg, validator: validate, logger: logger}
}

// ActionLogListRequest describes filters for listing action logs.
type ActionLogListRequest struct {
	EnvironmentID string     `json:"environment_id"`
	PlantID       string     `json:"plant_id"`
	Action        string     `json:"action"`
	DateFrom      *time.Time `json:"date_from"`
	DateTo        *time.Time `json:"date_to"`
	Page          int        `json:"page"`
	PageSize      int        `json:"page_size"`
}

// CreateActionLogRequest describes a single-plant action.
type CreateActionLogRequest struct {
	EnvironmentID string     `json:"environment_id" validate:"required"`
	PlantID       string     `json:"plant_id" validate:"required"`
	Action        string     `json:"action" validate:"required,oneof=watering feeding pruning treatment transplant note"`
	Product       string     `json:"product"`
	Amount        float64    `json:"amount" validate:"gte=0"`
	Notes         string     `json:"notes"`
	PerformedAt   *time.Time `json:"performed_at"`
	PerformedBy   string     `json:"performed_by" validate:"required"`
}

// BulkActionRequest describes one action applied to many plants. Either an
// explicit target list or AllActive selects the targets; both empty is
// rejected.
type BulkActionRequest struct {
	EnvironmentID string     `json:"environment_id" validate:"required"`
	Action        string     `json:"action" validate:"required,oneof=watering feeding pruning treatment transplant note"`
	Product       string     `json:"product"`
	Amount        float64    `json:"amount" validate:"gte=0"`
	Notes         string     `json:"notes"`
	PerformedAt   *time.Time `json:"performed_at"`
	PerformedBy   string     `json:"performed_by" validate:"required"`
	PlantIDs      []string   `json:"plant_ids"`
	AllActive     bool       `json:"all_active"`
}

// BulkActionResult reports the outcome of a fan-out.
type BulkActionResult struct {
	Summary       *models.BulkActionLog `json:"summary"`
	CreatedCount  int                   `json:"created_count"`
	FailedTargets []string              `json:"failed_targets,omitempty"`
}

// List returns action logs with pagination.
func (s *ActionLogService) List(ctx context.Context, req ActionLogListRequest) ([]models.ActionLog, *models.Pagination, error) {
	filter := models.ActionLogFilter{
		EnvironmentID: req.EnvironmentID,
		PlantID:       req.PlantID,
		DateFrom:      req.DateFrom,
		DateTo:        req.DateTo,
		Page:          req.Page,
		PageSize:      req.PageSize,
	}
	if req.Action != "" {
		action := models.ActionType(req.Action)
		filter.Action = &action
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list action logs")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return logs, pagination, nil
}

// Create records one action against one plant.
func (s *ActionLogService) Create(ctx context.Context, req CreateActionLogRequest) (*models.ActionLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	log := &models.ActionLog{
		EnvironmentID: req.EnvironmentID,
		PlantID:       req.PlantID,
		Action:        models.ActionType(req.Action),
		Product:       req.Product,
		Amount:        req.Amount,
		Notes:         req.Notes,
		PerformedAt:   performedOrNow(req.PerformedAt),
		PerformedBy:   req.PerformedBy,
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create action log")
	}
	return log, nil
}

// CreateBulk applies one action to many plants. The summary record is written
// synchronously before fan-out so the intent survives a crash; per-plant
// records are then inserted concurrently. Partial failure handling follows
// the configured policy: "ignore" keeps whatever succeeded and reports the
// failed targets, "fail" rolls the per-plant records back and errors.
func (s *ActionLogService) CreateBulk(ctx context.Context, req BulkActionRequest) (*BulkActionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	env, err := s.environments.GetByID(ctx, req.EnvironmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve environment")
	}
	if env == nil {
		return nil, appErrors.Clone(appErrors.ErrMissingOwner, "environment not found")
	}
	targets := req.PlantIDs
	if req.AllActive {
		targets, err = s.plantIDs.ListIDsByEnvironment(ctx, req.EnvironmentID,
			[]models.PlantStage{models.StageSeedling, models.StageVegetative, models.StageFlowering})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve active plants")
		}
	}
	if len(targets) == 0 {
		return nil, appErrors.ErrNoTargets
	}
	if s.cfg.MaxTargets > 0 && len(targets) > s.cfg.MaxTargets {
		return nil, appErrors.Clone(appErrors.ErrValidation, "bulk action exceeds the target limit")
	}

	performedAt := performedOrNow(req.PerformedAt)
	summary := &models.BulkActionLog{
		EnvironmentID: req.EnvironmentID,
		Action:        models.ActionType(req.Action),
		Product:       req.Product,
		Amount:        req.Amount,
		Notes:         req.Notes,
		PerformedAt:   performedAt,
		PerformedBy:   req.PerformedBy,
		TargetIDs:     targets,
	}
	if err := s.repo.CreateBulkSummary(ctx, summary); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create bulk action summary")
	}

	var mu sync.Mutex
	var failed []string
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkFanOutWorkers)
	for _, plantID := range targets {
		plantID := plantID
		g.Go(func() error {
			log := &models.ActionLog{
				EnvironmentID: req.EnvironmentID,
				PlantID:       plantID,
				Action:        models.ActionType(req.Action),
				Product:       req.Product,
				Amount:        req.Amount,
				Notes:         req.Notes,
				PerformedAt:   performedAt,
				PerformedBy:   req.PerformedBy,
				FromBulk:      true,
				BulkID:        &summary.ID,
			}
			if err := s.repo.Create(gctx, log); err != nil {
				s.logger.Warn("bulk action target failed",
					zap.String("bulk_id", summary.ID), zap.String("plant_id", plantID), zap.Error(err))
				mu.Lock()
				failed = append(failed, plantID)
				mu.Unlock()
				if s.cfg.OnPartialFailure == config.PartialFailureFail {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if _, delErr := s.repo.DeleteByBulkID(ctx, summary.ID); delErr != nil {
			s.logger.Error("failed to roll back bulk action records",
				zap.String("bulk_id", summary.ID), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "bulk action aborted on target failure")
	}

	result := &BulkActionResult{
		Summary:       summary,
		CreatedCount:  len(targets) - len(failed),
		FailedTargets: failed,
	}
	return result, nil
}

// GetBulk fetches one bulk summary.
func (s *ActionLogService) GetBulk(ctx context.Context, id string) (*models.BulkActionLog, error) {
	bulk, err := s.repo.GetBulkByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get bulk action")
	}
	if bulk == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "bulk action not found")
	}
	return bulk, nil
}

// ListBulk returns bulk summaries for an environment.
func (s *ActionLogService) ListBulk(ctx context.Context, environmentID string, page, pageSize int) ([]models.BulkActionLog, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	bulks, total, err := s.repo.ListBulk(ctx, environmentID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bulk actions")
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return bulks, pagination, nil
}

func performedOrNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now().UTC()
}
