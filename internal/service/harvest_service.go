package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type harvestRepository interface {
	List(ctx context.Context, filter models.HarvestFilter) ([]models.Harvest, int, error)
	GetByID(ctx context.Context, id string) (*models.Harvest, error)
	Create(ctx context.Context, harvest *models.Harvest) error
	Update(ctx context.Context, harvest *models.Harvest) error
	Delete(ctx context.Context, id string) error
}

type plantResolver interface {
	GetByID(ctx context.Context, id string) (*models.Plant, error)
	Update(ctx context.Context, plant *models.Plant) error
}

// HarvestService handles harvests and their weight ledgers.
type HarvestService struct {
	repo         harvestRepository
	environments environmentResolver
	plants       plantResolver
	numbering    *NumberingService
	invalidator  reportInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewHarvestService constructs the service.
func NewHarvestService(repo harvestRepository, environments environmentResolver, plants plantResolver, numbering *NumberingService, invalidator reportInvalidator, validate *validator.Validate, logger *zap.Logger) *HarvestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HarvestService{repo: repo, environments: environments, plants: plants, numbering: numbering, invalidator: invalidator, validator: validate, logger: logger}
}

// HarvestListRequest describes filters for listing harvests.
type HarvestListRequest struct {
	EnvironmentID string     `json:"environment_id"`
	PlantID       string     `json:"plant_id"`
	StrainID      string     `json:"strain_id"`
	DateFrom      *time.Time `json:"date_from"`
	DateTo        *time.Time `json:"date_to"`
	Page          int        `json:"page"`
	PageSize      int        `json:"page_size"`
}

// CreateHarvestRequest describes the create payload.
type CreateHarvestRequest struct {
	PlantID        string     `json:"plant_id" validate:"required"`
	HarvestedAt    *time.Time `json:"harvested_at"`
	WetWeightGrams float64    `json:"wet_weight_grams" validate:"gt=0"`
	DryWeightGrams float64    `json:"dry_weight_grams" validate:"gte=0"`
	Notes          string     `json:"notes"`
	CreatedBy      string     `json:"created_by" validate:"required"`
}

// UpdateHarvestRequest describes the update payload. Ledger totals are not
// editable; they move only through distributions and extracts.
type UpdateHarvestRequest struct {
	HarvestedAt    *time.Time `json:"harvested_at"`
	WetWeightGrams float64    `json:"wet_weight_grams" validate:"gt=0"`
	DryWeightGrams float64    `json:"dry_weight_grams" validate:"gte=0"`
	Notes          string     `json:"notes"`
}

// List returns harvests with pagination.
func (s *HarvestService) List(ctx context.Context, req HarvestListRequest) ([]models.Harvest, *models.Pagination, error) {
	filter := models.HarvestFilter{
		EnvironmentID: req.EnvironmentID,
		PlantID:       req.PlantID,
		StrainID:      req.StrainID,
		DateFrom:      req.DateFrom,
		DateTo:        req.DateTo,
		Page:          req.Page,
		PageSize:      req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	harvests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list harvests")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return harvests, pagination, nil
}

// Get fetches one harvest.
func (s *HarvestService) Get(ctx context.Context, id string) (*models.Harvest, error) {
	harvest, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get harvest")
	}
	if harvest == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "harvest not found")
	}
	return harvest, nil
}

// Create records a harvest from a plant. The harvest inherits environment and
// strain from the plant, takes its number from the environment's harvest
// counter and moves the plant to the harvested stage.
func (s *HarvestService) Create(ctx context.Context, req CreateHarvestRequest) (*models.Harvest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	plant, err := s.plants.GetByID(ctx, req.PlantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve plant")
	}
	if plant == nil {
		return nil, appErrors.Clone(appErrors.ErrMissingOwner, "plant not found")
	}
	env, err := s.environments.GetByID(ctx, plant.EnvironmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve environment")
	}
	if env == nil {
		return nil, appErrors.Clone(appErrors.ErrMissingOwner, "environment not found")
	}
	if req.DryWeightGrams > req.WetWeightGrams {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dry weight cannot exceed wet weight")
	}
	number, _, err := s.numbering.NextHarvestNumber(ctx, plant.EnvironmentID)
	if err != nil {
		return nil, err
	}
	harvestedAt := time.Now().UTC()
	if req.HarvestedAt != nil {
		harvestedAt = *req.HarvestedAt
	}
	harvest := &models.Harvest{
		ControlNumber:  number,
		EnvironmentID:  plant.EnvironmentID,
		PlantID:        plant.ID,
		StrainID:       plant.StrainID,
		HarvestedAt:    harvestedAt,
		WetWeightGrams: req.WetWeightGrams,
		DryWeightGrams: req.DryWeightGrams,
		Notes:          req.Notes,
		CreatedBy:      req.CreatedBy,
	}
	if err := s.repo.Create(ctx, harvest); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create harvest")
	}
	if plant.Stage != models.StageHarvested {
		plant.Stage = models.StageHarvested
		if err := s.plants.Update(ctx, plant); err != nil {
			s.logger.Warn("failed to move plant to harvested stage", zap.String("plant_id", plant.ID), zap.Error(err))
		}
	}
	s.invalidate(ctx)
	return harvest, nil
}

// Update modifies harvest weights and notes. Shrinking the dry weight below
// what is already committed to distributions and extracts is rejected.
func (s *HarvestService) Update(ctx context.Context, id string, req UpdateHarvestRequest) (*models.Harvest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	harvest, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DryWeightGrams > req.WetWeightGrams {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dry weight cannot exceed wet weight")
	}
	if harvest.DistributedGrams+harvest.ExtractedGrams > req.DryWeightGrams {
		return nil, appErrors.Clone(appErrors.ErrLedgerExceeded, "dry weight cannot drop below committed grams")
	}
	if req.HarvestedAt != nil {
		harvest.HarvestedAt = *req.HarvestedAt
	}
	harvest.WetWeightGrams = req.WetWeightGrams
	harvest.DryWeightGrams = req.DryWeightGrams
	harvest.Notes = req.Notes
	if err := s.repo.Update(ctx, harvest); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update harvest")
	}
	s.invalidate(ctx)
	return harvest, nil
}

// Delete removes a harvest. A harvest with committed grams cannot be removed
// until its distributions and extracts are deleted first.
func (s *HarvestService) Delete(ctx context.Context, id string) error {
	harvest, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if harvest.DistributedGrams > 0 || harvest.ExtractedGrams > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "harvest has committed grams")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete harvest")
	}
	s.invalidate(ctx)
	return nil
}

func (s *HarvestService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateReports(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}
