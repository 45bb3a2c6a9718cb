package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type plantRepository interface {
	List(ctx context.Context, filter models.PlantFilter) ([]models.Plant, int, error)
	GetByID(ctx context.Context, id string) (*models.Plant, error)
	GetByControlNumber(ctx context.Context, controlNumber string) (*models.Plant, error)
	Create(ctx context.Context, plant *models.Plant) error
	CreateBatch(ctx context.Context, plants []*models.Plant) error
	Update(ctx context.Context, plant *models.Plant) error
	Delete(ctx context.Context, id string) error
}

type environmentResolver interface {
	GetByID(ctx context.Context, id string) (*models.Environment, error)
}

// PlantService handles individual plants and clone batches.
type PlantService struct {
	repo         plantRepository
	environments environmentResolver
	numbering    *NumberingService
	invalidator  reportInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewPlantService constructs the service.
func NewPlantService(repo plantRepository, environments environmentResolver, numbering *NumberingService, invalidator reportInvalidator, validate *validator.Validate, logger *zap.Logger) *PlantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlantService{repo: repo, environments: environments, numbering: numbering, invalidator: invalidator, validator: validate, logger: logger}
}

// PlantListRequest describes filters for listing plants.
type PlantListRequest struct {
	EnvironmentID string `json:"environment_id"`
	StrainID      string `json:"strain_id"`
	Stage         string `json:"stage"`
	BatchID       string `json:"batch_id"`
	Search        string `json:"search"`
	Page          int    `json:"page"`
	PageSize      int    `json:"page_size"`
}

// CreatePlantRequest describes the create payload for a single plant.
type CreatePlantRequest struct {
	EnvironmentID string     `json:"environment_id" validate:"required"`
	StrainID      string     `json:"strain_id" validate:"required"`
	Source        string     `json:"source" validate:"required,oneof=seed clone"`
	MotherID      *string    `json:"mother_id"`
	PlantedAt     *time.Time `json:"planted_at"`
	Notes         string     `json:"notes"`
	CreatedBy     string     `json:"created_by" validate:"required"`
}

// CloneBatchRequest describes the payload for creating sibling clones.
type CloneBatchRequest struct {
	EnvironmentID string     `json:"environment_id" validate:"required"`
	StrainID      string     `json:"strain_id" validate:"required"`
	MotherID      *string    `json:"mother_id"`
	Count         int        `json:"count" validate:"required,min=1,max=500"`
	PlantedAt     *time.Time `json:"planted_at"`
	Notes         string     `json:"notes"`
	CreatedBy     string     `json:"created_by" validate:"required"`
}

// UpdatePlantRequest describes the update payload. The control number and
// environment are immutable.
type UpdatePlantRequest struct {
	StrainID  string     `json:"strain_id" validate:"required"`
	Stage     string     `json:"stage" validate:"required,oneof=seedling vegetative flowering harvested destroyed"`
	PlantedAt *time.Time `json:"planted_at"`
	Notes     string     `json:"notes"`
}

// List returns plants with pagination.
func (s *PlantService) List(ctx context.Context, req PlantListRequest) ([]models.Plant, *models.Pagination, error) {
	filter := models.PlantFilter{
		EnvironmentID: req.EnvironmentID,
		StrainID:      req.StrainID,
		BatchID:       req.BatchID,
		Search:        req.Search,
		Page:          req.Page,
		PageSize:      req.PageSize,
	}
	if req.Stage != "" {
		stage := models.PlantStage(req.Stage)
		filter.Stage = &stage
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	plants, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plants")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return plants, pagination, nil
}

// Get fetches one plant by id, falling back to control number lookup so the
// scanner flow can resolve printed labels directly.
func (s *PlantService) Get(ctx context.Context, idOrNumber string) (*models.Plant, error) {
	plant, err := s.repo.GetByID(ctx, idOrNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get plant")
	}
	if plant == nil {
		plant, err = s.repo.GetByControlNumber(ctx, idOrNumber)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get plant")
		}
	}
	if plant == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "plant not found")
	}
	return plant, nil
}

// Create adds one plant. The control number is reserved from the
// environment's plant counter; a missing environment aborts before any
// counter value is consumed.
func (s *PlantService) Create(ctx context.Context, req CreatePlantRequest) (*models.Plant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.requireEnvironment(ctx, req.EnvironmentID); err != nil {
		return nil, err
	}
	number, _, err := s.numbering.NextPlantNumber(ctx, req.EnvironmentID)
	if err != nil {
		return nil, err
	}
	plant := &models.Plant{
		ControlNumber: number,
		EnvironmentID: req.EnvironmentID,
		StrainID:      req.StrainID,
		Stage:         models.StageSeedling,
		Source:        models.PlantSource(req.Source),
		MotherID:      req.MotherID,
		PlantedAt:     plantedOrNow(req.PlantedAt),
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
	}
	if err := s.repo.Create(ctx, plant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create plant")
	}
	s.invalidateReports(ctx)
	return plant, nil
}

// CreateCloneBatch creates count sibling clones in one shot. All numbers are
// reserved with a single counter increment and the inserts run in one
// transaction, so a batch either fully exists or not at all.
func (s *PlantService) CreateCloneBatch(ctx context.Context, req CloneBatchRequest) ([]models.Plant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.requireEnvironment(ctx, req.EnvironmentID); err != nil {
		return nil, err
	}
	numbers, err := s.numbering.NextCloneNumbers(ctx, req.EnvironmentID, req.Count)
	if err != nil {
		return nil, err
	}
	batchID := uuid.NewString()
	plantedAt := plantedOrNow(req.PlantedAt)
	plants := make([]*models.Plant, len(numbers))
	for i, number := range numbers {
		plants[i] = &models.Plant{
			ControlNumber: number,
			EnvironmentID: req.EnvironmentID,
			StrainID:      req.StrainID,
			Stage:         models.StageSeedling,
			Source:        models.SourceClone,
			MotherID:      req.MotherID,
			BatchID:       &batchID,
			PlantedAt:     plantedAt,
			Notes:         req.Notes,
			CreatedBy:     req.CreatedBy,
		}
	}
	if err := s.repo.CreateBatch(ctx, plants); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create clone batch")
	}
	s.invalidateReports(ctx)
	created := make([]models.Plant, len(plants))
	for i, plant := range plants {
		created[i] = *plant
	}
	return created, nil
}

// Update modifies plant details.
func (s *PlantService) Update(ctx context.Context, id string, req UpdatePlantRequest) (*models.Plant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	plant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get plant")
	}
	if plant == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "plant not found")
	}
	plant.StrainID = req.StrainID
	plant.Stage = models.PlantStage(req.Stage)
	if req.PlantedAt != nil {
		plant.PlantedAt = *req.PlantedAt
	}
	plant.Notes = req.Notes
	if err := s.repo.Update(ctx, plant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update plant")
	}
	s.invalidateReports(ctx)
	return plant, nil
}

// Delete removes a plant.
func (s *PlantService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete plant")
	}
	s.invalidateReports(ctx)
	return nil
}

func (s *PlantService) requireEnvironment(ctx context.Context, id string) error {
	env, err := s.environments.GetByID(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve environment")
	}
	if env == nil {
		return appErrors.Clone(appErrors.ErrMissingOwner, "environment not found")
	}
	return nil
}

func (s *PlantService) invalidateReports(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateReports(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}

func plantedOrNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now().UTC()
}
