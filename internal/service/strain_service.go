package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type strainRepository interface {
	List(ctx context.Context, filter models.StrainFilter) ([]models.Strain, int, error)
	GetByID(ctx context.Context, id string) (*models.Strain, error)
	Create(ctx context.Context, strain *models.Strain) error
	Update(ctx context.Context, strain *models.Strain) error
	Delete(ctx context.Context, id string) error
}

// StrainService handles the genetics catalogue.
type StrainService struct {
	repo      strainRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStrainService constructs the service.
func NewStrainService(repo strainRepository, validate *validator.Validate, logger *zap.Logger) *StrainService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrainService{repo: repo, validator: validate, logger: logger}
}

// StrainListRequest describes filters for listing strains.
type StrainListRequest struct {
	Type     string `json:"type"`
	Search   string `json:"search"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// StrainRequest describes the create and update payload.
type StrainRequest struct {
	Name          string  `json:"name" validate:"required"`
	Type          string  `json:"type" validate:"required,oneof=indica sativa hybrid"`
	THCPercent    float64 `json:"thc_percent" validate:"gte=0,lte=100"`
	CBDPercent    float64 `json:"cbd_percent" validate:"gte=0,lte=100"`
	FloweringDays int     `json:"flowering_days" validate:"gte=0"`
	Notes         string  `json:"notes"`
}

// List returns strains with pagination.
func (s *StrainService) List(ctx context.Context, req StrainListRequest) ([]models.Strain, *models.Pagination, error) {
	filter := models.StrainFilter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Type != "" {
		t := models.StrainType(req.Type)
		filter.Type = &t
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	strains, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list strains")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return strains, pagination, nil
}

// Get fetches one strain.
func (s *StrainService) Get(ctx context.Context, id string) (*models.Strain, error) {
	strain, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get strain")
	}
	if strain == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "strain not found")
	}
	return strain, nil
}

// Create adds a strain.
func (s *StrainService) Create(ctx context.Context, req StrainRequest) (*models.Strain, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	strain := &models.Strain{
		Name:          req.Name,
		Type:          models.StrainType(req.Type),
		THCPercent:    req.THCPercent,
		CBDPercent:    req.CBDPercent,
		FloweringDays: req.FloweringDays,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, strain); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create strain")
	}
	return strain, nil
}

// Update modifies a strain.
func (s *StrainService) Update(ctx context.Context, id string, req StrainRequest) (*models.Strain, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	strain, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	strain.Name = req.Name
	strain.Type = models.StrainType(req.Type)
	strain.THCPercent = req.THCPercent
	strain.CBDPercent = req.CBDPercent
	strain.FloweringDays = req.FloweringDays
	strain.Notes = req.Notes
	if err := s.repo.Update(ctx, strain); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update strain")
	}
	return strain, nil
}

// Delete removes a strain.
func (s *StrainService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete strain")
	}
	return nil
}
