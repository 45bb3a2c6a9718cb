package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type environmentRepository interface {
	List(ctx context.Context, filter models.EnvironmentFilter) ([]models.Environment, int, error)
	GetByID(ctx context.Context, id string) (*models.Environment, error)
	Create(ctx context.Context, env *models.Environment) error
	Update(ctx context.Context, env *models.Environment) error
	Delete(ctx context.Context, id string) error
}

// EnvironmentService handles growing environments.
type EnvironmentService struct {
	repo      environmentRepository
	numbering *NumberingService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnvironmentService constructs the service.
func NewEnvironmentService(repo environmentRepository, numbering *NumberingService, validate *validator.Validate, logger *zap.Logger) *EnvironmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnvironmentService{repo: repo, numbering: numbering, validator: validate, logger: logger}
}

// EnvironmentListRequest describes filters for listing environments.
type EnvironmentListRequest struct {
	OwnerID  string `json:"owner_id"`
	Type     string `json:"type"`
	Active   *bool  `json:"active"`
	Search   string `json:"search"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// CreateEnvironmentRequest describes the create payload.
type CreateEnvironmentRequest struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=indoor outdoor greenhouse"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id" validate:"required"`
}

// UpdateEnvironmentRequest describes the update payload.
type UpdateEnvironmentRequest struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=indoor outdoor greenhouse"`
	Description string `json:"description"`
	Active      *bool  `json:"active" validate:"required"`
}

// List returns environments with pagination.
func (s *EnvironmentService) List(ctx context.Context, req EnvironmentListRequest) ([]models.Environment, *models.Pagination, error) {
	filter := models.EnvironmentFilter{
		OwnerID:  req.OwnerID,
		Active:   req.Active,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Type != "" {
		t := models.EnvironmentType(req.Type)
		filter.Type = &t
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	environments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list environments")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return environments, pagination, nil
}

// Get fetches one environment.
func (s *EnvironmentService) Get(ctx context.Context, id string) (*models.Environment, error) {
	env, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get environment")
	}
	if env == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "environment not found")
	}
	return env, nil
}

// Create adds an environment.
func (s *EnvironmentService) Create(ctx context.Context, req CreateEnvironmentRequest) (*models.Environment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	env := &models.Environment{
		Name:        req.Name,
		Type:        models.EnvironmentType(req.Type),
		Description: req.Description,
		OwnerID:     req.OwnerID,
		Active:      true,
	}
	if err := s.repo.Create(ctx, env); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create environment")
	}
	return env, nil
}

// Update modifies an environment.
func (s *EnvironmentService) Update(ctx context.Context, id string, req UpdateEnvironmentRequest) (*models.Environment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	env, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	env.Name = req.Name
	env.Type = models.EnvironmentType(req.Type)
	env.Description = req.Description
	if req.Active != nil {
		env.Active = *req.Active
	}
	if err := s.repo.Update(ctx, env); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update environment")
	}
	return env, nil
}

// Delete removes an environment.
func (s *EnvironmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete environment")
	}
	return nil
}

// NextNumbers previews the next plant and harvest sequence values for an
// environment without reserving them.
func (s *EnvironmentService) NextNumbers(ctx context.Context, id string) (*models.NextNumbersPreview, error) {
	env, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get environment")
	}
	if env == nil {
		return nil, appErrors.Clone(appErrors.ErrMissingOwner, "environment not found")
	}
	return s.numbering.Preview(ctx, id)
}
