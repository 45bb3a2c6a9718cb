package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type extractRepository interface {
	List(ctx context.Context, filter models.ExtractFilter) ([]models.Extract, int, error)
	GetByID(ctx context.Context, id string) (*models.Extract, error)
	Create(ctx context.Context, extract *models.Extract) error
	Delete(ctx context.Context, id string) error
}

// ExtractService turns harvest grams into concentrates.
type ExtractService struct {
	repo        extractRepository
	harvests    harvestResolver
	users       userResolver
	numbering   *NumberingService
	invalidator reportInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewExtractService constructs the service.
func NewExtractService(repo extractRepository, harvests harvestResolver, users userResolver, numbering *NumberingService, invalidator reportInvalidator, validate *validator.Validate, logger *zap.Logger) *ExtractService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractService{repo: repo, harvests: harvests, users: users, numbering: numbering, invalidator: invalidator, validator: validate, logger: logger}
}

// ExtractListRequest describes filters for listing extracts.
type ExtractListRequest struct {
	CreatedBy string     `json:"created_by"`
	Type      string     `json:"type"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}

// ExtractInputRequest is one harvest draw inside a create payload.
type ExtractInputRequest struct {
	HarvestID  string  `json:"harvest_id" validate:"required"`
	InputGrams float64 `json:"input_grams" validate:"gt=0"`
}

// CreateExtractRequest describes the create payload.
type CreateExtractRequest struct {
	Type        string                `json:"type" validate:"required,oneof=oil tincture concentrate edible"`
	OutputGrams float64               `json:"output_grams" validate:"gt=0"`
	ExtractedAt *time.Time            `json:"extracted_at"`
	Inputs      []ExtractInputRequest `json:"inputs" validate:"required,min=1,dive"`
	Notes       string                `json:"notes"`
	CreatedBy   string                `json:"created_by" validate:"required"`
}

// List returns extracts with pagination.
func (s *ExtractService) List(ctx context.Context, req ExtractListRequest) ([]models.Extract, *models.Pagination, error) {
	filter := models.ExtractFilter{
		CreatedBy: req.CreatedBy,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.Type != "" {
		t := models.ExtractType(req.Type)
		filter.Type = &t
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	extracts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list extracts")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return extracts, pagination, nil
}

// Get fetches one extract with its inputs.
func (s *ExtractService) Get(ctx context.Context, id string) (*models.Extract, error) {
	extract, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get extract")
	}
	if extract == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "extract not found")
	}
	return extract, nil
}

// Create records an extract drawing from one or more harvests. The control
// number comes from the creating user's counter; all ledger charges land in
// one transaction so a single over-drawn harvest aborts the whole extract.
func (s *ExtractService) Create(ctx context.Context, req CreateExtractRequest) (*models.Extract, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	user, err := s.users.GetByID(ctx, req.CreatedBy)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve user")
	}
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrMissingOwner, "user not found")
	}
	seen := make(map[string]bool, len(req.Inputs))
	for _, input := range req.Inputs {
		if seen[input.HarvestID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate harvest in extract inputs")
		}
		seen[input.HarvestID] = true
		harvest, err := s.harvests.GetByID(ctx, input.HarvestID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve harvest")
		}
		if harvest == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "harvest not found")
		}
	}
	number, _, err := s.numbering.NextExtractNumber(ctx, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	extractedAt := time.Now().UTC()
	if req.ExtractedAt != nil {
		extractedAt = *req.ExtractedAt
	}
	extract := &models.Extract{
		ControlNumber: number,
		Type:          models.ExtractType(req.Type),
		OutputGrams:   req.OutputGrams,
		ExtractedAt:   extractedAt,
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
		Inputs:        make([]models.ExtractInput, len(req.Inputs)),
	}
	for i, input := range req.Inputs {
		extract.Inputs[i] = models.ExtractInput{HarvestID: input.HarvestID, InputGrams: input.InputGrams}
	}
	if err := s.repo.Create(ctx, extract); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrLedgerExceeded.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create extract")
	}
	s.invalidate(ctx)
	return extract, nil
}

// Delete removes an extract and returns its input grams to the source
// harvests.
func (s *ExtractService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete extract")
	}
	s.invalidate(ctx)
	return nil
}

func (s *ExtractService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateReports(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}
