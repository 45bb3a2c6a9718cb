package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type distributionRepository interface {
	List(ctx context.Context, filter models.DistributionFilter) ([]models.Distribution, int, error)
	GetByID(ctx context.Context, id string) (*models.Distribution, error)
	Create(ctx context.Context, dist *models.Distribution) error
	Delete(ctx context.Context, id string) error
	SumForPatientMonth(ctx context.Context, patientID string, ref time.Time) (float64, error)
}

type harvestResolver interface {
	GetByID(ctx context.Context, id string) (*models.Harvest, error)
}

type patientResolver interface {
	GetByID(ctx context.Context, id string) (*models.Patient, error)
}

type userResolver interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// DistributionService hands harvest grams to patients.
type DistributionService struct {
	repo        distributionRepository
	harvests    harvestResolver
	patients    patientResolver
	users       userResolver
	numbering   *NumberingService
	invalidator reportInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewDistributionService constructs the service.
func NewDistributionService(repo distributionRepository, harvests harvestResolver, patients patientResolver, users userResolver, numbering *NumberingService, invalidator reportInvalidator, validate *validator.Validate, logger *zap.Logger) *DistributionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DistributionService{repo: repo, harvests: harvests, patients: patients, users: users, numbering: numbering, invalidator: invalidator, validator: validate, logger: logger}
}

// DistributionListRequest describes filters for listing distributions.
type DistributionListRequest struct {
	CreatedBy string     `json:"created_by"`
	HarvestID string     `json:"harvest_id"`
	PatientID string     `json:"patient_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}

// CreateDistributionRequest describes the create payload.
type CreateDistributionRequest struct {
	HarvestID     string     `json:"harvest_id" validate:"required"`
	PatientID     string     `json:"patient_id" validate:"required"`
	Grams         float64    `json:"grams" validate:"gt=0"`
	DistributedAt *time.Time `json:"distributed_at"`
	Notes         string     `json:"notes"`
	CreatedBy     string     `json:"created_by" validate:"required"`
}

// List returns distributions with pagination.
func (s *DistributionService) List(ctx context.Context, req DistributionListRequest) ([]models.Distribution, *models.Pagination, error) {
	filter := models.DistributionFilter{
		CreatedBy: req.CreatedBy,
		HarvestID: req.HarvestID,
		PatientID: req.PatientID,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	distributions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list distributions")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return distributions, pagination, nil
}

// Get fetches one distribution.
func (s *DistributionService) Get(ctx context.Context, id string) (*models.Distribution, error) {
	dist, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get distribution")
	}
	if dist == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "distribution not found")
	}
	return dist, nil
}

// Create records a distribution. The control number comes from the creating
// user's counter; the harvest's distributed ledger is charged atomically with
// the insert, and a patient over their monthly allotment is rejected.
func (s *DistributionService) Create(ctx context.Context, req CreateDistributionRequest) (*models.Distribution, error) {
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
	harvest, err := s.harvests.GetByID(ctx, req.HarvestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve harvest")
	}
	if harvest == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "harvest not found")
	}
	patient, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve patient")
	}
	if patient == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
	}
	if !patient.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "patient is inactive")
	}
	distributedAt := time.Now().UTC()
	if req.DistributedAt != nil {
		distributedAt = *req.DistributedAt
	}
	if patient.MonthlyAllotmentGrams > 0 {
		monthTotal, err := s.repo.SumForPatientMonth(ctx, patient.ID, distributedAt)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check patient allotment")
		}
		if monthTotal+req.Grams > patient.MonthlyAllotmentGrams {
			return nil, appErrors.Clone(appErrors.ErrConflict, "distribution exceeds the patient's monthly allotment")
		}
	}
	number, _, err := s.numbering.NextDistributionNumber(ctx, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	dist := &models.Distribution{
		ControlNumber: number,
		HarvestID:     req.HarvestID,
		PatientID:     req.PatientID,
		Grams:         req.Grams,
		DistributedAt: distributedAt,
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
	}
	if err := s.repo.Create(ctx, dist); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrLedgerExceeded.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create distribution")
	}
	s.invalidate(ctx)
	return dist, nil
}

// Delete removes a distribution and returns its grams to the harvest.
func (s *DistributionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete distribution")
	}
	s.invalidate(ctx)
	return nil
}

func (s *DistributionService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateReports(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}
