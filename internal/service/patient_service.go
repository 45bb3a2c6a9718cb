package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type patientRepository interface {
	List(ctx context.Context, filter models.PatientFilter) ([]models.Patient, int, error)
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	Create(ctx context.Context, patient *models.Patient) error
	Update(ctx context.Context, patient *models.Patient) error
	Delete(ctx context.Context, id string) error
}

// PatientService handles the patient registry.
type PatientService struct {
	repo      patientRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPatientService constructs the service.
func NewPatientService(repo patientRepository, validate *validator.Validate, logger *zap.Logger) *PatientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatientService{repo: repo, validator: validate, logger: logger}
}

// PatientListRequest describes filters for listing patients.
type PatientListRequest struct {
	Active   *bool  `json:"active"`
	Search   string `json:"search"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// PatientRequest describes the create and update payload.
type PatientRequest struct {
	FullName              string  `json:"full_name" validate:"required"`
	RegistryNumber        string  `json:"registry_number" validate:"required"`
	MonthlyAllotmentGrams float64 `json:"monthly_allotment_grams" validate:"gte=0"`
	Active                *bool   `json:"active"`
	Notes                 string  `json:"notes"`
}

// List returns patients with pagination.
func (s *PatientService) List(ctx context.Context, req PatientListRequest) ([]models.Patient, *models.Pagination, error) {
	filter := models.PatientFilter{
		Active:   req.Active,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	patients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list patients")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return patients, pagination, nil
}

// Get fetches one patient.
func (s *PatientService) Get(ctx context.Context, id string) (*models.Patient, error) {
	patient, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get patient")
	}
	if patient == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
	}
	return patient, nil
}

// Create registers a patient.
func (s *PatientService) Create(ctx context.Context, req PatientRequest) (*models.Patient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	patient := &models.Patient{
		FullName:              req.FullName,
		RegistryNumber:        req.RegistryNumber,
		MonthlyAllotmentGrams: req.MonthlyAllotmentGrams,
		Active:                true,
		Notes:                 req.Notes,
	}
	if req.Active != nil {
		patient.Active = *req.Active
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create patient")
	}
	return patient, nil
}

// Update modifies a patient.
func (s *PatientService) Update(ctx context.Context, id string, req PatientRequest) (*models.Patient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patient.FullName = req.FullName
	patient.RegistryNumber = req.RegistryNumber
	patient.MonthlyAllotmentGrams = req.MonthlyAllotmentGrams
	patient.Notes = req.Notes
	if req.Active != nil {
		patient.Active = *req.Active
	}
	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update patient")
	}
	return patient, nil
}

// Delete removes a patient.
func (s *PatientService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete patient")
	}
	return nil
}
