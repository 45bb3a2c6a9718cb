package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type orderRepository interface {
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
}

// OrderService handles patient product orders.
type OrderService struct {
	repo      orderRepository
	patients  patientResolver
	users     userResolver
	numbering *NumberingService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOrderService constructs the service.
func NewOrderService(repo orderRepository, patients patientResolver, users userResolver, numbering *NumberingService, validate *validator.Validate, logger *zap.Logger) *OrderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{repo: repo, patients: patients, users: users, numbering: numbering, validator: validate, logger: logger}
}

// OrderListRequest describes filters for listing orders.
type OrderListRequest struct {
	CreatedBy string     `json:"created_by"`
	PatientID string     `json:"patient_id"`
	Status    string     `json:"status"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}

// CreateOrderRequest describes the create payload.
type CreateOrderRequest struct {
	PatientID   string     `json:"patient_id" validate:"required"`
	ProductType string     `json:"product_type" validate:"required"`
	Grams       float64    `json:"grams" validate:"gt=0"`
	RequestedAt *time.Time `json:"requested_at"`
	Notes       string     `json:"notes"`
	CreatedBy   string     `json:"created_by" validate:"required"`
}

// UpdateOrderRequest describes the update payload.
type UpdateOrderRequest struct {
	ProductType string     `json:"product_type" validate:"required"`
	Grams       float64    `json:"grams" validate:"gt=0"`
	Status      string     `json:"status" validate:"required,oneof=pending fulfilled cancelled"`
	RequestedAt *time.Time `json:"requested_at"`
	Notes       string     `json:"notes"`
}

// List returns orders with pagination.
func (s *OrderService) List(ctx context.Context, req OrderListRequest) ([]models.Order, *models.Pagination, error) {
	filter := models.OrderFilter{
		CreatedBy: req.CreatedBy,
		PatientID: req.PatientID,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.Status != "" {
		status := models.OrderStatus(req.Status)
		filter.Status = &status
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list orders")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return orders, pagination, nil
}

// Get fetches one order.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get order")
	}
	if order == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "order not found")
	}
	return order, nil
}

// Create records an order against the creating user's order counter.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
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
	patient, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve patient")
	}
	if patient == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
	}
	number, _, err := s.numbering.NextOrderNumber(ctx, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	requestedAt := time.Now().UTC()
	if req.RequestedAt != nil {
		requestedAt = *req.RequestedAt
	}
	order := &models.Order{
		ControlNumber: number,
		PatientID:     req.PatientID,
		ProductType:   req.ProductType,
		Grams:         req.Grams,
		Status:        models.OrderPending,
		RequestedAt:   requestedAt,
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create order")
	}
	return order, nil
}

// Update modifies an order. Finished orders stay editable for corrections.
func (s *OrderService) Update(ctx context.Context, id string, req UpdateOrderRequest) (*models.Order, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	order.ProductType = req.ProductType
	order.Grams = req.Grams
	order.Status = models.OrderStatus(req.Status)
	if req.RequestedAt != nil {
		order.RequestedAt = *req.RequestedAt
	}
	order.Notes = req.Notes
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update order")
	}
	return order, nil
}

// Delete removes an order.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete order")
	}
	return nil
}
