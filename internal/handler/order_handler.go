package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/service"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/response"
)

// OrderHandler exposes patient order endpoints.
type OrderHandler struct {
	orders  *service.OrderService
	metrics *service.MetricsService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *service.OrderService, metrics *service.MetricsService) *OrderHandler {
	return &OrderHandler{orders: orders, metrics: metrics}
}

// List godoc
// @Summary List orders
// @Tags Orders
// @Produce json
// @Param patientId query string false "Filter by patient"
// @Param status query string false "Filter by status"
// @Param dateFrom query string false "Requested from (RFC 3339 or date)"
// @Param dateTo query string false "Requested to (RFC 3339 or date)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	req := service.OrderListRequest{
		CreatedBy: c.Query("createdBy"),
		PatientID: c.Query("patientId"),
		Status:    c.Query("status"),
		DateFrom:  queryTime(c, "dateFrom"),
		DateTo:    queryTime(c, "dateTo"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "limit", 50),
	}
	orders, pagination, err := h.orders.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders, pagination)
}

// Get godoc
// @Summary Get order detail
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// Create godoc
// @Summary Create order
// @Tags Orders
// @Accept json
// @Produce json
// @Param payload body service.CreateOrderRequest true "Order payload"
// @Success 201 {object} response.Envelope
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.CreatedBy = currentUserID(c, req.CreatedBy)
	order, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCreated("order")
	}
	response.Created(c, order)
}

// Update godoc
// @Summary Update order details and status
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param payload body service.UpdateOrderRequest true "Order payload"
// @Success 200 {object} response.Envelope
// @Router /orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	order, err := h.orders.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// Delete godoc
// @Summary Delete order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 204
// @Router /orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
