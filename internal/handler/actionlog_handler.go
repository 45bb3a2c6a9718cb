package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/service"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/response"
)

// ActionLogHandler exposes cultivation action endpoints, including the bulk
// fan-out.
type ActionLogHandler struct {
	actions *service.ActionLogService
	metrics *service.MetricsService
}

// NewActionLogHandler constructs ActionLogHandler.
func NewActionLogHandler(actions *service.ActionLogService, metrics *service.MetricsService) *ActionLogHandler {
	return &ActionLogHandler{actions: actions, metrics: metrics}
}

// List godoc
// @Summary List action logs
// @Tags Actions
// @Produce json
// @Param environmentId query string false "Filter by environment"
// @Param plantId query string false "Filter by plant"
// @Param action query string false "Filter by action type"
// @Param dateFrom query string false "Performed from (RFC 3339 or date)"
// @Param dateTo query string false "Performed to (RFC 3339 or date)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /action-logs [get]
func (h *ActionLogHandler) List(c *gin.Context) {
	req := service.ActionLogListRequest{
		EnvironmentID: c.Query("environmentId"),
		PlantID:       c.Query("plantId"),
		Action:        c.Query("action"),
		DateFrom:      queryTime(c, "dateFrom"),
		DateTo:        queryTime(c, "dateTo"),
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "limit", 50),
	}
	logs, pagination, err := h.actions.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}

// ListForPlant godoc
// @Summary Action history for one plant
// @Tags Actions
// @Produce json
// @Param id path string true "Plant ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /plants/{id}/action-logs [get]
func (h *ActionLogHandler) ListForPlant(c *gin.Context) {
	req := service.ActionLogListRequest{
		PlantID:  c.Param("id"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 50),
	}
	logs, pagination, err := h.actions.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}

// Create godoc
// @Summary Record a single-plant action
// @Tags Actions
// @Accept json
// @Produce json
// @Param payload body service.CreateActionLogRequest true "Action payload"
// @Success 201 {object} response.Envelope
// @Router /action-logs [post]
func (h *ActionLogHandler) Create(c *gin.Context) {
	var req service.CreateActionLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.PerformedBy = currentUserID(c, req.PerformedBy)
	log, err := h.actions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCreated("action")
	}
	response.Created(c, log)
}

// CreateBulk godoc
// @Summary Apply one action to many plants
// @Tags Actions
// @Accept json
// @Produce json
// @Param payload body service.BulkActionRequest true "Bulk action payload"
// @Success 201 {object} response.Envelope
// @Router /action-logs/bulk [post]
func (h *ActionLogHandler) CreateBulk(c *gin.Context) {
	var req service.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.PerformedBy = currentUserID(c, req.PerformedBy)
	result, err := h.actions.CreateBulk(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordBulkAction(result.CreatedCount)
	}
	response.Created(c, result)
}

// ListBulk godoc
// @Summary List bulk action summaries
// @Tags Actions
// @Produce json
// @Param environmentId query string false "Filter by environment"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /action-logs/bulk [get]
func (h *ActionLogHandler) ListBulk(c *gin.Context) {
	bulks, pagination, err := h.actions.ListBulk(c.Request.Context(), c.Query("environmentId"), queryInt(c, "page", 1), queryInt(c, "limit", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bulks, pagination)
}

// GetBulk godoc
// @Summary Get one bulk action summary
// @Tags Actions
// @Produce json
// @Param id path string true "Bulk action ID"
// @Success 200 {object} response.Envelope
// @Router /action-logs/bulk/{id} [get]
func (h *ActionLogHandler) GetBulk(c *gin.Context) {
	bulk, err := h.actions.GetBulk(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bulk, nil)
}
