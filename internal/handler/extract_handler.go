package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/service"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/response"
)

// ExtractHandler exposes extract processing endpoints.
type ExtractHandler struct {
	extracts *service.ExtractService
	metrics  *service.MetricsService
}

// NewExtractHandler constructs ExtractHandler.
func NewExtractHandler(extracts *service.ExtractService, metrics *service.MetricsService) *ExtractHandler {
	return &ExtractHandler{extracts: extracts, metrics: metrics}
}

// List godoc
// @Summary List extracts
// @Tags Extracts
// @Produce json
// @Param type query string false "Filter by extract type"
// @Param dateFrom query string false "Extracted from (RFC 3339 or date)"
// @Param dateTo query string false "Extracted to (RFC 3339 or date)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /extracts [get]
func (h *ExtractHandler) List(c *gin.Context) {
	req := service.ExtractListRequest{
		CreatedBy: c.Query("createdBy"),
		Type:      c.Query("type"),
		DateFrom:  queryTime(c, "dateFrom"),
		DateTo:    queryTime(c, "dateTo"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "limit", 50),
	}
	extracts, pagination, err := h.extracts.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, extracts, pagination)
}

// Get godoc
// @Summary Get extract detail with harvest inputs
// @Tags Extracts
// @Produce json
// @Param id path string true "Extract ID"
// @Success 200 {object} response.Envelope
// @Router /extracts/{id} [get]
func (h *ExtractHandler) Get(c *gin.Context) {
	extract, err := h.extracts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, extract, nil)
}

// Create godoc
// @Summary Create extract from one or more harvests
// @Tags Extracts
// @Accept json
// @Produce json
// @Param payload body service.CreateExtractRequest true "Extract payload"
// @Success 201 {object} response.Envelope
// @Router /extracts [post]
func (h *ExtractHandler) Create(c *gin.Context) {
	var req service.CreateExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.CreatedBy = currentUserID(c, req.CreatedBy)
	extract, err := h.extracts.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCreated("extract")
	}
	response.Created(c, extract)
}

// Delete godoc
// @Summary Delete extract and return its grams to the source harvests
// @Tags Extracts
// @Produce json
// @Param id path string true "Extract ID"
// @Success 204
// @Router /extracts/{id} [delete]
func (h *ExtractHandler) Delete(c *gin.Context) {
	if err := h.extracts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
