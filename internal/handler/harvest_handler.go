package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/service"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/response"
)

// HarvestHandler exposes harvest endpoints.
type HarvestHandler struct {
	harvests *service.HarvestService
	metrics  *service.MetricsService
}

// NewHarvestHandler constructs HarvestHandler.
func NewHarvestHandler(harvests *service.HarvestService, metrics *service.MetricsService) *HarvestHandler {
	return &HarvestHandler{harvests: harvests, metrics: metrics}
}

// List godoc
// @Summary List harvests
// @Tags Harvests
// @Produce json
// @Param environmentId query string false "Filter by environment"
// @Param plantId query string false "Filter by plant"
// @Param strainId query string false "Filter by strain"
// @Param dateFrom query string false "Harvested from (RFC 3339 or date)"
// @Param dateTo query string false "Harvested to (RFC 3339 or date)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /harvests [get]
func (h *HarvestHandler) List(c *gin.Context) {
	req := service.HarvestListRequest{
		EnvironmentID: c.Query("environmentId"),
		PlantID:       c.Query("plantId"),
		StrainID:      c.Query("strainId"),
		DateFrom:      queryTime(c, "dateFrom"),
		DateTo:        queryTime(c, "dateTo"),
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "limit", 50),
	}
	harvests, pagination, err := h.harvests.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, harvests, pagination)
}

// Get godoc
// @Summary Get harvest detail
// @Tags Harvests
// @Produce json
// @Param id path string true "Harvest ID"
// @Success 200 {object} response.Envelope
// @Router /harvests/{id} [get]
func (h *HarvestHandler) Get(c *gin.Context) {
	harvest, err := h.harvests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, harvest, nil)
}

// Create godoc
// @Summary Record harvest
// @Tags Harvests
// @Accept json
// @Produce json
// @Param payload body service.CreateHarvestRequest true "Harvest payload"
// @Success 201 {object} response.Envelope
// @Router /harvests [post]
func (h *HarvestHandler) Create(c *gin.Context) {
	var req service.CreateHarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.CreatedBy = currentUserID(c, req.CreatedBy)
	harvest, err := h.harvests.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCreated("harvest")
	}
	response.Created(c, harvest)
}

// Update godoc
// @Summary Update harvest weights and notes
// @Tags Harvests
// @Accept json
// @Produce json
// @Param id path string true "Harvest ID"
// @Param payload body service.UpdateHarvestRequest true "Harvest payload"
// @Success 200 {object} response.Envelope
// @Router /harvests/{id} [put]
func (h *HarvestHandler) Update(c *gin.Context) {
	var req service.UpdateHarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	harvest, err := h.harvests.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, harvest, nil)
}

// Delete godoc
// @Summary Delete harvest
// @Tags Harvests
// @Produce json
// @Param id path string true "Harvest ID"
// @Success 204
// @Router /harvests/{id} [delete]
func (h *HarvestHandler) Delete(c *gin.Context) {
	if err := h.harvests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
