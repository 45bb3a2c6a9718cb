package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/service"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/response"
)

// PlantHandler exposes plant tracking endpoints.
type PlantHandler struct {
	plants  *service.PlantService
	metrics *service.MetricsService
}

// NewPlantHandler constructs PlantHandler.
func NewPlantHandler(plants *service.PlantService, metrics *service.MetricsService) *PlantHandler {
	return &PlantHandler{plants: plants, metrics: metrics}
}

// List godoc
// @Summary List plants
// @Tags Plants
// @Produce json
// @Param environmentId query string false "Filter by environment"
// @Param strainId query string false "Filter by strain"
// @Param stage query string false "Filter by stage"
// @Param batchId query string false "Filter by clone batch"
// @Param search query string false "Search by control number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /plants [get]
func (h *PlantHandler) List(c *gin.Context) {
	req := service.PlantListRequest{
		EnvironmentID: c.Query("environmentId"),
		StrainID:      c.Query("strainId"),
		Stage:         c.Query("stage"),
		BatchID:       c.Query("batchId"),
		Search:        strings.TrimSpace(c.Query("search")),
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "limit", 50),
	}
	plants, pagination, err := h.plants.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plants, pagination)
}

// Get godoc
// @Summary Get plant detail by id or control number
// @Tags Plants
// @Produce json
// @Param id path string true "Plant ID or control number"
// @Success 200 {object} response.Envelope
// @Router /plants/{id} [get]
func (h *PlantHandler) Get(c *gin.Context) {
	plant, err := h.plants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plant, nil)
}

// Create godoc
// @Summary Create plant
// @Tags Plants
// @Accept json
// @Produce json
// @Param payload body service.CreatePlantRequest true "Plant payload"
// @Success 201 {object} response.Envelope
// @Router /plants [post]
func (h *PlantHandler) Create(c *gin.Context) {
	var req service.CreatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.CreatedBy = currentUserID(c, req.CreatedBy)
	plant, err := h.plants.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCreated("plant")
	}
	response.Created(c, plant)
}

// CreateCloneBatch godoc
// @Summary Create a batch of sibling clones
// @Tags Plants
// @Accept json
// @Produce json
// @Param payload body service.CloneBatchRequest true "Clone batch payload"
// @Success 201 {object} response.Envelope
// @Router /plants/clone-batch [post]
func (h *PlantHandler) CreateCloneBatch(c *gin.Context) {
	var req service.CloneBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.CreatedBy = currentUserID(c, req.CreatedBy)
	clones, err := h.plants.CreateCloneBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		for range clones {
			h.metrics.RecordCreated("plant")
		}
	}
	response.Created(c, clones)
}

// Update godoc
// @Summary Update plant
// @Tags Plants
// @Accept json
// @Produce json
// @Param id path string true "Plant ID"
// @Param payload body service.UpdatePlantRequest true "Plant payload"
// @Success 200 {object} response.Envelope
// @Router /plants/{id} [put]
func (h *PlantHandler) Update(c *gin.Context) {
	var req service.UpdatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	plant, err := h.plants.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plant, nil)
}

// Delete godoc
// @Summary Delete plant
// @Tags Plants
// @Produce json
// @Param id path string true "Plant ID"
// @Success 204
// @Router /plants/{id} [delete]
func (h *PlantHandler) Delete(c *gin.Context) {
	if err := h.plants.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
