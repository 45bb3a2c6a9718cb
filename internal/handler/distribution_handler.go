package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/service"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/response"
)

// DistributionHandler exposes distribution endpoints.
type DistributionHandler struct {
	distributions *service.DistributionService
	metrics       *service.MetricsService
}

// NewDistributionHandler constructs DistributionHandler.
func NewDistributionHandler(distributions *service.DistributionService, metrics *service.MetricsService) *DistributionHandler {
	return &DistributionHandler{distributions: distributions, metrics: metrics}
}

// List godoc
// @Summary List distributions
// @Tags Distributions
// @Produce json
// @Param harvestId query string false "Filter by harvest"
// @Param patientId query string false "Filter by patient"
// @Param dateFrom query string false "Distributed from (RFC 3339 or date)"
// @Param dateTo query string false "Distributed to (RFC 3339 or date)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /distributions [get]
func (h *DistributionHandler) List(c *gin.Context) {
	req := service.DistributionListRequest{
		CreatedBy: c.Query("createdBy"),
		HarvestID: c.Query("harvestId"),
		PatientID: c.Query("patientId"),
		DateFrom:  queryTime(c, "dateFrom"),
		DateTo:    queryTime(c, "dateTo"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "limit", 50),
	}
	distributions, pagination, err := h.distributions.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, distributions, pagination)
}

// Get godoc
// @Summary Get distribution detail
// @Tags Distributions
// @Produce json
// @Param id path string true "Distribution ID"
// @Success 200 {object} response.Envelope
// @Router /distributions/{id} [get]
func (h *DistributionHandler) Get(c *gin.Context) {
	distribution, err := h.distributions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, distribution, nil)
}

// Create godoc
// @Summary Record a distribution to a patient
// @Tags Distributions
// @Accept json
// @Produce json
// @Param payload body service.CreateDistributionRequest true "Distribution payload"
// @Success 201 {object} response.Envelope
// @Router /distributions [post]
func (h *DistributionHandler) Create(c *gin.Context) {
	var req service.CreateDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.CreatedBy = currentUserID(c, req.CreatedBy)
	distribution, err := h.distributions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCreated("distribution")
	}
	response.Created(c, distribution)
}

// Delete godoc
// @Summary Delete distribution and return its grams to the harvest
// @Tags Distributions
// @Produce json
// @Param id path string true "Distribution ID"
// @Success 204
// @Router /distributions/{id} [delete]
func (h *DistributionHandler) Delete(c *gin.Context) {
	if err := h.distributions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
