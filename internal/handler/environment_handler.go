package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/service"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/response"
)

// EnvironmentHandler exposes grow environment endpoints.
type EnvironmentHandler struct {
	environments *service.EnvironmentService
}

// NewEnvironmentHandler constructs EnvironmentHandler.
func NewEnvironmentHandler(environments *service.EnvironmentService) *EnvironmentHandler {
	return &EnvironmentHandler{environments: environments}
}

// List godoc
// @Summary List environments
// @Tags Environments
// @Produce json
// @Param search query string false "Search by name"
// @Param type query string false "Filter by type"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /environments [get]
func (h *EnvironmentHandler) List(c *gin.Context) {
	req := service.EnvironmentListRequest{
		OwnerID:  c.Query("ownerId"),
		Type:     c.Query("type"),
		Active:   queryBool(c, "active"),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 50),
	}
	environments, pagination, err := h.environments.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, environments, pagination)
}

// Get godoc
// @Summary Get environment detail
// @Tags Environments
// @Produce json
// @Param id path string true "Environment ID"
// @Success 200 {object} response.Envelope
// @Router /environments/{id} [get]
func (h *EnvironmentHandler) Get(c *gin.Context) {
	environment, err := h.environments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, environment, nil)
}

// Create godoc
// @Summary Create environment
// @Tags Environments
// @Accept json
// @Produce json
// @Param payload body service.CreateEnvironmentRequest true "Environment payload"
// @Success 201 {object} response.Envelope
// @Router /environments [post]
func (h *EnvironmentHandler) Create(c *gin.Context) {
	var req service.CreateEnvironmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.OwnerID = currentUserID(c, req.OwnerID)
	environment, err := h.environments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, environment)
}

// Update godoc
// @Summary Update environment
// @Tags Environments
// @Accept json
// @Produce json
// @Param id path string true "Environment ID"
// @Param payload body service.UpdateEnvironmentRequest true "Environment payload"
// @Success 200 {object} response.Envelope
// @Router /environments/{id} [put]
func (h *EnvironmentHandler) Update(c *gin.Context) {
	var req service.UpdateEnvironmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	environment, err := h.environments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, environment, nil)
}

// Delete godoc
// @Summary Delete environment
// @Tags Environments
// @Produce json
// @Param id path string true "Environment ID"
// @Success 204
// @Router /environments/{id} [delete]
func (h *EnvironmentHandler) Delete(c *gin.Context) {
	if err := h.environments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// NextNumbers godoc
// @Summary Preview the next control numbers for an environment
// @Tags Environments
// @Produce json
// @Param id path string true "Environment ID"
// @Success 200 {object} response.Envelope
// @Router /environments/{id}/next-numbers [get]
func (h *EnvironmentHandler) NextNumbers(c *gin.Context) {
	preview, err := h.environments.NextNumbers(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}
