package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/service"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/response"
)

// StrainHandler exposes genetics catalog endpoints.
type StrainHandler struct {
	strains *service.StrainService
}

// NewStrainHandler constructs StrainHandler.
func NewStrainHandler(strains *service.StrainService) *StrainHandler {
	return &StrainHandler{strains: strains}
}

// List godoc
// @Summary List strains
// @Tags Strains
// @Produce json
// @Param search query string false "Search by name"
// @Param type query string false "Filter by type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /strains [get]
func (h *StrainHandler) List(c *gin.Context) {
	req := service.StrainListRequest{
		Type:     c.Query("type"),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 50),
	}
	strains, pagination, err := h.strains.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, strains, pagination)
}

// Get godoc
// @Summary Get strain detail
// @Tags Strains
// @Produce json
// @Param id path string true "Strain ID"
// @Success 200 {object} response.Envelope
// @Router /strains/{id} [get]
func (h *StrainHandler) Get(c *gin.Context) {
	strain, err := h.strains.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, strain, nil)
}

// Create godoc
// @Summary Create strain
// @Tags Strains
// @Accept json
// @Produce json
// @Param payload body service.StrainRequest true "Strain payload"
// @Success 201 {object} response.Envelope
// @Router /strains [post]
func (h *StrainHandler) Create(c *gin.Context) {
	var req service.StrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	strain, err := h.strains.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, strain)
}

// Update godoc
// @Summary Update strain
// @Tags Strains
// @Accept json
// @Produce json
// @Param id path string true "Strain ID"
// @Param payload body service.StrainRequest true "Strain payload"
// @Success 200 {object} response.Envelope
// @Router /strains/{id} [put]
func (h *StrainHandler) Update(c *gin.Context) {
	var req service.StrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	strain, err := h.strains.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, strain, nil)
}

// Delete godoc
// @Summary Delete strain
// @Tags Strains
// @Produce json
// @Param id path string true "Strain ID"
// @Success 204
// @Router /strains/{id} [delete]
func (h *StrainHandler) Delete(c *gin.Context) {
	if err := h.strains.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
