package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/service"
	"github.com/verdantiq/cultiva-api/pkg/response"
)

// AuditHandler exposes the audit trail and its diff viewer.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List godoc
// @Summary List audit records
// @Tags Audit
// @Produce json
// @Param userId query string false "Filter by user"
// @Param resource query string false "Filter by resource"
// @Param action query string false "Filter by action"
// @Param dateFrom query string false "Recorded from (RFC 3339 or date)"
// @Param dateTo query string false "Recorded to (RFC 3339 or date)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	req := service.AuditListRequest{
		UserID:   c.Query("userId"),
		Resource: c.Query("resource"),
		Action:   c.Query("action"),
		DateFrom: queryTime(c, "dateFrom"),
		DateTo:   queryTime(c, "dateTo"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 50),
	}
	entries, pagination, err := h.audit.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Get godoc
// @Summary Get one audit record
// @Tags Audit
// @Produce json
// @Param id path string true "Audit record ID"
// @Success 200 {object} response.Envelope
// @Router /audit-logs/{id} [get]
func (h *AuditHandler) Get(c *gin.Context) {
	entry, err := h.audit.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Diff godoc
// @Summary Field-level diff between an audit record's snapshots
// @Tags Audit
// @Produce json
// @Param id path string true "Audit record ID"
// @Success 200 {object} response.Envelope
// @Router /audit-logs/{id}/diff [get]
func (h *AuditHandler) Diff(c *gin.Context) {
	diffs, err := h.audit.Diff(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, diffs, nil)
}
