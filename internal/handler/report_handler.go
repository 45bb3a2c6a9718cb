package handler

import (
	"io"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/models"
	"github.com/verdantiq/cultiva-api/internal/service"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
	"github.com/verdantiq/cultiva-api/pkg/response"
)

// ReportHandler exposes aggregate reports and asynchronous exports.
type ReportHandler struct {
	reports *service.ReportService
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService, exports *service.ExportService, metrics *service.MetricsService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports, metrics: metrics}
}

// Get godoc
// @Summary Generate an aggregate report
// @Tags Reports
// @Produce json
// @Param type path string true "Report type" Enums(harvests, distributions, extracts, plants)
// @Param dateFrom query string false "Range start (RFC 3339 or date)"
// @Param dateTo query string false "Range end (RFC 3339 or date)"
// @Success 200 {object} response.Envelope
// @Router /reports/{type} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	reportType := models.ReportType(c.Param("type"))
	rng := models.ReportRange{From: queryTime(c, "dateFrom"), To: queryTime(c, "dateTo")}

	start := time.Now()
	report, err := h.reports.Generate(c.Request.Context(), reportType, rng)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveReport(string(reportType), time.Since(start))
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Queue an export of an aggregate report
// @Tags Reports
// @Produce json
// @Param type path string true "Report type" Enums(harvests, distributions, extracts, plants)
// @Param format query string false "Export format" Enums(csv, pdf) default(csv)
// @Param dateFrom query string false "Range start (RFC 3339 or date)"
// @Param dateTo query string false "Range end (RFC 3339 or date)"
// @Success 202 {object} response.Envelope
// @Router /reports/{type}/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	format := models.ReportFormat(c.DefaultQuery("format", string(models.ReportFormatCSV)))
	req := service.ExportRequest{
		Type:      models.ReportType(c.Param("type")),
		Format:    format,
		Range:     models.ReportRange{From: queryTime(c, "dateFrom"), To: queryTime(c, "dateTo")},
		CreatedBy: currentUserID(c, ""),
	}
	job, err := h.exports.Enqueue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Job godoc
// @Summary Get export job status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/jobs/{id} [get]
func (h *ReportHandler) Job(c *gin.Context) {
	job, err := h.exports.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export through its signed token
// @Tags Reports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200
// @Router /reports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	file, relPath, err := h.exports.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	filename := path.Base(relPath)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	switch path.Ext(filename) {
	case ".pdf":
		c.Header("Content-Type", "application/pdf")
	default:
		c.Header("Content-Type", "text/csv")
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
