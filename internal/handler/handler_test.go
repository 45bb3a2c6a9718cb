package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantiq/cultiva-api/internal/middleware"
	"github.com/verdantiq/cultiva-api/internal/models"
	"github.com/verdantiq/cultiva-api/internal/service"
)

func TestPlantHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPlantHandler(service.NewPlantService(nil, nil, nil, nil, nil, nil), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/plants", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlantHandlerCreateUsesClaimsForCreatedBy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(map[string]interface{}{"environment_id": "env-1", "strain_id": "s-1", "source": "seed"})
	req, _ := http.NewRequest(http.MethodPost, "/plants", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-42", Role: models.RoleGrower})

	assert.Equal(t, "user-42", currentUserID(c, ""))
}

func TestReportHandlerDownloadRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(nil, nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/reports/download", nil)
	c.Request = req

	handler.Download(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsHandlerSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.RecordCreated("plant")
	metrics.RecordBulkAction(3)
	handler := NewMetricsHandler(metrics)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/metrics/snapshot", nil)
	c.Request = req

	handler.Snapshot(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.SystemMetrics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, int64(1), envelope.Data.RecordsCreated["plant"])
	assert.Equal(t, int64(1), envelope.Data.BulkActions)
	assert.Equal(t, int64(3), envelope.Data.BulkTargets)
}

func TestMetricsHandlerHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	c.Request = req

	handler.Health(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestQueryTimeAcceptsDateAndRFC3339(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/harvests?dateFrom=2025-01-01&dateTo=2025-01-31T23:59:59Z&bad=oops", nil)
	c.Request = req

	from := queryTime(c, "dateFrom")
	require.NotNil(t, from)
	assert.Equal(t, 2025, from.Year())

	to := queryTime(c, "dateTo")
	require.NotNil(t, to)
	assert.Equal(t, 23, to.Hour())

	assert.Nil(t, queryTime(c, "bad"))
	assert.Nil(t, queryTime(c, "missing"))
}
