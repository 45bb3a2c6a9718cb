package service

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/verdantiq/cultiva-api/internal/models"
)

// MetricsService exposes Prometheus instruments for the domain and keeps a
// small in-process mirror for the JSON snapshot endpoint.
type MetricsService struct {
	registry *prometheus.Registry

	recordsCreated  *prometheus.CounterVec
	bulkActions     prometheus.Counter
	bulkTargets     prometheus.Counter
	reportDuration  *prometheus.HistogramVec
	exportsFinished prometheus.Counter
	httpDuration    *prometheus.HistogramVec

	mu      sync.Mutex
	started time.Time
	created map[string]int64
	bulks   int64
	targets int64
	reports int64
	exports int64
}

// NewMetricsService constructs the service with a private registry.
func NewMetricsService() *MetricsService {
	s := &MetricsService{
		registry: prometheus.NewRegistry(),
		recordsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cultiva_records_created_total",
			Help: "Records created, labelled by entity type.",
		}, []string{"entity"}),
		bulkActions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cultiva_bulk_actions_total",
			Help: "Bulk actions submitted.",
		}),
		bulkTargets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cultiva_bulk_action_targets_total",
			Help: "Per-plant records created by bulk actions.",
		}),
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cultiva_report_generation_seconds",
			Help:    "Report aggregation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
		exportsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cultiva_exports_finished_total",
			Help: "Export jobs completed.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cultiva_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		started: time.Now(),
		created: make(map[string]int64),
	}
	s.registry.MustRegister(s.recordsCreated, s.bulkActions, s.bulkTargets, s.reportDuration, s.exportsFinished, s.httpDuration)
	return s
}

// Registry exposes the underlying registry for the HTTP handler.
func (s *MetricsService) Registry() *prometheus.Registry {
	return s.registry
}

// RecordCreated counts one created record of the given entity type.
func (s *MetricsService) RecordCreated(entity string) {
	s.recordsCreated.WithLabelValues(entity).Inc()
	s.mu.Lock()
	s.created[entity]++
	s.mu.Unlock()
}

// RecordBulkAction counts one bulk action and its fan-out size.
func (s *MetricsService) RecordBulkAction(targetCount int) {
	s.bulkActions.Inc()
	s.bulkTargets.Add(float64(targetCount))
	s.mu.Lock()
	s.bulks++
	s.targets += int64(targetCount)
	s.mu.Unlock()
}

// ObserveReport records one report generation.
func (s *MetricsService) ObserveReport(reportType string, elapsed time.Duration) {
	s.reportDuration.WithLabelValues(reportType).Observe(elapsed.Seconds())
	s.mu.Lock()
	s.reports++
	s.mu.Unlock()
}

// RecordExportFinished counts one completed export job.
func (s *MetricsService) RecordExportFinished() {
	s.exportsFinished.Inc()
	s.mu.Lock()
	s.exports++
	s.mu.Unlock()
}

// ObserveHTTPRequest records one handled request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	s.httpDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Snapshot returns the JSON mirror of the counters.
func (s *MetricsService) Snapshot() models.SystemMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := make(map[string]int64, len(s.created))
	for entity, count := range s.created {
		created[entity] = count
	}
	return models.SystemMetrics{
		UptimeSeconds:   time.Since(s.started).Seconds(),
		RecordsCreated:  created,
		BulkActions:     s.bulks,
		BulkTargets:     s.targets,
		ReportsServed:   s.reports,
		ExportsFinished: s.exports,
		GeneratedAt:     time.Now().UTC(),
	}
}
