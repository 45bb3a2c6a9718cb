package models

import "time"

// SystemMetrics is a point-in-time operational snapshot served alongside the
// Prometheus endpoint for quick human inspection.
type SystemMetrics struct {
	UptimeSeconds   float64          `json:"uptime_seconds"`
	RecordsCreated  map[string]int64 `json:"records_created"`
	BulkActions     int64            `json:"bulk_actions"`
	BulkTargets     int64            `json:"bulk_targets"`
	ReportsServed   int64            `json:"reports_served"`
	ExportsFinished int64            `json:"exports_finished"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
