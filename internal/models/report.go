package models

import "time"

// ReportType identifies an aggregate report.
type ReportType string

const (
	ReportHarvests      ReportType = "harvests"
	ReportDistributions ReportType = "distributions"
	ReportExtracts      ReportType = "extracts"
	ReportPlants        ReportType = "plants"
)

// ReportFormat identifies an export rendering.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus tracks an export job through its lifecycle.
type ReportStatus string

const (
	ReportStatusQueued  ReportStatus = "queued"
	ReportStatusRunning ReportStatus = "running"
	ReportStatusDone    ReportStatus = "done"
	ReportStatusFailed  ReportStatus = "failed"
)

// ReportRange bounds a report. Both bounds are inclusive when set.
type ReportRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// GroupTotal is one bucket of a grouped aggregation.
type GroupTotal struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Grams float64 `json:"grams"`
}

// HarvestReport aggregates harvests over a range.
type HarvestReport struct {
	GeneratedAt           time.Time    `json:"generated_at"`
	Range                 ReportRange  `json:"range"`
	TotalCount            int          `json:"total_count"`
	TotalWetGrams         float64      `json:"total_wet_grams"`
	TotalDryGrams         float64      `json:"total_dry_grams"`
	TotalDistributedGrams float64      `json:"total_distributed_grams"`
	TotalExtractedGrams   float64      `json:"total_extracted_grams"`
	ByStrain              []GroupTotal `json:"by_strain"`
}

// DistributionReport aggregates distributions over a range.
type DistributionReport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Range       ReportRange  `json:"range"`
	TotalCount  int          `json:"total_count"`
	TotalGrams  float64      `json:"total_grams"`
	ByPatient   []GroupTotal `json:"by_patient"`
}

// ExtractReport aggregates extracts over a range.
type ExtractReport struct {
	GeneratedAt      time.Time    `json:"generated_at"`
	Range            ReportRange  `json:"range"`
	TotalCount       int          `json:"total_count"`
	TotalOutputGrams float64      `json:"total_output_grams"`
	TotalInputGrams  float64      `json:"total_input_grams"`
	ByType           []GroupTotal `json:"by_type"`
}

// PlantReport aggregates the plant inventory over a range of planting dates.
type PlantReport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Range       ReportRange  `json:"range"`
	TotalCount  int          `json:"total_count"`
	ByStage     []GroupTotal `json:"by_stage"`
	ByStrain    []GroupTotal `json:"by_strain"`
}

// ExtractWithInput is the flat read model behind the extract report: one
// extract with its summed input grams.
type ExtractWithInput struct {
	ID            string      `db:"id"`
	ControlNumber string      `db:"control_number"`
	Type          ExtractType `db:"type"`
	OutputGrams   float64     `db:"output_grams"`
	ExtractedAt   time.Time   `db:"extracted_at"`
	CreatedBy     string      `db:"created_by"`
	InputGrams    float64     `db:"input_grams"`
}

// PlantWithStrain is the flat read model behind the plant report.
type PlantWithStrain struct {
	ID            string     `db:"id"`
	ControlNumber string     `db:"control_number"`
	EnvironmentID string     `db:"environment_id"`
	StrainID      string     `db:"strain_id"`
	Stage         PlantStage `db:"stage"`
	PlantedAt     time.Time  `db:"planted_at"`
	StrainName    string     `db:"strain_name"`
}

// ReportJob tracks an asynchronous export request.
type ReportJob struct {
	ID           string       `db:"id" json:"id"`
	Type         ReportType   `db:"type" json:"type"`
	Format       ReportFormat `db:"format" json:"format"`
	DateFrom     *time.Time   `db:"date_from" json:"date_from,omitempty"`
	DateTo       *time.Time   `db:"date_to" json:"date_to,omitempty"`
	Status       ReportStatus `db:"status" json:"status"`
	Progress     int          `db:"progress" json:"progress"`
	ResultURL    *string      `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage *string      `db:"error_message" json:"error_message,omitempty"`
	CreatedBy    string       `db:"created_by" json:"created_by"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time   `db:"finished_at" json:"finished_at,omitempty"`
}
