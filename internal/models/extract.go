package models

import "time"

// ExtractType categorises the produced concentrate.
type ExtractType string

const (
	ExtractOil         ExtractType = "oil"
	ExtractTincture    ExtractType = "tincture"
	ExtractConcentrate ExtractType = "concentrate"
	ExtractEdible      ExtractType = "edible"
)

// Extract consumes input grams from one or more harvests. Its control
// number comes from the creating user's extract counter.
type Extract struct {
	ID            string         `db:"id" json:"id"`
	ControlNumber string         `db:"control_number" json:"control_number"`
	Type          ExtractType    `db:"type" json:"type"`
	OutputGrams   float64        `db:"output_grams" json:"output_grams"`
	ExtractedAt   time.Time      `db:"extracted_at" json:"extracted_at"`
	Notes         string         `db:"notes" json:"notes"`
	CreatedBy     string         `db:"created_by" json:"created_by"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
	Inputs        []ExtractInput `db:"-" json:"inputs,omitempty"`
}

// ExtractInput records grams drawn from one harvest into an extract.
type ExtractInput struct {
	ID         string  `db:"id" json:"id"`
	ExtractID  string  `db:"extract_id" json:"extract_id"`
	HarvestID  string  `db:"harvest_id" json:"harvest_id"`
	InputGrams float64 `db:"input_grams" json:"input_grams"`
}

// ExtractFilter captures listing criteria.
type ExtractFilter struct {
	CreatedBy string
	Type      *ExtractType
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}
