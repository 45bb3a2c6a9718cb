package models

import "time"

// Harvest records the cut from a single plant. DistributedGrams and
// ExtractedGrams are running ledger totals maintained by sibling
// distribution/extract records; together they may never exceed the dry
// weight.
type Harvest struct {
	ID               string    `db:"id" json:"id"`
	ControlNumber    string    `db:"control_number" json:"control_number"`
	EnvironmentID    string    `db:"environment_id" json:"environment_id"`
	PlantID          string    `db:"plant_id" json:"plant_id"`
	StrainID         string    `db:"strain_id" json:"strain_id"`
	HarvestedAt      time.Time `db:"harvested_at" json:"harvested_at"`
	WetWeightGrams   float64   `db:"wet_weight_grams" json:"wet_weight_grams"`
	DryWeightGrams   float64   `db:"dry_weight_grams" json:"dry_weight_grams"`
	DistributedGrams float64   `db:"distributed_grams" json:"distributed_grams"`
	ExtractedGrams   float64   `db:"extracted_grams" json:"extracted_grams"`
	Notes            string    `db:"notes" json:"notes"`
	CreatedBy        string    `db:"created_by" json:"created_by"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// HarvestFilter captures listing criteria.
type HarvestFilter struct {
	EnvironmentID string
	PlantID       string
	StrainID      string
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	PageSize      int
}

// LedgerDelta describes a signed change to a harvest's weight ledger.
// Positive values consume weight, negative values return it.
type LedgerDelta struct {
	HarvestID        string
	DistributedGrams float64
	ExtractedGrams   float64
}
