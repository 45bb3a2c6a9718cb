package models

import "time"

// PlantStage tracks a plant through its lifecycle.
type PlantStage string

const (
	StageSeedling   PlantStage = "seedling"
	StageVegetative PlantStage = "vegetative"
	StageFlowering  PlantStage = "flowering"
	StageHarvested  PlantStage = "harvested"
	StageDestroyed  PlantStage = "destroyed"
)

// PlantSource records how a plant came to exist.
type PlantSource string

const (
	SourceSeed  PlantSource = "seed"
	SourceClone PlantSource = "clone"
)

// Plant is an individual tracked plant. The control number is assigned at
// creation from the environment's plant counter and never changes.
type Plant struct {
	ID            string      `db:"id" json:"id"`
	ControlNumber string      `db:"control_number" json:"control_number"`
	EnvironmentID string      `db:"environment_id" json:"environment_id"`
	StrainID      string      `db:"strain_id" json:"strain_id"`
	Stage         PlantStage  `db:"stage" json:"stage"`
	Source        PlantSource `db:"source" json:"source"`
	MotherID      *string     `db:"mother_id" json:"mother_id,omitempty"`
	BatchID       *string     `db:"batch_id" json:"batch_id,omitempty"`
	PlantedAt     time.Time   `db:"planted_at" json:"planted_at"`
	Notes         string      `db:"notes" json:"notes"`
	CreatedBy     string      `db:"created_by" json:"created_by"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// PlantFilter captures listing criteria.
type PlantFilter struct {
	EnvironmentID string
	StrainID      string
	Stage         *PlantStage
	BatchID       string
	Search        string
	Page          int
	PageSize      int
}
