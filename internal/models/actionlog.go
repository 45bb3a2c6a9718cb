package models

import "time"

// ActionType categorises a cultivation action.
type ActionType string

const (
	ActionWatering   ActionType = "watering"
	ActionFeeding    ActionType = "feeding"
	ActionPruning    ActionType = "pruning"
	ActionTreatment  ActionType = "treatment"
	ActionTransplant ActionType = "transplant"
	ActionNote       ActionType = "note"
)

// ActionLog is one cultivation action applied to one plant. Records created
// through a bulk action carry FromBulk and a back-reference to the summary
// record so per-plant histories stay queryable without scanning summaries.
type ActionLog struct {
	ID            string     `db:"id" json:"id"`
	EnvironmentID string     `db:"environment_id" json:"environment_id"`
	PlantID       string     `db:"plant_id" json:"plant_id"`
	Action        ActionType `db:"action" json:"action"`
	Product       string     `db:"product" json:"product"`
	Amount        float64    `db:"amount" json:"amount"`
	Notes         string     `db:"notes" json:"notes"`
	PerformedAt   time.Time  `db:"performed_at" json:"performed_at"`
	PerformedBy   string     `db:"performed_by" json:"performed_by"`
	FromBulk      bool       `db:"from_bulk" json:"from_bulk"`
	BulkID        *string    `db:"bulk_id" json:"bulk_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// BulkActionLog summarises one action applied to many plants at once.
type BulkActionLog struct {
	ID            string     `db:"id" json:"id"`
	EnvironmentID string     `db:"environment_id" json:"environment_id"`
	Action        ActionType `db:"action" json:"action"`
	Product       string     `db:"product" json:"product"`
	Amount        float64    `db:"amount" json:"amount"`
	Notes         string     `db:"notes" json:"notes"`
	PerformedAt   time.Time  `db:"performed_at" json:"performed_at"`
	PerformedBy   string     `db:"performed_by" json:"performed_by"`
	TargetCount   int        `db:"target_count" json:"target_count"`
	TargetIDs     []string   `db:"-" json:"target_ids"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// ActionLogFilter captures listing criteria.
type ActionLogFilter struct {
	EnvironmentID string
	PlantID       string
	Action        *ActionType
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	PageSize      int
}
