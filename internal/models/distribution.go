package models

import "time"

// Distribution hands grams from a harvest to a patient. Its control number
// comes from the creating user's distribution counter; creating one
// increments the harvest's distributed ledger, deleting one reverts it.
type Distribution struct {
	ID            string    `db:"id" json:"id"`
	ControlNumber string    `db:"control_number" json:"control_number"`
	HarvestID     string    `db:"harvest_id" json:"harvest_id"`
	PatientID     string    `db:"patient_id" json:"patient_id"`
	Grams         float64   `db:"grams" json:"grams"`
	DistributedAt time.Time `db:"distributed_at" json:"distributed_at"`
	Notes         string    `db:"notes" json:"notes"`
	CreatedBy     string    `db:"created_by" json:"created_by"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// DistributionFilter captures listing criteria.
type DistributionFilter struct {
	CreatedBy string
	HarvestID string
	PatientID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}
