package models

import "time"

// StrainType categorises genetics.
type StrainType string

const (
	StrainIndica StrainType = "indica"
	StrainSativa StrainType = "sativa"
	StrainHybrid StrainType = "hybrid"
)

// Strain is a genetics registry entry.
type Strain struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Type          StrainType `db:"type" json:"type"`
	THCPercent    float64    `db:"thc_percent" json:"thc_percent"`
	CBDPercent    float64    `db:"cbd_percent" json:"cbd_percent"`
	FloweringDays int        `db:"flowering_days" json:"flowering_days"`
	Notes         string     `db:"notes" json:"notes"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// StrainFilter captures listing criteria.
type StrainFilter struct {
	Type     *StrainType
	Search   string
	Page     int
	PageSize int
}
