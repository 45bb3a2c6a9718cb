package models

import "time"

// EnvironmentType categorises a growing space.
type EnvironmentType string

const (
	EnvironmentIndoor     EnvironmentType = "indoor"
	EnvironmentOutdoor    EnvironmentType = "outdoor"
	EnvironmentGreenhouse EnvironmentType = "greenhouse"
)

// Environment is a growing room or space. It is the owner scope for plant
// and harvest sequence counters.
type Environment struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Type        EnvironmentType `db:"type" json:"type"`
	Description string          `db:"description" json:"description"`
	OwnerID     string          `db:"owner_id" json:"owner_id"`
	Active      bool            `db:"active" json:"active"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// EnvironmentFilter captures listing criteria.
type EnvironmentFilter struct {
	OwnerID  string
	Type     *EnvironmentType
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// NextNumbersPreview exposes the optimistic next sequence values for an
// environment. Display-only: a concurrent creation from another device can
// make this stale before submission.
type NextNumbersPreview struct {
	EnvironmentID  string `json:"environment_id"`
	NextPlantSeq   int64  `json:"next_plant_seq"`
	NextHarvestSeq int64  `json:"next_harvest_seq"`
}
