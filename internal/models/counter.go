package models

import "time"

// SequenceCounter stores the last reserved value for a named monotonic
// counter. One row per scope; values never decrease and are never reused.
type SequenceCounter struct {
	Scope        string    `db:"scope" json:"scope"`
	CurrentValue int64     `db:"current_value" json:"current_value"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Counter scope builders. Plants and harvests count per environment,
// extracts, distributions and orders per user.
func PlantCounterScope(environmentID string) string   { return "plants:" + environmentID }
func HarvestCounterScope(environmentID string) string { return "harvests:" + environmentID }
func ExtractCounterScope(userID string) string        { return "extracts:" + userID }
func DistributionCounterScope(userID string) string   { return "distributions:" + userID }
func OrderCounterScope(userID string) string          { return "orders:" + userID }
