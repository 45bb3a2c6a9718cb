package models

import "time"

// Patient is a registered recipient of distributions.
type Patient struct {
	ID                    string    `db:"id" json:"id"`
	FullName              string    `db:"full_name" json:"full_name"`
	RegistryNumber        string    `db:"registry_number" json:"registry_number"`
	MonthlyAllotmentGrams float64   `db:"monthly_allotment_grams" json:"monthly_allotment_grams"`
	Active                bool      `db:"active" json:"active"`
	Notes                 string    `db:"notes" json:"notes"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// PatientFilter captures listing criteria.
type PatientFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
