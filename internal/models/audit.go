package models

import "time"

// AuditLog represents an audit trail record with optional before/after
// snapshots for the diff viewer.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AuditLogFilter captures listing criteria.
type AuditLogFilter struct {
	UserID   string
	Resource string
	Action   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// AuditFieldDiff is one changed field between the old and new snapshots.
type AuditFieldDiff struct {
	Field string      `json:"field"`
	Old   interface{} `json:"old,omitempty"`
	New   interface{} `json:"new,omitempty"`
}
