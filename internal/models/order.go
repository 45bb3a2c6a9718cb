package models

import "time"

// OrderStatus tracks fulfilment of a patient order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderFulfilled OrderStatus = "fulfilled"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is a patient request for product. Its control number comes from the
// creating user's order counter.
type Order struct {
	ID            string      `db:"id" json:"id"`
	ControlNumber string      `db:"control_number" json:"control_number"`
	PatientID     string      `db:"patient_id" json:"patient_id"`
	ProductType   string      `db:"product_type" json:"product_type"`
	Grams         float64     `db:"grams" json:"grams"`
	Status        OrderStatus `db:"status" json:"status"`
	RequestedAt   time.Time   `db:"requested_at" json:"requested_at"`
	Notes         string      `db:"notes" json:"notes"`
	CreatedBy     string      `db:"created_by" json:"created_by"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// OrderFilter captures listing criteria.
type OrderFilter struct {
	CreatedBy string
	PatientID string
	Status    *OrderStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}
