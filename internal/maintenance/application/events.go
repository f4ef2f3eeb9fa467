package application

import "time"

// BladeRetired is emitted after a blade was permanently retired.
type BladeRetired struct {
	BladeID      string    `json:"blade_id"`
	BladeTypeID  string    `json:"blade_type_id"`
	SerialNumber string    `json:"serial_number"`
	Reason       string    `json:"reason"`
	RetiredBy    string    `json:"retired_by"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// LowStockDetected is emitted when the active blade count of a type drops
// below its configured minimum after a retirement.
type LowStockDetected struct {
	BladeTypeID string    `json:"blade_type_id"`
	TotalActive int       `json:"total_active"`
	Threshold   int       `json:"threshold"`
	OccurredAt  time.Time `json:"occurred_at"`
}
