package application

import "time"

// OrderCreated is emitted after an order and its blade batch committed.
type OrderCreated struct {
	OrderID           string    `json:"order_id"`
	BladeTypeID       string    `json:"blade_type_id"`
	Quantity          int       `json:"quantity"`
	SerialNumberStart string    `json:"serial_number_start"`
	SerialNumberEnd   string    `json:"serial_number_end"`
	OccurredAt        time.Time `json:"occurred_at"`
}
