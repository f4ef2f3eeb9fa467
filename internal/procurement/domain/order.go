package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the procurement state of a purchase order. Transitions are
// forward only and applied by callers, never by the allocator.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPartial   OrderStatus = "partial"
	StatusReceived  OrderStatus = "received"
	StatusCancelled OrderStatus = "cancelled"
)

// NormalizeOrderStatus validates a status string.
func NormalizeOrderStatus(value string) (OrderStatus, bool) {
	switch OrderStatus(value) {
	case StatusPending, StatusPartial, StatusReceived, StatusCancelled:
		return OrderStatus(value), true
	default:
		return "", false
	}
}

// CanTransition reports whether an order status move is allowed.
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusPartial || to == StatusReceived || to == StatusCancelled
	case StatusPartial:
		return to == StatusReceived || to == StatusCancelled
	default:
		return false
	}
}

// PurchaseOrder is one procurement event. The serial range [StartNumber,
// EndNumber] is contiguous, was never issued before for this blade type, and
// covers exactly Quantity blade records created with the order.
type PurchaseOrder struct {
	ID                   string
	BladeTypeID          string
	Quantity             int
	SupplierName         string
	PONumber             string
	UnitCost             decimal.NullDecimal
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	Status               OrderStatus
	StartNumber          int
	EndNumber            int
	SerialNumberStart    string
	SerialNumberEnd      string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
