package procurement

import (
	"context"
	"time"
)

// OrderRepository stores purchase orders.
type OrderRepository interface {
	Create(ctx context.Context, order *PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*PurchaseOrder, error)
	ListByType(ctx context.Context, bladeTypeID string) ([]PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus, actualDelivery *time.Time) error
}
