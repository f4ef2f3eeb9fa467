package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	procurement "bladeops/internal/procurement/domain"
)

// OrderRepository is an in-memory purchase order store.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*procurement.PurchaseOrder
}

// NewOrderRepository constructs a repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*procurement.PurchaseOrder)}
}

// Create stores an order.
func (r *OrderRepository) Create(ctx context.Context, order *procurement.PurchaseOrder) error {
	_ = ctx
	if order == nil {
		return procurement.ErrOrderNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *order
	r.orders[order.ID] = &copy
	return nil
}

// GetByID returns a copy of an order.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*procurement.PurchaseOrder, error) {
	_ = ctx
	r.mu.RLock()
	order := r.orders[id]
	r.mu.RUnlock()
	if order == nil {
		return nil, procurement.ErrOrderNotFound
	}
	copy := *order
	return &copy, nil
}

// ListByType returns orders for a blade type, newest first.
func (r *OrderRepository) ListByType(ctx context.Context, bladeTypeID string) ([]procurement.PurchaseOrder, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []procurement.PurchaseOrder
	for _, order := range r.orders {
		if order.BladeTypeID == bladeTypeID {
			result = append(result, *order)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateStatus sets the order status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status procurement.OrderStatus, actualDelivery *time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	order := r.orders[id]
	if order == nil {
		return procurement.ErrOrderNotFound
	}
	order.Status = status
	if actualDelivery != nil {
		order.ActualDeliveryDate = actualDelivery
	}
	order.UpdatedAt = time.Now().UTC()
	return nil
}
