package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	inventory "bladeops/internal/inventory/domain"
	procurement "bladeops/internal/procurement/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	reserveAttempts = 3
	reserveBackoff  = 50 * time.Millisecond
)

// EventPublisher emits domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// AllocationMetrics records allocation outcomes.
type AllocationMetrics interface {
	OrderCreated(result string, seconds float64, quantity int)
	AllocationConflict()
	AllocationCorruption()
}

// CreateOrderInput carries validated-on-entry order parameters.
type CreateOrderInput struct {
	BladeTypeID          string
	Quantity             int
	SupplierName         string
	PONumber             string
	UnitCost             decimal.NullDecimal
	ExpectedDeliveryDate *time.Time
}

// OrderSummary is returned to the caller after a successful CreateOrder.
type OrderSummary struct {
	OrderID           string `json:"order_id"`
	BladeTypeID       string `json:"blade_type_id"`
	SerialNumberStart string `json:"serial_number_start"`
	SerialNumberEnd   string `json:"serial_number_end"`
	StartNumber       int    `json:"start_number"`
	EndNumber         int    `json:"end_number"`
	BladeCount        int    `json:"blade_count"`
}

// OrderService orchestrates purchase order creation: reserve a serial range,
// materialize blade records, persist the order. Serial numbers consumed by a
// failed order are never reused; gaps are acceptable, duplicates are not.
type OrderService struct {
	counters     inventory.CounterRepository
	orders       procurement.OrderRepository
	materializer *Materializer
	publisher    EventPublisher
	metrics      AllocationMetrics
	clock        Clock
	logger       *log.Logger
}

// NewOrderService constructs the service.
func NewOrderService(
	counters inventory.CounterRepository,
	orders procurement.OrderRepository,
	materializer *Materializer,
	publisher EventPublisher,
	metrics AllocationMetrics,
	clock Clock,
	logger *log.Logger,
) (*OrderService, error) {
	if counters == nil {
		return nil, errors.New("order service: nil counter repository")
	}
	if orders == nil {
		return nil, errors.New("order service: nil order repository")
	}
	if materializer == nil {
		return nil, errors.New("order service: nil materializer")
	}
	if clock == nil {
		clock = systemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OrderService{
		counters:     counters,
		orders:       orders,
		materializer: materializer,
		publisher:    publisher,
		metrics:      metrics,
		clock:        clock,
		logger:       logger,
	}, nil
}

// CreateOrder validates input, reserves a contiguous serial range, creates one
// blade per serial and persists the order. It either returns a complete
// summary or a typed error, never a partial range.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderSummary, error) {
	started := s.clock.Now()
	summary, err := s.createOrder(ctx, input)
	if s.metrics != nil {
		result := "success"
		if err != nil {
			result = "error"
		}
		s.metrics.OrderCreated(result, s.clock.Now().Sub(started).Seconds(), input.Quantity)
	}
	return summary, err
}

func (s *OrderService) createOrder(ctx context.Context, input CreateOrderInput) (*OrderSummary, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	// Existence check before any counter mutation.
	if _, err := s.counters.Get(ctx, input.BladeTypeID); err != nil {
		return nil, err
	}

	res, err := s.reserveWithRetry(ctx, input.BladeTypeID, input.Quantity)
	if err != nil {
		return nil, err
	}

	blades, err := s.materializer.Materialize(ctx, res)
	if err != nil {
		return nil, s.compensate(ctx, res, err)
	}

	now := s.clock.Now().UTC()
	order := &procurement.PurchaseOrder{
		ID:                   uuid.NewString(),
		BladeTypeID:          input.BladeTypeID,
		Quantity:             input.Quantity,
		SupplierName:         input.SupplierName,
		PONumber:             input.PONumber,
		UnitCost:             input.UnitCost,
		OrderDate:            now,
		ExpectedDeliveryDate: input.ExpectedDeliveryDate,
		Status:               procurement.StatusPending,
		StartNumber:          res.Start,
		EndNumber:            res.End,
		SerialNumberStart:    blades[0].SerialNumber,
		SerialNumberEnd:      blades[len(blades)-1].SerialNumber,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		// Blades exist and serials are consumed, but the order row is missing.
		// Report corruption so operators know the range was not lost silently.
		s.logger.Printf("order persist failed after materialization: type=%s range=[%d,%d] err=%v",
			input.BladeTypeID, res.Start, res.End, err)
		if s.metrics != nil {
			s.metrics.AllocationCorruption()
		}
		return nil, fmt.Errorf("order persist: %v: %w", err, inventory.ErrAllocationCorruption)
	}

	if s.publisher != nil {
		event := OrderCreated{
			OrderID:           order.ID,
			BladeTypeID:       order.BladeTypeID,
			Quantity:          order.Quantity,
			SerialNumberStart: order.SerialNumberStart,
			SerialNumberEnd:   order.SerialNumberEnd,
			OccurredAt:        now,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Printf("publish OrderCreated failed: order=%s err=%v", order.ID, err)
		}
	}

	return &OrderSummary{
		OrderID:           order.ID,
		BladeTypeID:       order.BladeTypeID,
		SerialNumberStart: order.SerialNumberStart,
		SerialNumberEnd:   order.SerialNumberEnd,
		StartNumber:       res.Start,
		EndNumber:         res.End,
		BladeCount:        len(blades),
	}, nil
}

// reserveWithRetry retries the whole reservation on write conflicts only.
func (s *OrderService) reserveWithRetry(ctx context.Context, bladeTypeID string, quantity int) (inventory.Reservation, error) {
	var lastErr error
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		res, err := s.counters.Reserve(ctx, bladeTypeID, quantity)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, inventory.ErrConflict) {
			return inventory.Reservation{}, err
		}
		lastErr = err
		if s.metrics != nil {
			s.metrics.AllocationConflict()
		}
		select {
		case <-ctx.Done():
			return inventory.Reservation{}, ctx.Err()
		case <-time.After(reserveBackoff << attempt):
		}
	}
	return inventory.Reservation{}, lastErr
}

// compensate rolls the counter back after a failed materialization. A
// duplicate serial is a fatal integrity violation and is never compensated;
// a lost release window is surfaced as corruption, never silently healed.
func (s *OrderService) compensate(ctx context.Context, res inventory.Reservation, cause error) error {
	if errors.Is(cause, inventory.ErrDuplicateSerial) {
		s.logger.Printf("duplicate serial during materialization: type=%s range=[%d,%d]",
			res.BladeTypeID, res.Start, res.End)
		if s.metrics != nil {
			s.metrics.AllocationCorruption()
		}
		return fmt.Errorf("materialize: %w", cause)
	}
	if err := s.counters.Release(ctx, res); err != nil {
		s.logger.Printf("release failed, serial range lost: type=%s range=[%d,%d] err=%v",
			res.BladeTypeID, res.Start, res.End, err)
		if s.metrics != nil {
			s.metrics.AllocationCorruption()
		}
		return fmt.Errorf("materialize: %v: %w", cause, inventory.ErrAllocationCorruption)
	}
	return fmt.Errorf("materialize: %w", cause)
}

// GetOrder fetches one purchase order.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*procurement.PurchaseOrder, error) {
	return s.orders.GetByID(ctx, orderID)
}

// ListOrders lists orders for a blade type.
func (s *OrderService) ListOrders(ctx context.Context, bladeTypeID string) ([]procurement.PurchaseOrder, error) {
	return s.orders.ListByType(ctx, bladeTypeID)
}

// UpdateStatus applies a forward-only order status move. Receiving an order
// records the actual delivery date.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status procurement.OrderStatus) (*procurement.PurchaseOrder, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !procurement.CanTransition(order.Status, status) {
		return nil, procurement.ErrInvalidTransition
	}
	var actualDelivery *time.Time
	if status == procurement.StatusReceived {
		now := s.clock.Now().UTC()
		actualDelivery = &now
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status, actualDelivery); err != nil {
		return nil, err
	}
	order.Status = status
	order.ActualDeliveryDate = actualDelivery
	return order, nil
}

func validateInput(input CreateOrderInput) error {
	if input.BladeTypeID == "" {
		return &procurement.ValidationError{Field: "blade_type_id", Reason: "required"}
	}
	if input.Quantity < 1 || input.Quantity > inventory.MaxReserveQuantity {
		return &procurement.ValidationError{
			Field:  "quantity",
			Reason: fmt.Sprintf("must be between 1 and %d", inventory.MaxReserveQuantity),
		}
	}
	if input.SupplierName == "" {
		return &procurement.ValidationError{Field: "supplier_name", Reason: "required"}
	}
	if input.UnitCost.Valid && input.UnitCost.Decimal.IsNegative() {
		return &procurement.ValidationError{Field: "unit_cost", Reason: "must not be negative"}
	}
	return nil
}
