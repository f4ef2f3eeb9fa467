package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	inventory "bladeops/internal/inventory/domain"
	inventorymem "bladeops/internal/inventory/infrastructure/memory"
	procurement "bladeops/internal/procurement/domain"
	procurementmem "bladeops/internal/procurement/infrastructure/memory"
)

type fixture struct {
	counters *inventorymem.CounterRepository
	blades   *inventorymem.BladeRepository
	orders   *procurementmem.OrderRepository
	metrics  *metricsRecorder
	events   *eventRecorder
	service  *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	counters := inventorymem.NewCounterRepository()
	blades := inventorymem.NewBladeRepository()
	orders := procurementmem.NewOrderRepository()
	metrics := &metricsRecorder{}
	events := &eventRecorder{}

	counter, err := inventory.NewSerialCounter("type-1", "B4", time.Now())
	if err != nil {
		t.Fatalf("new counter: %v", err)
	}
	if err := counters.Create(context.Background(), counter); err != nil {
		t.Fatalf("create counter: %v", err)
	}

	materializer, err := NewMaterializer(blades, nil)
	if err != nil {
		t.Fatalf("materializer: %v", err)
	}
	service, err := NewOrderService(counters, orders, materializer, events, metrics, nil, nil)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}
	return &fixture{counters: counters, blades: blades, orders: orders, metrics: metrics, events: events, service: service}
}

type metricsRecorder struct {
	mu          sync.Mutex
	created     []string
	conflicts   int
	corruptions int
}

func (m *metricsRecorder) OrderCreated(result string, seconds float64, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, result)
}

func (m *metricsRecorder) AllocationConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

func (m *metricsRecorder) AllocationCorruption() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.corruptions++
}

type eventRecorder struct {
	mu     sync.Mutex
	events []any
}

func (e *eventRecorder) Publish(ctx context.Context, event any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func validInput(quantity int) CreateOrderInput {
	return CreateOrderInput{
		BladeTypeID:  "type-1",
		Quantity:     quantity,
		SupplierName: "Hakucho Tooling",
		PONumber:     "PO-1001",
	}
}

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	summary, err := f.service.CreateOrder(ctx, validInput(5))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if summary.SerialNumberStart != "B400001" || summary.SerialNumberEnd != "B400005" {
		t.Fatalf("unexpected range %s-%s", summary.SerialNumberStart, summary.SerialNumberEnd)
	}
	if summary.BladeCount != 5 {
		t.Fatalf("expected 5 blades, got %d", summary.BladeCount)
	}

	order, err := f.service.GetOrder(ctx, summary.OrderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != procurement.StatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if order.StartNumber != 1 || order.EndNumber != 5 {
		t.Fatalf("unexpected numeric range [%d,%d]", order.StartNumber, order.EndNumber)
	}

	blades, err := f.blades.ListByType(ctx, "type-1")
	if err != nil {
		t.Fatalf("list blades: %v", err)
	}
	if len(blades) != 5 {
		t.Fatalf("expected 5 blade records, got %d", len(blades))
	}
	for _, blade := range blades {
		if blade.Status != inventory.StatusNew {
			t.Fatalf("expected status new, got %s", blade.Status)
		}
	}

	counter, _ := f.counters.Get(ctx, "type-1")
	if counter.CurrentCounter != 5 || counter.TotalAllocated != 5 {
		t.Fatalf("expected counter 5/5, got %d/%d", counter.CurrentCounter, counter.TotalAllocated)
	}

	if len(f.events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.events.events))
	}
	evt, ok := f.events.events[0].(OrderCreated)
	if !ok {
		t.Fatalf("expected OrderCreated, got %T", f.events.events[0])
	}
	if evt.SerialNumberStart != "B400001" {
		t.Fatalf("unexpected event range start %s", evt.SerialNumberStart)
	}
}

func TestCreateOrder_SequentialRangesContiguous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.CreateOrder(ctx, validInput(10))
	if err != nil {
		t.Fatalf("first order: %v", err)
	}
	second, err := f.service.CreateOrder(ctx, validInput(5))
	if err != nil {
		t.Fatalf("second order: %v", err)
	}
	if first.EndNumber+1 != second.StartNumber {
		t.Fatalf("ranges not contiguous: %d then %d", first.EndNumber, second.StartNumber)
	}
	if second.SerialNumberStart != "B400011" {
		t.Fatalf("expected B400011, got %s", second.SerialNumberStart)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []CreateOrderInput{
		{Quantity: 5, SupplierName: "s"},
		{BladeTypeID: "type-1", Quantity: 0, SupplierName: "s"},
		{BladeTypeID: "type-1", Quantity: inventory.MaxReserveQuantity + 1, SupplierName: "s"},
		{BladeTypeID: "type-1", Quantity: 5},
	}
	for i, input := range cases {
		if _, err := f.service.CreateOrder(ctx, input); !procurement.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	// Nothing was reserved for rejected inputs.
	counter, _ := f.counters.Get(ctx, "type-1")
	if counter.CurrentCounter != 0 {
		t.Fatalf("expected untouched counter, got %d", counter.CurrentCounter)
	}
}

func TestCreateOrder_UnknownBladeType(t *testing.T) {
	f := newFixture(t)
	input := validInput(5)
	input.BladeTypeID = "missing"
	if _, err := f.service.CreateOrder(context.Background(), input); !errors.Is(err, inventory.ErrCounterNotFound) {
		t.Fatalf("expected ErrCounterNotFound, got %v", err)
	}
}

// conflictingCounters fails Reserve with ErrConflict a fixed number of times
// before delegating.
type conflictingCounters struct {
	inventory.CounterRepository
	mu        sync.Mutex
	remaining int
}

func (c *conflictingCounters) Reserve(ctx context.Context, bladeTypeID string, quantity int) (inventory.Reservation, error) {
	c.mu.Lock()
	fail := c.remaining > 0
	if fail {
		c.remaining--
	}
	c.mu.Unlock()
	if fail {
		return inventory.Reservation{}, inventory.ErrConflict
	}
	return c.CounterRepository.Reserve(ctx, bladeTypeID, quantity)
}

func TestCreateOrder_RetriesOnConflict(t *testing.T) {
	f := newFixture(t)
	counters := &conflictingCounters{CounterRepository: f.counters, remaining: 2}
	materializer, _ := NewMaterializer(f.blades, nil)
	service, err := NewOrderService(counters, f.orders, materializer, nil, f.metrics, nil, nil)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}

	summary, err := service.CreateOrder(context.Background(), validInput(3))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if summary.SerialNumberStart != "B400001" {
		t.Fatalf("unexpected start %s", summary.SerialNumberStart)
	}
	if f.metrics.conflicts != 2 {
		t.Fatalf("expected 2 conflicts recorded, got %d", f.metrics.conflicts)
	}
}

func TestCreateOrder_ConflictRetriesExhausted(t *testing.T) {
	f := newFixture(t)
	counters := &conflictingCounters{CounterRepository: f.counters, remaining: reserveAttempts}
	materializer, _ := NewMaterializer(f.blades, nil)
	service, err := NewOrderService(counters, f.orders, materializer, nil, f.metrics, nil, nil)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}

	if _, err := service.CreateOrder(context.Background(), validInput(3)); !errors.Is(err, inventory.ErrConflict) {
		t.Fatalf("expected ErrConflict after exhausted retries, got %v", err)
	}
}

// failingBlades rejects InsertBatch with a configured error.
type failingBlades struct {
	inventory.BladeRepository
	err error
}

func (f *failingBlades) InsertBatch(ctx context.Context, blades []inventory.Blade) error {
	return f.err
}

func TestCreateOrder_MaterializeFailureReleasesRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blades := &failingBlades{BladeRepository: f.blades, err: errors.New("storage down")}
	materializer, _ := NewMaterializer(blades, nil)
	service, err := NewOrderService(f.counters, f.orders, materializer, nil, f.metrics, nil, nil)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}

	if _, err := service.CreateOrder(ctx, validInput(5)); err == nil {
		t.Fatal("expected error")
	}

	// The range was compensated; a following order reuses it.
	counter, _ := f.counters.Get(ctx, "type-1")
	if counter.CurrentCounter != 0 || counter.TotalAllocated != 0 {
		t.Fatalf("expected counter rolled back, got %d/%d", counter.CurrentCounter, counter.TotalAllocated)
	}

	summary, err := f.service.CreateOrder(ctx, validInput(5))
	if err != nil {
		t.Fatalf("follow-up order: %v", err)
	}
	if summary.SerialNumberStart != "B400001" {
		t.Fatalf("expected released range reused, got %s", summary.SerialNumberStart)
	}
}

func TestCreateOrder_DuplicateSerialNeverReleased(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blades := &failingBlades{BladeRepository: f.blades, err: inventory.ErrDuplicateSerial}
	materializer, _ := NewMaterializer(blades, nil)
	service, err := NewOrderService(f.counters, f.orders, materializer, nil, f.metrics, nil, nil)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}

	if _, err := service.CreateOrder(ctx, validInput(5)); !errors.Is(err, inventory.ErrDuplicateSerial) {
		t.Fatalf("expected ErrDuplicateSerial, got %v", err)
	}

	// Duplicate serial means the protocol broke; the range stays consumed.
	counter, _ := f.counters.Get(ctx, "type-1")
	if counter.CurrentCounter != 5 {
		t.Fatalf("expected counter kept at 5, got %d", counter.CurrentCounter)
	}
	if f.metrics.corruptions != 1 {
		t.Fatalf("expected 1 corruption recorded, got %d", f.metrics.corruptions)
	}
}

func TestCreateOrder_LostReleaseWindowIsCorruption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blades := &failingBlades{BladeRepository: f.blades, err: errors.New("storage down")}
	materializer, _ := NewMaterializer(blades, nil)

	// A concurrent reservation happening between Reserve and Release moves
	// the counter past the failed order's range.
	raced := &racingCounters{CounterRepository: f.counters, inner: f.counters}
	service, err := NewOrderService(raced, f.orders, materializer, nil, f.metrics, nil, nil)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}

	if _, err := service.CreateOrder(ctx, validInput(5)); !errors.Is(err, inventory.ErrAllocationCorruption) {
		t.Fatalf("expected ErrAllocationCorruption, got %v", err)
	}
}

// racingCounters reserves an extra range right after every Reserve so any
// later Release finds a moved counter.
type racingCounters struct {
	inventory.CounterRepository
	inner inventory.CounterRepository
}

func (r *racingCounters) Reserve(ctx context.Context, bladeTypeID string, quantity int) (inventory.Reservation, error) {
	res, err := r.inner.Reserve(ctx, bladeTypeID, quantity)
	if err != nil {
		return res, err
	}
	_, _ = r.inner.Reserve(ctx, bladeTypeID, 1)
	return res, nil
}

// failingOrders rejects Create.
type failingOrders struct {
	procurement.OrderRepository
}

func (f *failingOrders) Create(ctx context.Context, order *procurement.PurchaseOrder) error {
	return errors.New("storage down")
}

func TestCreateOrder_OrderPersistFailureIsCorruption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orders := &failingOrders{OrderRepository: f.orders}
	materializer, _ := NewMaterializer(f.blades, nil)
	service, err := NewOrderService(f.counters, orders, materializer, nil, f.metrics, nil, nil)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}

	if _, err := service.CreateOrder(ctx, validInput(4)); !errors.Is(err, inventory.ErrAllocationCorruption) {
		t.Fatalf("expected ErrAllocationCorruption, got %v", err)
	}

	// Blades were materialized and their serials stay consumed.
	blades, _ := f.blades.ListByType(ctx, "type-1")
	if len(blades) != 4 {
		t.Fatalf("expected 4 blades, got %d", len(blades))
	}
	counter, _ := f.counters.Get(ctx, "type-1")
	if counter.CurrentCounter != 4 {
		t.Fatalf("expected counter 4, got %d", counter.CurrentCounter)
	}
}

func TestCreateOrder_ConcurrentOrdersNoOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	summaries := make([]*OrderSummary, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			summary, err := f.service.CreateOrder(ctx, validInput(8))
			if err != nil {
				t.Errorf("create order: %v", err)
				return
			}
			summaries[i] = summary
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for _, summary := range summaries {
		if summary == nil {
			continue
		}
		for n := summary.StartNumber; n <= summary.EndNumber; n++ {
			if seen[n] {
				t.Fatalf("serial number %d issued twice", n)
			}
			seen[n] = true
		}
	}
	if len(seen) != workers*8 {
		t.Fatalf("expected %d distinct serials, got %d", workers*8, len(seen))
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	summary, err := f.service.CreateOrder(ctx, validInput(2))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	order, err := f.service.UpdateStatus(ctx, summary.OrderID, procurement.StatusPartial)
	if err != nil {
		t.Fatalf("to partial: %v", err)
	}
	if order.Status != procurement.StatusPartial {
		t.Fatalf("expected partial, got %s", order.Status)
	}

	order, err = f.service.UpdateStatus(ctx, summary.OrderID, procurement.StatusReceived)
	if err != nil {
		t.Fatalf("to received: %v", err)
	}
	if order.ActualDeliveryDate == nil {
		t.Fatal("expected actual delivery date on received")
	}

	// Received is terminal.
	if _, err := f.service.UpdateStatus(ctx, summary.OrderID, procurement.StatusCancelled); !errors.Is(err, procurement.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
