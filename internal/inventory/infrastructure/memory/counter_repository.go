package memory

import (
	"context"
	"sync"
	"time"

	inventory "bladeops/internal/inventory/domain"
)

// CounterRepository is an in-memory counter store. Each counter carries its
// own lock so reservations for different blade types proceed in parallel.
type CounterRepository struct {
	mu       sync.RWMutex
	counters map[string]*counterSlot
}

type counterSlot struct {
	mu      sync.Mutex
	counter inventory.SerialCounter
}

// NewCounterRepository constructs a repository.
func NewCounterRepository() *CounterRepository {
	return &CounterRepository{counters: make(map[string]*counterSlot)}
}

// Create initializes a counter; an existing counter is never reset.
func (r *CounterRepository) Create(ctx context.Context, counter *inventory.SerialCounter) error {
	_ = ctx
	if counter == nil {
		return inventory.ErrCounterNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.counters[counter.BladeTypeID]; ok {
		return inventory.ErrCounterExists
	}
	r.counters[counter.BladeTypeID] = &counterSlot{counter: *counter}
	return nil
}

// Get returns a copy of the counter.
func (r *CounterRepository) Get(ctx context.Context, bladeTypeID string) (*inventory.SerialCounter, error) {
	_ = ctx
	slot, err := r.slot(bladeTypeID)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	copy := slot.counter
	slot.mu.Unlock()
	return &copy, nil
}

// Reserve advances the counter under the per-type lock.
func (r *CounterRepository) Reserve(ctx context.Context, bladeTypeID string, quantity int) (inventory.Reservation, error) {
	_ = ctx
	if quantity < 1 || quantity > inventory.MaxReserveQuantity {
		return inventory.Reservation{}, inventory.ErrInvalidQuantity
	}
	slot, err := r.slot(bladeTypeID)
	if err != nil {
		return inventory.Reservation{}, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	start := slot.counter.CurrentCounter + 1
	end := slot.counter.CurrentCounter + quantity
	slot.counter.CurrentCounter = end
	slot.counter.TotalAllocated += quantity
	slot.counter.UpdatedAt = time.Now().UTC()
	return inventory.Reservation{
		BladeTypeID:  bladeTypeID,
		SerialPrefix: slot.counter.SerialPrefix,
		Start:        start,
		End:          end,
	}, nil
}

// Release rolls the counter back when no later reservation has happened.
func (r *CounterRepository) Release(ctx context.Context, res inventory.Reservation) error {
	_ = ctx
	slot, err := r.slot(res.BladeTypeID)
	if err != nil {
		return err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.counter.CurrentCounter != res.End {
		return inventory.ErrAllocationCorruption
	}
	slot.counter.CurrentCounter = res.Start - 1
	slot.counter.TotalAllocated -= res.Quantity()
	slot.counter.UpdatedAt = time.Now().UTC()
	return nil
}

// AdjustActive moves the active total, clamped at zero.
func (r *CounterRepository) AdjustActive(ctx context.Context, bladeTypeID string, delta int) error {
	_ = ctx
	slot, err := r.slot(bladeTypeID)
	if err != nil {
		return err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.counter.TotalActive += delta
	if slot.counter.TotalActive < 0 {
		slot.counter.TotalActive = 0
	}
	slot.counter.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkRetired updates retirement totals.
func (r *CounterRepository) MarkRetired(ctx context.Context, bladeTypeID string, wasActive bool) error {
	_ = ctx
	slot, err := r.slot(bladeTypeID)
	if err != nil {
		return err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if wasActive && slot.counter.TotalActive > 0 {
		slot.counter.TotalActive--
	}
	slot.counter.TotalRetired++
	slot.counter.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *CounterRepository) slot(bladeTypeID string) (*counterSlot, error) {
	r.mu.RLock()
	slot := r.counters[bladeTypeID]
	r.mu.RUnlock()
	if slot == nil {
		return nil, inventory.ErrCounterNotFound
	}
	return slot, nil
}
