package inventory

import "context"

// BladeTypeRepository stores blade type definitions.
type BladeTypeRepository interface {
	Create(ctx context.Context, bladeType *BladeType) error
	Get(ctx context.Context, id string) (*BladeType, error)
	List(ctx context.Context) ([]BladeType, error)
}

// CounterRepository stores per-type serial counters. Reserve and Release are
// the only operations that move CurrentCounter; both are atomic per blade type
// and reservations for different types never block each other.
type CounterRepository interface {
	Create(ctx context.Context, counter *SerialCounter) error
	Get(ctx context.Context, bladeTypeID string) (*SerialCounter, error)

	// Reserve atomically advances the counter by quantity and returns the
	// reserved inclusive range. Fails with ErrCounterNotFound, ErrInvalidQuantity
	// or ErrConflict; a conflict means the whole reservation must be retried.
	Reserve(ctx context.Context, bladeTypeID string, quantity int) (Reservation, error)

	// Release compensates a reservation whose materialization failed. It only
	// succeeds while the counter still sits at res.End; once a later Reserve has
	// happened the range is lost and ErrAllocationCorruption is returned.
	Release(ctx context.Context, res Reservation) error

	// AdjustActive moves the active total by delta, clamped at zero.
	AdjustActive(ctx context.Context, bladeTypeID string, delta int) error

	// MarkRetired moves one blade from active to retired totals. TotalActive is
	// only decremented when the blade was actually active, and never below zero.
	MarkRetired(ctx context.Context, bladeTypeID string, wasActive bool) error
}

// BladeRepository stores individual blade records. Serial uniqueness per type
// is enforced by the store, not by application-level scans.
type BladeRepository interface {
	InsertBatch(ctx context.Context, blades []Blade) error
	GetByID(ctx context.Context, id string) (*Blade, error)
	ListByType(ctx context.Context, bladeTypeID string) ([]Blade, error)
	UpdateStatus(ctx context.Context, id string, status BladeStatus) error
}
