package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	inventory "bladeops/internal/inventory/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// CounterRepository persists serial counters. Reserve relies on the row lock
// taken by UPDATE, so reservations for the same blade type serialize on the
// counter row while other types proceed unblocked.
type CounterRepository struct {
	db *sql.DB
}

// NewCounterRepository constructs a repository.
func NewCounterRepository(db *sql.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// Create inserts a fresh counter; an existing counter is never reset.
func (r *CounterRepository) Create(ctx context.Context, counter *inventory.SerialCounter) error {
	if r == nil || r.db == nil {
		return errors.New("counter repo: nil db")
	}
	if counter == nil {
		return errors.New("counter repo: nil counter")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO serial_counters (
	blade_type_id, serial_prefix, current_counter, total_allocated,
	total_active, total_retired, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		counter.BladeTypeID, counter.SerialPrefix, counter.CurrentCounter, counter.TotalAllocated,
		counter.TotalActive, counter.TotalRetired, counter.CreatedAt, counter.UpdatedAt)
	if isUniqueViolation(err) {
		return inventory.ErrCounterExists
	}
	return err
}

// Get loads a counter.
func (r *CounterRepository) Get(ctx context.Context, bladeTypeID string) (*inventory.SerialCounter, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("counter repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT blade_type_id, serial_prefix, current_counter, total_allocated,
	total_active, total_retired, created_at, updated_at
FROM serial_counters
WHERE blade_type_id = $1`, bladeTypeID)

	var counter inventory.SerialCounter
	err := row.Scan(&counter.BladeTypeID, &counter.SerialPrefix, &counter.CurrentCounter,
		&counter.TotalAllocated, &counter.TotalActive, &counter.TotalRetired,
		&counter.CreatedAt, &counter.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, inventory.ErrCounterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

// Reserve advances the counter in a single atomic statement. The read and the
// write happen in one UPDATE, so no stale counter value can be observed.
func (r *CounterRepository) Reserve(ctx context.Context, bladeTypeID string, quantity int) (inventory.Reservation, error) {
	if r == nil || r.db == nil {
		return inventory.Reservation{}, errors.New("counter repo: nil db")
	}
	if quantity < 1 || quantity > inventory.MaxReserveQuantity {
		return inventory.Reservation{}, inventory.ErrInvalidQuantity
	}
	row := r.db.QueryRowContext(ctx, `
UPDATE serial_counters
SET current_counter = current_counter + $2,
	total_allocated = total_allocated + $2,
	updated_at = $3
WHERE blade_type_id = $1
RETURNING current_counter, serial_prefix`, bladeTypeID, quantity, time.Now().UTC())

	var end int
	var prefix string
	err := row.Scan(&end, &prefix)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Reservation{}, inventory.ErrCounterNotFound
	}
	if err != nil {
		return inventory.Reservation{}, err
	}
	return inventory.Reservation{
		BladeTypeID:  bladeTypeID,
		SerialPrefix: prefix,
		Start:        end - quantity + 1,
		End:          end,
	}, nil
}

// Release rolls the counter back after a failed materialization. The guard on
// current_counter means it only succeeds while no later reservation happened.
func (r *CounterRepository) Release(ctx context.Context, res inventory.Reservation) error {
	if r == nil || r.db == nil {
		return errors.New("counter repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE serial_counters
SET current_counter = $2,
	total_allocated = total_allocated - $3,
	updated_at = $4
WHERE blade_type_id = $1 AND current_counter = $5`,
		res.BladeTypeID, res.Start-1, res.Quantity(), time.Now().UTC(), res.End)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, getErr := r.Get(ctx, res.BladeTypeID); errors.Is(getErr, inventory.ErrCounterNotFound) {
			return inventory.ErrCounterNotFound
		}
		return inventory.ErrAllocationCorruption
	}
	return nil
}

// AdjustActive moves the active total, clamped at zero.
func (r *CounterRepository) AdjustActive(ctx context.Context, bladeTypeID string, delta int) error {
	if r == nil || r.db == nil {
		return errors.New("counter repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE serial_counters
SET total_active = GREATEST(total_active + $2, 0), updated_at = $3
WHERE blade_type_id = $1`, bladeTypeID, delta, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(result)
}

// MarkRetired moves one blade from the active to the retired total.
func (r *CounterRepository) MarkRetired(ctx context.Context, bladeTypeID string, wasActive bool) error {
	if r == nil || r.db == nil {
		return errors.New("counter repo: nil db")
	}
	decrement := 0
	if wasActive {
		decrement = 1
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE serial_counters
SET total_active = GREATEST(total_active - $2, 0),
	total_retired = total_retired + 1,
	updated_at = $3
WHERE blade_type_id = $1`, bladeTypeID, decrement, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return inventory.ErrCounterNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
