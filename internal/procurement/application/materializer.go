package application

import (
	"context"
	"errors"
	"time"

	inventory "bladeops/internal/inventory/domain"

	"github.com/google/uuid"
)

// Materializer expands a reserved serial range into concrete blade records.
type Materializer struct {
	blades inventory.BladeRepository
	clock  Clock
}

// NewMaterializer constructs a materializer.
func NewMaterializer(blades inventory.BladeRepository, clock Clock) (*Materializer, error) {
	if blades == nil {
		return nil, errors.New("materializer: nil blade repository")
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Materializer{blades: blades, clock: clock}, nil
}

// Materialize creates one blade per serial in the inclusive range, all with
// status new, in a single batch. A duplicate serial means the reservation
// protocol was violated and is surfaced as a fatal integrity error.
func (m *Materializer) Materialize(ctx context.Context, res inventory.Reservation) ([]inventory.Blade, error) {
	now := m.clock.Now().UTC()
	blades := make([]inventory.Blade, 0, res.Quantity())
	for number := res.Start; number <= res.End; number++ {
		serial, err := inventory.FormatSerial(res.SerialPrefix, number)
		if err != nil {
			return nil, err
		}
		blades = append(blades, inventory.Blade{
			ID:           uuid.NewString(),
			BladeTypeID:  res.BladeTypeID,
			SerialNumber: serial,
			Status:       inventory.StatusNew,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if err := m.blades.InsertBatch(ctx, blades); err != nil {
		return nil, err
	}
	return blades, nil
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
