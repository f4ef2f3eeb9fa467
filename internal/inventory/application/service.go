package application

import (
	"context"
	"errors"
	"time"

	inventory "bladeops/internal/inventory/domain"

	"github.com/google/uuid"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// InventorySummary is the read-side projection for one blade type.
type InventorySummary struct {
	BladeTypeID    string `json:"blade_type_id"`
	SerialPrefix   string `json:"serial_prefix"`
	TotalAllocated int    `json:"total_allocated"`
	TotalActive    int    `json:"total_active"`
	TotalRetired   int    `json:"total_retired"`
	// NextSerialNumber previews the next serial; a concurrent order can
	// invalidate it immediately, so it is never a reservation.
	NextSerialNumber string `json:"next_serial_number"`
}

// CreateBladeTypeInput carries the administrative blade type definition.
type CreateBladeTypeInput struct {
	Code           string
	MachineName    string
	LifecycleHours int
	SerialPrefix   string
}

// Service handles blade type administration, counter initialization, the
// inventory summary projection and blade lifecycle moves short of retirement.
type Service struct {
	types    inventory.BladeTypeRepository
	counters inventory.CounterRepository
	blades   inventory.BladeRepository
	clock    Clock
}

// NewService constructs the service.
func NewService(
	types inventory.BladeTypeRepository,
	counters inventory.CounterRepository,
	blades inventory.BladeRepository,
	clock Clock,
) (*Service, error) {
	if types == nil {
		return nil, errors.New("inventory service: nil blade type repository")
	}
	if counters == nil {
		return nil, errors.New("inventory service: nil counter repository")
	}
	if blades == nil {
		return nil, errors.New("inventory service: nil blade repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{types: types, counters: counters, blades: blades, clock: clock}, nil
}

// CreateBladeType registers a blade type and initializes its counter at zero.
func (s *Service) CreateBladeType(ctx context.Context, input CreateBladeTypeInput) (*inventory.BladeType, error) {
	if input.Code == "" {
		return nil, errors.New("inventory service: empty code")
	}
	if !inventory.ValidPrefix(input.SerialPrefix) {
		return nil, inventory.ErrSerialOutOfRange
	}
	now := s.clock.Now().UTC()
	bladeType := &inventory.BladeType{
		ID:             uuid.NewString(),
		Code:           input.Code,
		MachineName:    input.MachineName,
		LifecycleHours: input.LifecycleHours,
		SerialPrefix:   input.SerialPrefix,
		CreatedAt:      now,
	}
	if err := s.types.Create(ctx, bladeType); err != nil {
		return nil, err
	}
	if err := s.InitializeCounter(ctx, bladeType.ID, input.SerialPrefix); err != nil {
		return nil, err
	}
	return bladeType, nil
}

// InitializeCounter creates the serial counter for a blade type. An existing
// counter fails with ErrCounterExists; there is no silent reset.
func (s *Service) InitializeCounter(ctx context.Context, bladeTypeID, prefix string) error {
	counter, err := inventory.NewSerialCounter(bladeTypeID, prefix, s.clock.Now())
	if err != nil {
		return err
	}
	return s.counters.Create(ctx, counter)
}

// Summarize builds the inventory summary for one blade type.
func (s *Service) Summarize(ctx context.Context, bladeTypeID string) (*InventorySummary, error) {
	counter, err := s.counters.Get(ctx, bladeTypeID)
	if err != nil {
		return nil, err
	}
	next, err := counter.NextSerial()
	if err != nil {
		// Counter exhausted the 5-digit space; surface the summary without a preview.
		next = ""
	}
	return &InventorySummary{
		BladeTypeID:      counter.BladeTypeID,
		SerialPrefix:     counter.SerialPrefix,
		TotalAllocated:   counter.TotalAllocated,
		TotalActive:      counter.TotalActive,
		TotalRetired:     counter.TotalRetired,
		NextSerialNumber: next,
	}, nil
}

// UpdateBladeStatus applies a lifecycle move (mount, sharpen, return to
// service). Retirement is rejected here; it must go through the retirement
// service so the permanent record is written.
func (s *Service) UpdateBladeStatus(ctx context.Context, bladeID string, status inventory.BladeStatus) (*inventory.Blade, error) {
	if status == inventory.StatusRetired {
		return nil, inventory.ErrInvalidStatus
	}
	blade, err := s.blades.GetByID(ctx, bladeID)
	if err != nil {
		return nil, err
	}
	if !inventory.CanTransition(blade.Status, status) {
		return nil, inventory.ErrInvalidStatus
	}
	if err := s.blades.UpdateStatus(ctx, bladeID, status); err != nil {
		return nil, err
	}

	delta := 0
	if status == inventory.StatusActive {
		delta = 1
	} else if blade.Status == inventory.StatusActive {
		delta = -1
	}
	if delta != 0 {
		if err := s.counters.AdjustActive(ctx, blade.BladeTypeID, delta); err != nil {
			return nil, err
		}
	}
	blade.Status = status
	return blade, nil
}

// GetBladeType returns one blade type definition.
func (s *Service) GetBladeType(ctx context.Context, id string) (*inventory.BladeType, error) {
	return s.types.Get(ctx, id)
}

// ListBladeTypes returns all blade type definitions.
func (s *Service) ListBladeTypes(ctx context.Context) ([]inventory.BladeType, error) {
	return s.types.List(ctx)
}

// GetBlade returns one blade record.
func (s *Service) GetBlade(ctx context.Context, id string) (*inventory.Blade, error) {
	return s.blades.GetByID(ctx, id)
}

// ListBlades returns all blades of one type.
func (s *Service) ListBlades(ctx context.Context, bladeTypeID string) ([]inventory.Blade, error) {
	return s.blades.ListByType(ctx, bladeTypeID)
}
