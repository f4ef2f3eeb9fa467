package application

import (
	"context"
	"errors"
	"log"
	"time"

	inventory "bladeops/internal/inventory/domain"
	maintenance "bladeops/internal/maintenance/domain"
	"bladeops/internal/observability/metrics"

	"github.com/google/uuid"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// EventPublisher emits domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// RetirementService applies the terminal lifecycle transition. Retiring a
// blade writes the permanent record, flips the blade status and updates the
// per-type totals.
type RetirementService struct {
	blades      inventory.BladeRepository
	counters    inventory.CounterRepository
	retirements maintenance.RetirementRepository
	publisher   EventPublisher
	alerts      AlertConfig
	clock       Clock
	logger      *log.Logger
}

// NewRetirementService constructs the service.
func NewRetirementService(
	blades inventory.BladeRepository,
	counters inventory.CounterRepository,
	retirements maintenance.RetirementRepository,
	publisher EventPublisher,
	alerts AlertConfig,
	clock Clock,
	logger *log.Logger,
) (*RetirementService, error) {
	if blades == nil {
		return nil, errors.New("retirement service: nil blade repository")
	}
	if counters == nil {
		return nil, errors.New("retirement service: nil counter repository")
	}
	if retirements == nil {
		return nil, errors.New("retirement service: nil retirement repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RetirementService{
		blades:      blades,
		counters:    counters,
		retirements: retirements,
		publisher:   publisher,
		alerts:      alerts,
		clock:       clock,
		logger:      logger,
	}, nil
}

// Retire permanently removes a blade from service. A second retirement of the
// same blade fails with ErrAlreadyRetired; totals move exactly once.
func (s *RetirementService) Retire(ctx context.Context, bladeID, reason, notes, retiredBy string) (*maintenance.RetirementRecord, error) {
	if reason == "" {
		return nil, maintenance.ErrEmptyReason
	}
	blade, err := s.blades.GetByID(ctx, bladeID)
	if err != nil {
		return nil, err
	}
	if blade.Status == inventory.StatusRetired {
		return nil, maintenance.ErrAlreadyRetired
	}
	if _, err := s.retirements.GetByBlade(ctx, bladeID); err == nil {
		return nil, maintenance.ErrAlreadyRetired
	} else if !errors.Is(err, maintenance.ErrRecordNotFound) {
		return nil, err
	}

	wasActive := blade.Status == inventory.StatusActive
	record := &maintenance.RetirementRecord{
		ID:             uuid.NewString(),
		BladeID:        blade.ID,
		BladeTypeID:    blade.BladeTypeID,
		Reason:         reason,
		Notes:          notes,
		RetiredBy:      retiredBy,
		RetirementDate: s.clock.Now().UTC(),
	}
	if err := s.retirements.Create(ctx, record); err != nil {
		return nil, err
	}
	if err := s.blades.UpdateStatus(ctx, bladeID, inventory.StatusRetired); err != nil {
		return nil, err
	}
	if err := s.counters.MarkRetired(ctx, blade.BladeTypeID, wasActive); err != nil {
		return nil, err
	}

	metrics.IncRetirement(reason)
	s.publishRetired(ctx, blade, record)
	s.checkLowStock(ctx, blade.BladeTypeID)
	return record, nil
}

func (s *RetirementService) publishRetired(ctx context.Context, blade *inventory.Blade, record *maintenance.RetirementRecord) {
	if s.publisher == nil {
		return
	}
	event := BladeRetired{
		BladeID:      blade.ID,
		BladeTypeID:  blade.BladeTypeID,
		SerialNumber: blade.SerialNumber,
		Reason:       record.Reason,
		RetiredBy:    record.RetiredBy,
		OccurredAt:   record.RetirementDate,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Printf("publish BladeRetired failed: blade=%s err=%v", blade.ID, err)
	}
}

// checkLowStock is best effort; a failed read or publish never fails the retirement.
func (s *RetirementService) checkLowStock(ctx context.Context, bladeTypeID string) {
	threshold := s.alerts.ThresholdFor(bladeTypeID)
	if threshold <= 0 || s.publisher == nil {
		return
	}
	counter, err := s.counters.Get(ctx, bladeTypeID)
	if err != nil {
		s.logger.Printf("low stock check failed: type=%s err=%v", bladeTypeID, err)
		return
	}
	if counter.TotalActive >= threshold {
		return
	}
	event := LowStockDetected{
		BladeTypeID: bladeTypeID,
		TotalActive: counter.TotalActive,
		Threshold:   threshold,
		OccurredAt:  s.clock.Now().UTC(),
	}
	metrics.IncLowStockAlert(bladeTypeID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Printf("publish LowStockDetected failed: type=%s err=%v", bladeTypeID, err)
	}
}

// History lists retirement records for a blade type.
func (s *RetirementService) History(ctx context.Context, bladeTypeID string) ([]maintenance.RetirementRecord, error) {
	return s.retirements.ListByType(ctx, bladeTypeID)
}
