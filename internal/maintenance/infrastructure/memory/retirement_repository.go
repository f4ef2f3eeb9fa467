package memory

import (
	"context"
	"sort"
	"sync"

	maintenance "bladeops/internal/maintenance/domain"
)

// RetirementRepository is an in-memory retirement record store.
type RetirementRepository struct {
	mu      sync.RWMutex
	byBlade map[string]*maintenance.RetirementRecord
}

// NewRetirementRepository constructs a repository.
func NewRetirementRepository() *RetirementRepository {
	return &RetirementRepository{byBlade: make(map[string]*maintenance.RetirementRecord)}
}

// Create stores a record; one per blade.
func (r *RetirementRepository) Create(ctx context.Context, record *maintenance.RetirementRecord) error {
	_ = ctx
	if record == nil {
		return maintenance.ErrRecordNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byBlade[record.BladeID]; ok {
		return maintenance.ErrAlreadyRetired
	}
	copy := *record
	r.byBlade[record.BladeID] = &copy
	return nil
}

// GetByBlade returns the record for a blade.
func (r *RetirementRepository) GetByBlade(ctx context.Context, bladeID string) (*maintenance.RetirementRecord, error) {
	_ = ctx
	r.mu.RLock()
	record := r.byBlade[bladeID]
	r.mu.RUnlock()
	if record == nil {
		return nil, maintenance.ErrRecordNotFound
	}
	copy := *record
	return &copy, nil
}

// ListByType returns records for a blade type ordered by retirement date.
func (r *RetirementRepository) ListByType(ctx context.Context, bladeTypeID string) ([]maintenance.RetirementRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []maintenance.RetirementRecord
	for _, record := range r.byBlade {
		if record.BladeTypeID == bladeTypeID {
			result = append(result, *record)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RetirementDate.Before(result[j].RetirementDate)
	})
	return result, nil
}
