package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	inventory "bladeops/internal/inventory/domain"
)

// BladeRepository is an in-memory blade store enforcing serial uniqueness per type.
type BladeRepository struct {
	mu      sync.RWMutex
	byID    map[string]*inventory.Blade
	serials map[string]map[string]string // bladeTypeID -> serial -> blade id
}

// NewBladeRepository constructs a repository.
func NewBladeRepository() *BladeRepository {
	return &BladeRepository{
		byID:    make(map[string]*inventory.Blade),
		serials: make(map[string]map[string]string),
	}
}

// InsertBatch inserts all blades or none of them.
func (r *BladeRepository) InsertBatch(ctx context.Context, blades []inventory.Blade) error {
	_ = ctx
	if len(blades) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, blade := range blades {
		if _, ok := r.byID[blade.ID]; ok {
			return inventory.ErrDuplicateSerial
		}
		if id := r.serials[blade.BladeTypeID][blade.SerialNumber]; id != "" {
			return inventory.ErrDuplicateSerial
		}
	}
	for i := range blades {
		blade := blades[i]
		r.byID[blade.ID] = &blade
		if r.serials[blade.BladeTypeID] == nil {
			r.serials[blade.BladeTypeID] = make(map[string]string)
		}
		r.serials[blade.BladeTypeID][blade.SerialNumber] = blade.ID
	}
	return nil
}

// GetByID returns a copy of a blade.
func (r *BladeRepository) GetByID(ctx context.Context, id string) (*inventory.Blade, error) {
	_ = ctx
	r.mu.RLock()
	blade := r.byID[id]
	r.mu.RUnlock()
	if blade == nil {
		return nil, inventory.ErrBladeNotFound
	}
	copy := *blade
	return &copy, nil
}

// ListByType returns all blades of a type ordered by serial number.
func (r *BladeRepository) ListByType(ctx context.Context, bladeTypeID string) ([]inventory.Blade, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []inventory.Blade
	for _, blade := range r.byID {
		if blade.BladeTypeID == bladeTypeID {
			result = append(result, *blade)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SerialNumber < result[j].SerialNumber
	})
	return result, nil
}

// UpdateStatus sets a blade status.
func (r *BladeRepository) UpdateStatus(ctx context.Context, id string, status inventory.BladeStatus) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	blade := r.byID[id]
	if blade == nil {
		return inventory.ErrBladeNotFound
	}
	blade.Status = status
	blade.UpdatedAt = time.Now().UTC()
	return nil
}
