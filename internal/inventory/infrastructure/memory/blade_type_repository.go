package memory

import (
	"context"
	"sort"
	"sync"

	inventory "bladeops/internal/inventory/domain"
)

// BladeTypeRepository is an in-memory blade type store.
type BladeTypeRepository struct {
	mu    sync.RWMutex
	byID  map[string]*inventory.BladeType
	codes map[string]string
}

// NewBladeTypeRepository constructs a repository.
func NewBladeTypeRepository() *BladeTypeRepository {
	return &BladeTypeRepository{
		byID:  make(map[string]*inventory.BladeType),
		codes: make(map[string]string),
	}
}

// Create stores a blade type; codes are unique.
func (r *BladeTypeRepository) Create(ctx context.Context, bladeType *inventory.BladeType) error {
	_ = ctx
	if bladeType == nil {
		return inventory.ErrBladeTypeNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[bladeType.ID]; ok {
		return inventory.ErrBladeTypeExists
	}
	if _, ok := r.codes[bladeType.Code]; ok {
		return inventory.ErrBladeTypeExists
	}
	copy := *bladeType
	r.byID[bladeType.ID] = &copy
	r.codes[bladeType.Code] = bladeType.ID
	return nil
}

// Get returns a copy of a blade type.
func (r *BladeTypeRepository) Get(ctx context.Context, id string) (*inventory.BladeType, error) {
	_ = ctx
	r.mu.RLock()
	bladeType := r.byID[id]
	r.mu.RUnlock()
	if bladeType == nil {
		return nil, inventory.ErrBladeTypeNotFound
	}
	copy := *bladeType
	return &copy, nil
}

// List returns all blade types ordered by code.
func (r *BladeTypeRepository) List(ctx context.Context) ([]inventory.BladeType, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]inventory.BladeType, 0, len(r.byID))
	for _, bladeType := range r.byID {
		result = append(result, *bladeType)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}
