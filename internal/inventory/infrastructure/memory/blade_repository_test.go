package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	inventory "bladeops/internal/inventory/domain"
)

func sampleBlade(id, typeID, serial string) inventory.Blade {
	now := time.Now().UTC()
	return inventory.Blade{
		ID:           id,
		BladeTypeID:  typeID,
		SerialNumber: serial,
		Status:       inventory.StatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestBladeRepository_InsertBatchAllOrNothing(t *testing.T) {
	repo := NewBladeRepository()
	ctx := context.Background()

	if err := repo.InsertBatch(ctx, []inventory.Blade{
		sampleBlade("b-1", "type-1", "B400001"),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	err := repo.InsertBatch(ctx, []inventory.Blade{
		sampleBlade("b-2", "type-1", "B400002"),
		sampleBlade("b-3", "type-1", "B400001"), // taken
	})
	if !errors.Is(err, inventory.ErrDuplicateSerial) {
		t.Fatalf("expected ErrDuplicateSerial, got %v", err)
	}

	// The non-conflicting blade from the failed batch must not exist.
	if _, err := repo.GetByID(ctx, "b-2"); !errors.Is(err, inventory.ErrBladeNotFound) {
		t.Fatalf("expected b-2 absent, got %v", err)
	}
}

func TestBladeRepository_SerialUniquePerType(t *testing.T) {
	repo := NewBladeRepository()
	ctx := context.Background()

	if err := repo.InsertBatch(ctx, []inventory.Blade{
		sampleBlade("b-1", "type-1", "B400001"),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// Same serial under a different type is fine.
	if err := repo.InsertBatch(ctx, []inventory.Blade{
		sampleBlade("b-2", "type-2", "B400001"),
	}); err != nil {
		t.Fatalf("insert other type: %v", err)
	}
}

func TestBladeRepository_ListByTypeOrdered(t *testing.T) {
	repo := NewBladeRepository()
	ctx := context.Background()

	if err := repo.InsertBatch(ctx, []inventory.Blade{
		sampleBlade("b-2", "type-1", "B400002"),
		sampleBlade("b-1", "type-1", "B400001"),
		sampleBlade("b-9", "type-2", "B400009"),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	blades, err := repo.ListByType(ctx, "type-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(blades) != 2 {
		t.Fatalf("expected 2 blades, got %d", len(blades))
	}
	if blades[0].SerialNumber != "B400001" || blades[1].SerialNumber != "B400002" {
		t.Fatalf("unexpected order: %s, %s", blades[0].SerialNumber, blades[1].SerialNumber)
	}
}

func TestBladeRepository_UpdateStatus(t *testing.T) {
	repo := NewBladeRepository()
	ctx := context.Background()

	if err := repo.InsertBatch(ctx, []inventory.Blade{
		sampleBlade("b-1", "type-1", "B400001"),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.UpdateStatus(ctx, "b-1", inventory.StatusActive); err != nil {
		t.Fatalf("update: %v", err)
	}
	blade, err := repo.GetByID(ctx, "b-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if blade.Status != inventory.StatusActive {
		t.Fatalf("expected active, got %s", blade.Status)
	}

	if err := repo.UpdateStatus(ctx, "missing", inventory.StatusActive); !errors.Is(err, inventory.ErrBladeNotFound) {
		t.Fatalf("expected ErrBladeNotFound, got %v", err)
	}
}
