package postgres

import (
	"context"
	"database/sql"
	"errors"

	inventory "bladeops/internal/inventory/domain"
)

// BladeTypeRepository persists blade type definitions.
type BladeTypeRepository struct {
	db *sql.DB
}

// NewBladeTypeRepository constructs a repository.
func NewBladeTypeRepository(db *sql.DB) *BladeTypeRepository {
	return &BladeTypeRepository{db: db}
}

// Create inserts a blade type; codes are unique.
func (r *BladeTypeRepository) Create(ctx context.Context, bladeType *inventory.BladeType) error {
	if r == nil || r.db == nil {
		return errors.New("blade type repo: nil db")
	}
	if bladeType == nil {
		return errors.New("blade type repo: nil blade type")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO blade_types (
	id, code, machine_name, lifecycle_hours, serial_prefix, created_at
) VALUES ($1,$2,$3,$4,$5,$6)`,
		bladeType.ID, bladeType.Code, bladeType.MachineName, bladeType.LifecycleHours,
		bladeType.SerialPrefix, bladeType.CreatedAt)
	if isUniqueViolation(err) {
		return inventory.ErrBladeTypeExists
	}
	return err
}

// Get fetches a blade type.
func (r *BladeTypeRepository) Get(ctx context.Context, id string) (*inventory.BladeType, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("blade type repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, code, machine_name, lifecycle_hours, serial_prefix, created_at
FROM blade_types
WHERE id = $1`, id)

	var bladeType inventory.BladeType
	err := row.Scan(&bladeType.ID, &bladeType.Code, &bladeType.MachineName,
		&bladeType.LifecycleHours, &bladeType.SerialPrefix, &bladeType.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, inventory.ErrBladeTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bladeType, nil
}

// List returns all blade types ordered by code.
func (r *BladeTypeRepository) List(ctx context.Context) ([]inventory.BladeType, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("blade type repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, code, machine_name, lifecycle_hours, serial_prefix, created_at
FROM blade_types
ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []inventory.BladeType
	for rows.Next() {
		var bladeType inventory.BladeType
		if err := rows.Scan(&bladeType.ID, &bladeType.Code, &bladeType.MachineName,
			&bladeType.LifecycleHours, &bladeType.SerialPrefix, &bladeType.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, bladeType)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
