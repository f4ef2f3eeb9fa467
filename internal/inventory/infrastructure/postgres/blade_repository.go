package postgres

import (
	"context"
	"database/sql"
	"errors"

	inventory "bladeops/internal/inventory/domain"
)

// BladeRepository persists blade records. The unique index on
// (blade_type_id, serial_number) is the final guard against duplicate serials.
type BladeRepository struct {
	db *sql.DB
}

// NewBladeRepository constructs a repository.
func NewBladeRepository(db *sql.DB) *BladeRepository {
	return &BladeRepository{db: db}
}

// InsertBatch inserts all blades in one transaction; either every row commits
// or none do.
func (r *BladeRepository) InsertBatch(ctx context.Context, blades []inventory.Blade) error {
	if r == nil || r.db == nil {
		return errors.New("blade repo: nil db")
	}
	if len(blades) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, blade := range blades {
		_, err := tx.ExecContext(ctx, `
INSERT INTO blades (
	id, blade_type_id, serial_number, status, default_machine, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			blade.ID, blade.BladeTypeID, blade.SerialNumber, blade.Status,
			blade.DefaultMachine, blade.CreatedAt, blade.UpdatedAt)
		if err != nil {
			_ = tx.Rollback()
			if isUniqueViolation(err) {
				return inventory.ErrDuplicateSerial
			}
			return err
		}
	}
	return tx.Commit()
}

// GetByID fetches a blade.
func (r *BladeRepository) GetByID(ctx context.Context, id string) (*inventory.Blade, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("blade repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, blade_type_id, serial_number, status, default_machine, created_at, updated_at
FROM blades
WHERE id = $1`, id)
	return scanBlade(row)
}

// ListByType lists blades of a type ordered by serial number.
func (r *BladeRepository) ListByType(ctx context.Context, bladeTypeID string) ([]inventory.Blade, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("blade repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, blade_type_id, serial_number, status, default_machine, created_at, updated_at
FROM blades
WHERE blade_type_id = $1
ORDER BY serial_number ASC`, bladeTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []inventory.Blade
	for rows.Next() {
		blade, err := scanBlade(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *blade)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus sets a blade status.
func (r *BladeRepository) UpdateStatus(ctx context.Context, id string, status inventory.BladeStatus) error {
	if r == nil || r.db == nil {
		return errors.New("blade repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE blades SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return inventory.ErrBladeNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlade(row rowScanner) (*inventory.Blade, error) {
	var blade inventory.Blade
	var defaultMachine sql.NullString
	err := row.Scan(&blade.ID, &blade.BladeTypeID, &blade.SerialNumber, &blade.Status,
		&defaultMachine, &blade.CreatedAt, &blade.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, inventory.ErrBladeNotFound
	}
	if err != nil {
		return nil, err
	}
	blade.DefaultMachine = defaultMachine.String
	return &blade, nil
}
