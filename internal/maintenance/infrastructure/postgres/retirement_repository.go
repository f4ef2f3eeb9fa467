package postgres

import (
	"context"
	"database/sql"
	"errors"

	maintenance "bladeops/internal/maintenance/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// RetirementRepository persists retirement records. The unique index on
// blade_id enforces at most one retirement per blade.
type RetirementRepository struct {
	db *sql.DB
}

// NewRetirementRepository constructs a repository.
func NewRetirementRepository(db *sql.DB) *RetirementRepository {
	return &RetirementRepository{db: db}
}

// Create inserts a record; a second retirement for the same blade fails.
func (r *RetirementRepository) Create(ctx context.Context, record *maintenance.RetirementRecord) error {
	if r == nil || r.db == nil {
		return errors.New("retirement repo: nil db")
	}
	if record == nil {
		return errors.New("retirement repo: nil record")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO retirement_records (
	id, blade_id, blade_type_id, reason, notes, retired_by, retirement_date
) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		record.ID, record.BladeID, record.BladeTypeID, record.Reason,
		record.Notes, record.RetiredBy, record.RetirementDate)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return maintenance.ErrAlreadyRetired
	}
	return err
}

// GetByBlade fetches the record for a blade.
func (r *RetirementRepository) GetByBlade(ctx context.Context, bladeID string) (*maintenance.RetirementRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("retirement repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, blade_id, blade_type_id, reason, notes, retired_by, retirement_date
FROM retirement_records
WHERE blade_id = $1`, bladeID)
	return scanRecord(row)
}

// ListByType lists records for a blade type ordered by retirement date.
func (r *RetirementRepository) ListByType(ctx context.Context, bladeTypeID string) ([]maintenance.RetirementRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("retirement repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, blade_id, blade_type_id, reason, notes, retired_by, retirement_date
FROM retirement_records
WHERE blade_type_id = $1
ORDER BY retirement_date ASC`, bladeTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []maintenance.RetirementRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*maintenance.RetirementRecord, error) {
	var record maintenance.RetirementRecord
	var notes sql.NullString
	err := row.Scan(&record.ID, &record.BladeID, &record.BladeTypeID, &record.Reason,
		&notes, &record.RetiredBy, &record.RetirementDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, maintenance.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	record.Notes = notes.String
	return &record, nil
}
