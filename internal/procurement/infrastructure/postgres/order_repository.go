package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	procurement "bladeops/internal/procurement/domain"
)

// OrderRepository persists purchase orders.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository constructs a repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order.
func (r *OrderRepository) Create(ctx context.Context, order *procurement.PurchaseOrder) error {
	if r == nil || r.db == nil {
		return errors.New("order repo: nil db")
	}
	if order == nil {
		return errors.New("order repo: nil order")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO purchase_orders (
	id, blade_type_id, quantity, supplier_name, po_number, unit_cost,
	order_date, expected_delivery_date, actual_delivery_date, status,
	start_number, end_number, serial_number_start, serial_number_end,
	created_at, updated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
)`,
		order.ID, order.BladeTypeID, order.Quantity, order.SupplierName, order.PONumber, order.UnitCost,
		order.OrderDate, order.ExpectedDeliveryDate, order.ActualDeliveryDate, order.Status,
		order.StartNumber, order.EndNumber, order.SerialNumberStart, order.SerialNumberEnd,
		order.CreatedAt, order.UpdatedAt)
	return err
}

// GetByID fetches an order.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*procurement.PurchaseOrder, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("order repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, blade_type_id, quantity, supplier_name, po_number, unit_cost,
	order_date, expected_delivery_date, actual_delivery_date, status,
	start_number, end_number, serial_number_start, serial_number_end,
	created_at, updated_at
FROM purchase_orders
WHERE id = $1`, id)
	return scanOrder(row)
}

// ListByType lists orders for a blade type, newest first.
func (r *OrderRepository) ListByType(ctx context.Context, bladeTypeID string) ([]procurement.PurchaseOrder, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("order repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, blade_type_id, quantity, supplier_name, po_number, unit_cost,
	order_date, expected_delivery_date, actual_delivery_date, status,
	start_number, end_number, serial_number_start, serial_number_end,
	created_at, updated_at
FROM purchase_orders
WHERE blade_type_id = $1
ORDER BY created_at DESC`, bladeTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []procurement.PurchaseOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus sets the order status and, when provided, the delivery date.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status procurement.OrderStatus, actualDelivery *time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("order repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE purchase_orders
SET status = $2,
	actual_delivery_date = COALESCE($3, actual_delivery_date),
	updated_at = $4
WHERE id = $1`, id, status, actualDelivery, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return procurement.ErrOrderNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	var poNumber sql.NullString
	var expected, actual sql.NullTime
	err := row.Scan(&order.ID, &order.BladeTypeID, &order.Quantity, &order.SupplierName,
		&poNumber, &order.UnitCost, &order.OrderDate, &expected, &actual, &order.Status,
		&order.StartNumber, &order.EndNumber, &order.SerialNumberStart, &order.SerialNumberEnd,
		&order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, procurement.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	order.PONumber = poNumber.String
	if expected.Valid {
		order.ExpectedDeliveryDate = &expected.Time
	}
	if actual.Valid {
		order.ActualDeliveryDate = &actual.Time
	}
	return &order, nil
}
