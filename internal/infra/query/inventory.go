package query

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const upsertInventoryCounter = `INSERT INTO inventory_counters (component_id, remaining_units)
VALUES ($1, $2)
ON CONFLICT (component_id) DO UPDATE SET remaining_units = EXCLUDED.remaining_units`

func (q *Queries) UpsertInventoryCounter(ctx context.Context, db DBTX, componentID string, units int64) error {
	_, err := db.Exec(ctx, upsertInventoryCounter, componentID, units)
	return err
}

const getInventoryCounter = `SELECT component_id, remaining_units, last_deducted_at
FROM inventory_counters WHERE component_id = $1`

func (q *Queries) GetInventoryCounter(ctx context.Context, db DBTX, componentID string) (InventoryCounter, error) {
	rows, err := db.Query(ctx, getInventoryCounter, componentID)
	if err != nil {
		return InventoryCounter{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[InventoryCounter])
}

const decrementInventory = `UPDATE inventory_counters
SET remaining_units = remaining_units - $2, last_deducted_at = $3
WHERE component_id = $1 AND remaining_units >= $2`

func (q *Queries) DecrementInventory(ctx context.Context, db DBTX, componentID string, units int64, at time.Time) (bool, error) {
	return q.swap(ctx, db, decrementInventory, componentID, units, at)
}

const incrementInventory = `UPDATE inventory_counters
SET remaining_units = remaining_units + $2
WHERE component_id = $1`

func (q *Queries) IncrementInventory(ctx context.Context, db DBTX, componentID string, units int64) (bool, error) {
	return q.swap(ctx, db, incrementInventory, componentID, units)
}

const insertDeductionMarker = `INSERT INTO inventory_deductions (order_id, applied_at)
VALUES ($1, $2)
ON CONFLICT (order_id) DO NOTHING`

// InsertDeductionMarker reports false when the order already has a marker.
func (q *Queries) InsertDeductionMarker(ctx context.Context, db DBTX, orderID uuid.UUID, at time.Time) (bool, error) {
	return q.swap(ctx, db, insertDeductionMarker, orderID, at)
}

const getDeductionMarker = `SELECT order_id, applied_at, recredited_at FROM inventory_deductions WHERE order_id = $1`

func (q *Queries) GetDeductionMarker(ctx context.Context, db DBTX, orderID uuid.UUID) (InventoryDeduction, error) {
	rows, err := db.Query(ctx, getDeductionMarker, orderID)
	if err != nil {
		return InventoryDeduction{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[InventoryDeduction])
}

const markDeductionRecredited = `UPDATE inventory_deductions SET recredited_at = $2
WHERE order_id = $1 AND recredited_at IS NULL`

func (q *Queries) MarkDeductionRecredited(ctx context.Context, db DBTX, orderID uuid.UUID, at time.Time) (bool, error) {
	return q.swap(ctx, db, markDeductionRecredited, orderID, at)
}

const createDeductionLine = `INSERT INTO inventory_deduction_lines (order_id, component_id, units) VALUES ($1, $2, $3)`

func (q *Queries) CreateDeductionLine(ctx context.Context, db DBTX, arg InventoryDeductionLine) error {
	_, err := db.Exec(ctx, createDeductionLine, arg.OrderID, arg.ComponentID, arg.Units)
	return err
}

const listDeductionLines = `SELECT order_id, component_id, units FROM inventory_deduction_lines
WHERE order_id = $1 ORDER BY component_id`

func (q *Queries) ListDeductionLines(ctx context.Context, db DBTX, orderID uuid.UUID) ([]InventoryDeductionLine, error) {
	rows, err := db.Query(ctx, listDeductionLines, orderID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[InventoryDeductionLine])
}
