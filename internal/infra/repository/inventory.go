package repository

import (
	"context"
	"time"

	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/infra/query"

	"github.com/google/uuid"
)

type InventoryWriteQueries interface {
	InsertDeductionMarker(ctx context.Context, db query.DBTX, orderID uuid.UUID, at time.Time) (bool, error)
	DecrementInventory(ctx context.Context, db query.DBTX, componentID string, units int64, at time.Time) (bool, error)
	IncrementInventory(ctx context.Context, db query.DBTX, componentID string, units int64) (bool, error)
	CreateDeductionLine(ctx context.Context, db query.DBTX, arg query.InventoryDeductionLine) error
	MarkDeductionRecredited(ctx context.Context, db query.DBTX, orderID uuid.UUID, at time.Time) (bool, error)
}

type InventoryRepository struct {
	queries InventoryWriteQueries
	db      query.DBTX
}

func NewInventoryRepository(queries InventoryWriteQueries, db query.DBTX) *InventoryRepository {
	return &InventoryRepository{
		queries: queries,
		db:      db,
	}
}

func (r *InventoryRepository) InsertMarker(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error) {
	ok, err := r.queries.InsertDeductionMarker(ctx, r.db, orderID, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert deduction marker", err)
	}
	return ok, nil
}

func (r *InventoryRepository) Decrement(ctx context.Context, componentID string, units inventory.Volume, now time.Time) (bool, error) {
	ok, err := r.queries.DecrementInventory(ctx, r.db, componentID, int64(units), now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to decrement inventory", err)
	}
	return ok, nil
}

func (r *InventoryRepository) Increment(ctx context.Context, componentID string, units inventory.Volume) (bool, error) {
	ok, err := r.queries.IncrementInventory(ctx, r.db, componentID, int64(units))
	if err != nil {
		return false, infra.WrapRepoErr("failed to increment inventory", err)
	}
	return ok, nil
}

func (r *InventoryRepository) SaveLines(ctx context.Context, orderID uuid.UUID, lines []inventory.Line) error {
	for _, l := range lines {
		err := r.queries.CreateDeductionLine(ctx, r.db, query.InventoryDeductionLine{
			OrderID:     orderID,
			ComponentID: l.ComponentID,
			Units:       int64(l.Volume),
		})
		if err != nil {
			return infra.WrapRepoErr("failed to save deduction line", err)
		}
	}
	return nil
}

func (r *InventoryRepository) MarkRecredited(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error) {
	ok, err := r.queries.MarkDeductionRecredited(ctx, r.db, orderID, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark deduction recredited", err)
	}
	return ok, nil
}
