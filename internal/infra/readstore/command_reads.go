package readstore

import (
	"context"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/infra/query"
	"scent-fulfillment/internal/infra/repository/converter"
	"scent-fulfillment/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type CommandReadQueries interface {
	GetOrderByID(ctx context.Context, db query.DBTX, id uuid.UUID) (query.Order, error)
	GetOrderByNumber(ctx context.Context, db query.DBTX, orderNumber string) (query.Order, error)
	GetOrderByPaymentID(ctx context.Context, db query.DBTX, paymentID string) (query.Order, error)
	CountOrdersByStatus(ctx context.Context, db query.DBTX, userID uuid.UUID, statuses []string) (int64, error)
	GetCouponByID(ctx context.Context, db query.DBTX, id uuid.UUID) (query.Coupon, error)
	GetUserCouponByID(ctx context.Context, db query.DBTX, id uuid.UUID) (query.UserCoupon, error)
	CountUserCouponClaims(ctx context.Context, db query.DBTX, userID, couponID uuid.UUID) (int64, error)
	GetDeductionMarker(ctx context.Context, db query.DBTX, orderID uuid.UUID) (query.InventoryDeduction, error)
	ListDeductionLines(ctx context.Context, db query.DBTX, orderID uuid.UUID) ([]query.InventoryDeductionLine, error)
}

// CommandReads serves the lookups of write paths. Inside a transaction it is
// bound to the tx so reads observe the transaction's own writes.
type CommandReads struct {
	queries CommandReadQueries
	db      query.DBTX
}

func NewCommandReads(queries CommandReadQueries, db query.DBTX) *CommandReads {
	return &CommandReads{
		queries: queries,
		db:      db,
	}
}

func (r *CommandReads) OrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	row, err := r.queries.GetOrderByID(ctx, r.db, id)
	return r.toOrder(row, err)
}

func (r *CommandReads) OrderByNumber(ctx context.Context, number order.Number) (*order.Order, error) {
	row, err := r.queries.GetOrderByNumber(ctx, r.db, number.String())
	return r.toOrder(row, err)
}

func (r *CommandReads) OrderByPaymentID(ctx context.Context, paymentID string) (*order.Order, error) {
	row, err := r.queries.GetOrderByPaymentID(ctx, r.db, paymentID)
	return r.toOrder(row, err)
}

func (r *CommandReads) toOrder(row query.Order, err error) (*order.Order, error) {
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}
	o, err := converter.OrderFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert order row", err)
	}
	return o, nil
}

func (r *CommandReads) CountCompletedOrders(ctx context.Context, userID uuid.UUID) (int, error) {
	statuses := make([]string, 0, len(order.CompletedStatuses()))
	for _, s := range order.CompletedStatuses() {
		statuses = append(statuses, s.String())
	}
	n, err := r.queries.CountOrdersByStatus(ctx, r.db, userID, statuses)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count completed orders", err)
	}
	return int(n), nil
}

func (r *CommandReads) CouponByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	row, err := r.queries.GetCouponByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon by ID", err)
	}
	c, err := converter.CouponFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert coupon row", err)
	}
	return c, nil
}

func (r *CommandReads) UserCouponByID(ctx context.Context, id uuid.UUID) (*coupon.UserCoupon, error) {
	row, err := r.queries.GetUserCouponByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user coupon by ID", err)
	}
	return converter.UserCouponFromRow(row), nil
}

func (r *CommandReads) CountClaims(ctx context.Context, userID, couponID uuid.UUID) (int, error) {
	n, err := r.queries.CountUserCouponClaims(ctx, r.db, userID, couponID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count coupon claims", err)
	}
	return int(n), nil
}

func (r *CommandReads) DeductionMarker(ctx context.Context, orderID uuid.UUID) (*inventory.Marker, error) {
	row, err := r.queries.GetDeductionMarker(ctx, r.db, orderID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("deduction marker not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find deduction marker", err)
	}
	return &inventory.Marker{
		OrderID:      row.OrderID,
		AppliedAt:    pgconv.TimeFromPgtype(row.AppliedAt),
		RecreditedAt: pgconv.TimePtrFromPgtype(row.RecreditedAt),
	}, nil
}

func (r *CommandReads) DeductionLines(ctx context.Context, orderID uuid.UUID) ([]inventory.Line, error) {
	rows, err := r.queries.ListDeductionLines(ctx, r.db, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list deduction lines", err)
	}
	lines := make([]inventory.Line, len(rows))
	for i, row := range rows {
		lines[i] = inventory.Line{ComponentID: row.ComponentID, Volume: inventory.Volume(row.Units)}
	}
	return lines, nil
}
