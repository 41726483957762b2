package repository

import (
	"context"
	"encoding/json"
	"time"

	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/domain/payment"
	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/infra/query"
	"scent-fulfillment/internal/infra/repository/converter"
	"scent-fulfillment/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type OrderWriteQueries interface {
	CreateOrder(ctx context.Context, db query.DBTX, arg query.CreateOrderParams) error
	AttachOrderRecipe(ctx context.Context, db query.DBTX, id uuid.UUID, recipe []byte, now time.Time) (bool, error)
	MarkOrderPaid(ctx context.Context, db query.DBTX, arg query.MarkOrderPaidParams) (bool, error)
	SwapOrderStatus(ctx context.Context, db query.DBTX, arg query.SwapOrderStatusParams) (bool, error)
	FlagOrderForReview(ctx context.Context, db query.DBTX, id uuid.UUID, status, reason string, now time.Time) (bool, error)
	LatchOrderCancellation(ctx context.Context, db query.DBTX, id uuid.UUID, status string, at time.Time) (bool, error)
	ReleaseOrderCancellation(ctx context.Context, db query.DBTX, id uuid.UUID, status string, now time.Time) (bool, error)
	RecordOrderRefund(ctx context.Context, db query.DBTX, arg query.RecordOrderRefundParams) (bool, error)
}

type OrderRepository struct {
	queries OrderWriteQueries
	db      query.DBTX
}

func NewOrderRepository(queries OrderWriteQueries, db query.DBTX) *OrderRepository {
	return &OrderRepository{
		queries: queries,
		db:      db,
	}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	params, err := converter.OrderToCreateParams(o)
	if err != nil {
		return infra.WrapRepoErr("failed to build order params", err)
	}
	if err := r.queries.CreateOrder(ctx, r.db, params); err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr("order already exists", err, infra.KindDuplicateKey)
		}
		if pgconv.IsForeignKeyViolation(err) {
			return infra.WrapRepoErr("order references a missing coupon claim", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to create order", err)
	}
	return nil
}

func (r *OrderRepository) AttachRecipe(ctx context.Context, id uuid.UUID, recipe inventory.Recipe, now time.Time) (bool, error) {
	b, err := json.Marshal(recipe)
	if err != nil {
		return false, infra.WrapRepoErr("failed to marshal recipe", err)
	}
	ok, err := r.queries.AttachOrderRecipe(ctx, r.db, id, b, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to attach recipe", err)
	}
	return ok, nil
}

func (r *OrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, rec payment.Record, now time.Time) (bool, error) {
	ok, err := r.queries.MarkOrderPaid(ctx, r.db, query.MarkOrderPaidParams{
		ID:              id,
		PaymentStatus:   rec.Status.String(),
		PaidAmount:      rec.Amount.Paid,
		CancelledAmount: rec.Amount.Cancelled,
		PaymentMethod:   pgconv.StringToPgtype(rec.Method),
		PaidAt:          pgconv.TimePtrToPgtype(rec.PaidAt),
		ReceiptUrl:      pgconv.StringToPgtype(rec.ReceiptURL),
		Now:             now,
	})
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark order paid", err)
	}
	return ok, nil
}

func (r *OrderRepository) SwapStatus(ctx context.Context, id uuid.UUID, from, to order.Status, now time.Time) (bool, error) {
	ok, err := r.queries.SwapOrderStatus(ctx, r.db, query.SwapOrderStatusParams{
		ID:   id,
		From: from.String(),
		To:   to.String(),
		Now:  now,
	})
	if err != nil {
		return false, infra.WrapRepoErr("failed to swap order status", err)
	}
	return ok, nil
}

func (r *OrderRepository) FlagForReview(ctx context.Context, id uuid.UUID, status order.Status, reason string, now time.Time) (bool, error) {
	ok, err := r.queries.FlagOrderForReview(ctx, r.db, id, status.String(), reason, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to flag order for review", err)
	}
	return ok, nil
}

func (r *OrderRepository) LatchCancellation(ctx context.Context, id uuid.UUID, status order.Status, now time.Time) (bool, error) {
	ok, err := r.queries.LatchOrderCancellation(ctx, r.db, id, status.String(), now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to latch cancellation", err)
	}
	return ok, nil
}

func (r *OrderRepository) ReleaseCancellation(ctx context.Context, id uuid.UUID, status order.Status, now time.Time) (bool, error) {
	ok, err := r.queries.ReleaseOrderCancellation(ctx, r.db, id, status.String(), now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to release cancellation", err)
	}
	return ok, nil
}

func (r *OrderRepository) RecordRefund(ctx context.Context, id uuid.UUID, plan order.RefundPlan, cancelledAmount int64, paymentStatus payment.Status, now time.Time) (bool, error) {
	ok, err := r.queries.RecordOrderRefund(ctx, r.db, query.RecordOrderRefundParams{
		ID:              id,
		From:            plan.From.String(),
		To:              plan.To.String(),
		CancelledAmount: cancelledAmount,
		PaymentStatus:   paymentStatus.String(),
		Now:             now,
	})
	if err != nil {
		return false, infra.WrapRepoErr("failed to record refund", err)
	}
	return ok, nil
}

