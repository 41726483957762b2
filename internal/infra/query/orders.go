package query

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, user_id, product_type, recipe, batch_volume_units,
	price, shipping_fee, discount_amount, final_price, status, user_coupon_id, payment_id,
	payment_status, paid_amount, cancelled_amount, payment_method, paid_at, receipt_url,
	needs_review, review_reason, cancel_requested_at, shipped_at, created_at, updated_at`

const createOrder = `INSERT INTO orders (
	id, order_number, user_id, product_type, recipe, batch_volume_units,
	price, shipping_fee, discount_amount, final_price, status, user_coupon_id, payment_id,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending', $11, $12, $13, $13)`

type CreateOrderParams struct {
	ID               uuid.UUID
	OrderNumber      string
	UserID           pgtype.UUID
	ProductType      string
	Recipe           []byte
	BatchVolumeUnits int64
	Price            int64
	ShippingFee      int64
	DiscountAmount   int64
	FinalPrice       int64
	UserCouponID     pgtype.UUID
	PaymentID        string
	CreatedAt        time.Time
}

func (q *Queries) CreateOrder(ctx context.Context, db DBTX, arg CreateOrderParams) error {
	_, err := db.Exec(ctx, createOrder,
		arg.ID,
		arg.OrderNumber,
		arg.UserID,
		arg.ProductType,
		arg.Recipe,
		arg.BatchVolumeUnits,
		arg.Price,
		arg.ShippingFee,
		arg.DiscountAmount,
		arg.FinalPrice,
		arg.UserCouponID,
		arg.PaymentID,
		arg.CreatedAt,
	)
	return err
}

func (q *Queries) getOrder(ctx context.Context, db DBTX, where string, arg interface{}) (Order, error) {
	rows, err := db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg)
	if err != nil {
		return Order{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Order])
}

func (q *Queries) GetOrderByID(ctx context.Context, db DBTX, id uuid.UUID) (Order, error) {
	return q.getOrder(ctx, db, "id = $1", id)
}

func (q *Queries) GetOrderByNumber(ctx context.Context, db DBTX, orderNumber string) (Order, error) {
	return q.getOrder(ctx, db, "order_number = $1", orderNumber)
}

func (q *Queries) GetOrderByPaymentID(ctx context.Context, db DBTX, paymentID string) (Order, error) {
	return q.getOrder(ctx, db, "payment_id = $1", paymentID)
}

const listOrdersByUser = `SELECT ` + orderColumns + ` FROM orders
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

func (q *Queries) ListOrdersByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int32) ([]Order, error) {
	rows, err := db.Query(ctx, listOrdersByUser, userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Order])
}

const countOrdersByStatus = `SELECT count(*) FROM orders WHERE user_id = $1 AND status = ANY($2::text[])`

func (q *Queries) CountOrdersByStatus(ctx context.Context, db DBTX, userID uuid.UUID, statuses []string) (int64, error) {
	var n int64
	err := db.QueryRow(ctx, countOrdersByStatus, userID, statuses).Scan(&n)
	return n, err
}

// Transitions other than pending -> paid. A held cancellation latch blocks
// them so a shipment can never overtake an in-flight refund.
const swapOrderStatus = `UPDATE orders
SET status = $3,
	shipped_at = CASE WHEN $3 = 'shipping' THEN $4 ELSE shipped_at END,
	updated_at = $4
WHERE id = $1 AND status = $2 AND cancel_requested_at IS NULL`

type SwapOrderStatusParams struct {
	ID   uuid.UUID
	From string
	To   string
	Now  time.Time
}

func (q *Queries) SwapOrderStatus(ctx context.Context, db DBTX, arg SwapOrderStatusParams) (bool, error) {
	return q.swap(ctx, db, swapOrderStatus, arg.ID, arg.From, arg.To, arg.Now)
}

const markOrderPaid = `UPDATE orders
SET status = 'paid',
	payment_status = $2,
	paid_amount = $3,
	cancelled_amount = $4,
	payment_method = $5,
	paid_at = $6,
	receipt_url = $7,
	needs_review = false,
	review_reason = NULL,
	updated_at = $8
WHERE id = $1 AND status = 'pending'`

type MarkOrderPaidParams struct {
	ID              uuid.UUID
	PaymentStatus   string
	PaidAmount      int64
	CancelledAmount int64
	PaymentMethod   pgtype.Text
	PaidAt          pgtype.Timestamptz
	ReceiptUrl      pgtype.Text
	Now             time.Time
}

func (q *Queries) MarkOrderPaid(ctx context.Context, db DBTX, arg MarkOrderPaidParams) (bool, error) {
	return q.swap(ctx, db, markOrderPaid,
		arg.ID,
		arg.PaymentStatus,
		arg.PaidAmount,
		arg.CancelledAmount,
		arg.PaymentMethod,
		arg.PaidAt,
		arg.ReceiptUrl,
		arg.Now,
	)
}

const attachOrderRecipe = `UPDATE orders SET recipe = $2, updated_at = $3
WHERE id = $1 AND recipe IS NULL AND status = 'pending'`

func (q *Queries) AttachOrderRecipe(ctx context.Context, db DBTX, id uuid.UUID, recipe []byte, now time.Time) (bool, error) {
	return q.swap(ctx, db, attachOrderRecipe, id, recipe, now)
}

const flagOrderForReview = `UPDATE orders SET needs_review = true, review_reason = $3, updated_at = $4
WHERE id = $1 AND status = $2`

// FlagOrderForReview marks the order for an operator while it is still in
// the given status.
func (q *Queries) FlagOrderForReview(ctx context.Context, db DBTX, id uuid.UUID, status, reason string, now time.Time) (bool, error) {
	return q.swap(ctx, db, flagOrderForReview, id, status, reason, now)
}

const latchOrderCancellation = `UPDATE orders SET cancel_requested_at = $3, updated_at = $3
WHERE id = $1 AND status = $2 AND cancel_requested_at IS NULL`

func (q *Queries) LatchOrderCancellation(ctx context.Context, db DBTX, id uuid.UUID, status string, at time.Time) (bool, error) {
	return q.swap(ctx, db, latchOrderCancellation, id, status, at)
}

const releaseOrderCancellation = `UPDATE orders SET cancel_requested_at = NULL, updated_at = $3
WHERE id = $1 AND status = $2 AND cancel_requested_at IS NOT NULL`

// ReleaseOrderCancellation drops a latch taken by LatchOrderCancellation while
// the order is still in the status it was latched in.
func (q *Queries) ReleaseOrderCancellation(ctx context.Context, db DBTX, id uuid.UUID, status string, now time.Time) (bool, error) {
	return q.swap(ctx, db, releaseOrderCancellation, id, status, now)
}

const recordOrderRefund = `UPDATE orders
SET status = $3,
	cancelled_amount = $4,
	payment_status = $5,
	cancel_requested_at = NULL,
	updated_at = $6
WHERE id = $1 AND status = $2`

type RecordOrderRefundParams struct {
	ID              uuid.UUID
	From            string
	To              string
	CancelledAmount int64
	PaymentStatus   string
	Now             time.Time
}

func (q *Queries) RecordOrderRefund(ctx context.Context, db DBTX, arg RecordOrderRefundParams) (bool, error) {
	return q.swap(ctx, db, recordOrderRefund, arg.ID, arg.From, arg.To, arg.CancelledAmount, arg.PaymentStatus, arg.Now)
}
