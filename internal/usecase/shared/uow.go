package shared

import (
	"context"
	"time"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/domain/payment"
	"scent-fulfillment/internal/usecase/readmodel"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Orders() OrderRepository
	Coupons() CouponRepository
	Inventory() InventoryRepository
	Notifications() NotificationRepository
	Reads() CommandReads
}

// CommandReads are the lookups write paths need. Missing rows surface as
// infra.RepositoryError with KindNotFound.
type CommandReads interface {
	OrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	OrderByNumber(ctx context.Context, number order.Number) (*order.Order, error)
	OrderByPaymentID(ctx context.Context, paymentID string) (*order.Order, error)
	CountCompletedOrders(ctx context.Context, userID uuid.UUID) (int, error)
	CouponByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error)
	UserCouponByID(ctx context.Context, id uuid.UUID) (*coupon.UserCoupon, error)
	CountClaims(ctx context.Context, userID, couponID uuid.UUID) (int, error)
	DeductionMarker(ctx context.Context, orderID uuid.UUID) (*inventory.Marker, error)
	DeductionLines(ctx context.Context, orderID uuid.UUID) ([]inventory.Line, error)
}

// Conditional writes return swapped=false, not an error, when the expected
// prior state no longer holds. Callers decide what that means.

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	AttachRecipe(ctx context.Context, id uuid.UUID, recipe inventory.Recipe, now time.Time) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID, rec payment.Record, now time.Time) (bool, error)
	SwapStatus(ctx context.Context, id uuid.UUID, from, to order.Status, now time.Time) (bool, error)
	FlagForReview(ctx context.Context, id uuid.UUID, status order.Status, reason string, now time.Time) (bool, error)
	LatchCancellation(ctx context.Context, id uuid.UUID, status order.Status, now time.Time) (bool, error)
	ReleaseCancellation(ctx context.Context, id uuid.UUID, status order.Status, now time.Time) (bool, error)
	RecordRefund(ctx context.Context, id uuid.UUID, plan order.RefundPlan, cancelledAmount int64, paymentStatus payment.Status, now time.Time) (bool, error)
}

type CouponRepository interface {
	CreateClaim(ctx context.Context, uc *coupon.UserCoupon) error
	Redeem(ctx context.Context, userCouponID, userID, orderID uuid.UUID, now time.Time) (bool, error)
	Revert(ctx context.Context, userCouponID, orderID uuid.UUID) (bool, error)
}

type InventoryRepository interface {
	InsertMarker(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error)
	Decrement(ctx context.Context, componentID string, units inventory.Volume, now time.Time) (bool, error)
	Increment(ctx context.Context, componentID string, units inventory.Volume) (bool, error)
	SaveLines(ctx context.Context, orderID uuid.UUID, lines []inventory.Line) error
	MarkRecredited(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
	// ClaimDue locks queued jobs that are due until the transaction ends.
	ClaimDue(ctx context.Context, now time.Time, limit int32) ([]readmodel.NotificationJobRM, error)
	UpdateStatus(ctx context.Context, jobID uuid.UUID, status string, lastError *string) error
}
