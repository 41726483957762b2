package query

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Order struct {
	ID                uuid.UUID          `db:"id"`
	OrderNumber       string             `db:"order_number"`
	UserID            pgtype.UUID        `db:"user_id"`
	ProductType       string             `db:"product_type"`
	Recipe            []byte             `db:"recipe"`
	BatchVolumeUnits  int64              `db:"batch_volume_units"`
	Price             int64              `db:"price"`
	ShippingFee       int64              `db:"shipping_fee"`
	DiscountAmount    int64              `db:"discount_amount"`
	FinalPrice        int64              `db:"final_price"`
	Status            string             `db:"status"`
	UserCouponID      pgtype.UUID        `db:"user_coupon_id"`
	PaymentID         string             `db:"payment_id"`
	PaymentStatus     pgtype.Text        `db:"payment_status"`
	PaidAmount        int64              `db:"paid_amount"`
	CancelledAmount   int64              `db:"cancelled_amount"`
	PaymentMethod     pgtype.Text        `db:"payment_method"`
	PaidAt            pgtype.Timestamptz `db:"paid_at"`
	ReceiptUrl        pgtype.Text        `db:"receipt_url"`
	NeedsReview       bool               `db:"needs_review"`
	ReviewReason      pgtype.Text        `db:"review_reason"`
	CancelRequestedAt pgtype.Timestamptz `db:"cancel_requested_at"`
	ShippedAt         pgtype.Timestamptz `db:"shipped_at"`
	CreatedAt         pgtype.Timestamptz `db:"created_at"`
	UpdatedAt         pgtype.Timestamptz `db:"updated_at"`
}

type Coupon struct {
	ID              uuid.UUID          `db:"id"`
	Code            string             `db:"code"`
	Type            string             `db:"type"`
	DiscountPercent int32              `db:"discount_percent"`
	ValidFrom       pgtype.Timestamptz `db:"valid_from"`
	ValidTo         pgtype.Timestamptz `db:"valid_to"`
	IsActive        bool               `db:"is_active"`
	CreatedAt       pgtype.Timestamptz `db:"created_at"`
}

type UserCoupon struct {
	ID        uuid.UUID          `db:"id"`
	UserID    uuid.UUID          `db:"user_id"`
	CouponID  uuid.UUID          `db:"coupon_id"`
	ClaimSeq  int32              `db:"claim_seq"`
	ClaimedAt pgtype.Timestamptz `db:"claimed_at"`
	UsedAt    pgtype.Timestamptz `db:"used_at"`
	IsUsed    bool               `db:"is_used"`
	OrderID   pgtype.UUID        `db:"order_id"`
}

// ClaimedCouponRow is a user_coupons row joined with its template.
type ClaimedCouponRow struct {
	ID              uuid.UUID          `db:"id"`
	CouponID        uuid.UUID          `db:"coupon_id"`
	Code            string             `db:"code"`
	Type            string             `db:"type"`
	DiscountPercent int32              `db:"discount_percent"`
	ValidTo         pgtype.Timestamptz `db:"valid_to"`
	ClaimSeq        int32              `db:"claim_seq"`
	ClaimedAt       pgtype.Timestamptz `db:"claimed_at"`
	UsedAt          pgtype.Timestamptz `db:"used_at"`
	IsUsed          bool               `db:"is_used"`
	OrderID         pgtype.UUID        `db:"order_id"`
}

type InventoryCounter struct {
	ComponentID    string             `db:"component_id"`
	RemainingUnits int64              `db:"remaining_units"`
	LastDeductedAt pgtype.Timestamptz `db:"last_deducted_at"`
}

type InventoryDeduction struct {
	OrderID      uuid.UUID          `db:"order_id"`
	AppliedAt    pgtype.Timestamptz `db:"applied_at"`
	RecreditedAt pgtype.Timestamptz `db:"recredited_at"`
}

type InventoryDeductionLine struct {
	OrderID     uuid.UUID `db:"order_id"`
	ComponentID string    `db:"component_id"`
	Units       int64     `db:"units"`
}

type AuthSession struct {
	TokenDigest []byte    `db:"token_digest"`
	UserID      uuid.UUID `db:"user_id"`
	Role        string    `db:"role"`
	ExpiresAt   time.Time `db:"expires_at"`
}

type NotificationJob struct {
	ID        uuid.UUID          `db:"id"`
	Kind      string             `db:"kind"`
	Topic     string             `db:"topic"`
	Payload   []byte             `db:"payload"`
	RunAt     pgtype.Timestamptz `db:"run_at"`
	Status    string             `db:"status"`
	Attempts  int32              `db:"attempts"`
	LastError pgtype.Text        `db:"last_error"`
	CreatedAt pgtype.Timestamptz `db:"created_at"`
	UpdatedAt pgtype.Timestamptz `db:"updated_at"`
}
