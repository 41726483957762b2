package queries

import (
	"time"

	"github.com/google/uuid"
)

// OrderView is the reduced projection shown to the order's owner.
// Gateway credentials, internal ids and review flags are not part of it.
type OrderView struct {
	OrderNumber    string                `json:"order_number"`
	ProductType    string                `json:"product_type"`
	Status         string                `json:"status"`
	Price          int64                 `json:"price"`
	ShippingFee    int64                 `json:"shipping_fee"`
	DiscountAmount int64                 `json:"discount_amount"`
	FinalPrice     int64                 `json:"final_price"`
	RecipeTitle    string                `json:"recipe_title,omitempty"`
	Components     []RecipeComponentView `json:"components"`
	Payment        *PaymentView          `json:"payment,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`

	OwnerID *uuid.UUID `json:"-"`
}

type RecipeComponentView struct {
	ComponentID string  `json:"component_id"`
	Name        string  `json:"name,omitempty"`
	Proportion  float64 `json:"proportion"`
}

type PaymentView struct {
	Status          string     `json:"status"`
	Method          string     `json:"method,omitempty"`
	PaidAmount      int64      `json:"paid_amount"`
	CancelledAmount int64      `json:"cancelled_amount"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	ReceiptURL      string     `json:"receipt_url,omitempty"`
}

type OrderListItem struct {
	OrderNumber string    `json:"order_number"`
	ProductType string    `json:"product_type"`
	Status      string    `json:"status"`
	FinalPrice  int64     `json:"final_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClaimedCouponView is one claim joined with its coupon template.
type ClaimedCouponView struct {
	ID              uuid.UUID  `json:"id"`
	CouponID        uuid.UUID  `json:"coupon_id"`
	Code            string     `json:"code"`
	Type            string     `json:"type"`
	DiscountPercent int32      `json:"discount_percent"`
	ValidTo         *time.Time `json:"valid_to,omitempty"`
	ClaimSeq        int32      `json:"claim_seq"`
	ClaimedAt       time.Time  `json:"claimed_at"`
	UsedAt          *time.Time `json:"used_at,omitempty"`
	IsUsed          bool       `json:"is_used"`
}
