package order

import (
	"errors"
	"strings"
	"time"

	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/domain/payment"

	"github.com/google/uuid"
)

var (
	ErrEmptyProductType      = errors.New("product type is required")
	ErrEmptyPaymentID        = errors.New("payment id is required")
	ErrRecipeAlreadyAttached = errors.New("recipe already attached")
	ErrRecipeMissing         = errors.New("order has no recipe")
	ErrNotPending            = errors.New("order is not pending")
	ErrPaymentNotCompleted   = errors.New("payment not completed")
	ErrAmountMismatch        = errors.New("paid amount does not match final price")
	ErrCouponOwnerRequired   = errors.New("coupon requires a registered owner")
)

type Order struct {
	id                uuid.UUID
	number            Number
	userID            *uuid.UUID
	productType       string
	recipe            *inventory.Recipe
	batchVolume       inventory.Volume
	pricing           Pricing
	status            Status
	userCouponID      *uuid.UUID
	paymentID         string
	payment           *payment.Summary
	refundedAmount    int64
	needsReview       bool
	reviewReason      string
	cancelRequestedAt *time.Time
	shippedAt         *time.Time
	createdAt         time.Time
	updatedAt         time.Time
}

type NewParams struct {
	UserID       *uuid.UUID
	ProductType  string
	Recipe       *inventory.Recipe
	BatchVolume  inventory.Volume
	Pricing      Pricing
	UserCouponID *uuid.UUID
	PaymentID    string
}

// New creates an order in the pending state. The recipe, if any, is copied.
func New(p NewParams, now time.Time) (*Order, error) {
	productType := strings.TrimSpace(p.ProductType)
	if productType == "" {
		return nil, ErrEmptyProductType
	}
	paymentID := strings.TrimSpace(p.PaymentID)
	if paymentID == "" {
		return nil, ErrEmptyPaymentID
	}
	if p.BatchVolume <= 0 {
		return nil, inventory.ErrInvalidBatchVolume
	}
	if p.UserCouponID != nil && p.UserID == nil {
		return nil, ErrCouponOwnerRequired
	}

	o := &Order{
		id:           uuid.New(),
		number:       NewNumber(now),
		userID:       p.UserID,
		productType:  productType,
		batchVolume:  p.BatchVolume,
		pricing:      p.Pricing,
		status:       StatusPending,
		userCouponID: p.UserCouponID,
		paymentID:    paymentID,
		createdAt:    now,
		updatedAt:    now,
	}
	if p.Recipe != nil {
		if err := o.AttachRecipe(*p.Recipe); err != nil {
			return nil, err
		}
	}
	return o, nil
}

type ReconstructParams struct {
	ID                uuid.UUID
	Number            Number
	UserID            *uuid.UUID
	ProductType       string
	Recipe            *inventory.Recipe
	BatchVolume       inventory.Volume
	Price             int64
	ShippingFee       int64
	DiscountAmount    int64
	Status            Status
	UserCouponID      *uuid.UUID
	PaymentID         string
	Payment           *payment.Summary
	RefundedAmount    int64
	NeedsReview       bool
	ReviewReason      string
	CancelRequestedAt *time.Time
	ShippedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Reconstruct rebuilds an order from storage without re-running creation rules.
func Reconstruct(p ReconstructParams) *Order {
	return &Order{
		id:                p.ID,
		number:            p.Number,
		userID:            p.UserID,
		productType:       p.ProductType,
		recipe:            p.Recipe,
		batchVolume:       p.BatchVolume,
		pricing:           Pricing{price: p.Price, shippingFee: p.ShippingFee, discountAmount: p.DiscountAmount},
		status:            p.Status,
		userCouponID:      p.UserCouponID,
		paymentID:         p.PaymentID,
		payment:           p.Payment,
		refundedAmount:    p.RefundedAmount,
		needsReview:       p.NeedsReview,
		reviewReason:      p.ReviewReason,
		cancelRequestedAt: p.CancelRequestedAt,
		shippedAt:         p.ShippedAt,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}
}

// AttachRecipe sets the recipe snapshot once, while the order is pending.
func (o *Order) AttachRecipe(r inventory.Recipe) error {
	if o.recipe != nil {
		return ErrRecipeAlreadyAttached
	}
	if o.status != StatusPending {
		return ErrNotPending
	}
	if err := r.Validate(); err != nil {
		return err
	}
	snapshot := r.Clone()
	o.recipe = &snapshot
	return nil
}

// VerifyPayment checks the gateway record against this order. Only an exact
// PAID match is accepted.
func (o *Order) VerifyPayment(rec payment.Record) error {
	if rec.Status != payment.StatusPaid {
		return ErrPaymentNotCompleted
	}
	if rec.Amount.Paid != o.pricing.FinalPrice() {
		return ErrAmountMismatch
	}
	return nil
}

// IsOwnedBy reports whether viewer may see the order. Guest orders are
// reachable by order number alone.
func (o *Order) IsOwnedBy(viewer *uuid.UUID) bool {
	if o.userID == nil {
		return true
	}
	return viewer != nil && *viewer == *o.userID
}

func (o *Order) ID() uuid.UUID                 { return o.id }
func (o *Order) Number() Number                { return o.number }
func (o *Order) UserID() *uuid.UUID            { return o.userID }
func (o *Order) ProductType() string           { return o.productType }
func (o *Order) BatchVolume() inventory.Volume { return o.batchVolume }
func (o *Order) Pricing() Pricing              { return o.pricing }
func (o *Order) Status() Status                { return o.status }
func (o *Order) UserCouponID() *uuid.UUID      { return o.userCouponID }
func (o *Order) PaymentID() string             { return o.paymentID }
func (o *Order) Payment() *payment.Summary     { return o.payment }
func (o *Order) RefundedAmount() int64         { return o.refundedAmount }
func (o *Order) NeedsReview() bool             { return o.needsReview }
func (o *Order) ReviewReason() string          { return o.reviewReason }
func (o *Order) CancelRequestedAt() *time.Time { return o.cancelRequestedAt }
func (o *Order) ShippedAt() *time.Time         { return o.shippedAt }
func (o *Order) CreatedAt() time.Time          { return o.createdAt }
func (o *Order) UpdatedAt() time.Time          { return o.updatedAt }

// Recipe returns a copy of the snapshot, or nil.
func (o *Order) Recipe() *inventory.Recipe {
	if o.recipe == nil {
		return nil
	}
	r := o.recipe.Clone()
	return &r
}

func (o *Order) RefundableAmount() int64 {
	left := o.pricing.FinalPrice() - o.refundedAmount
	if left < 0 {
		return 0
	}
	return left
}
