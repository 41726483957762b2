package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCouponInactive  = errors.New("coupon is inactive or outside its validity window")
	ErrAlreadyClaimed  = errors.New("coupon already claimed")
	ErrAlreadyUsed     = errors.New("coupon already used")
	ErrNotClaimOwner   = errors.New("coupon claim belongs to another user")
	ErrInvalidValidity = errors.New("valid_to must be after valid_from")
)

// Coupon is an immutable discount template.
type Coupon struct {
	id              uuid.UUID
	code            Code
	couponType      Type
	discountPercent Percent
	validFrom       *time.Time
	validTo         *time.Time
	active          bool
	createdAt       time.Time
}

func NewCoupon(
	id uuid.UUID,
	code string,
	couponType Type,
	discountPercent int,
	validFrom, validTo *time.Time,
	active bool,
	createdAt time.Time,
) (*Coupon, error) {
	c, err := NewCouponCode(code)
	if err != nil {
		return nil, err
	}
	if !couponType.IsValid() {
		return nil, ErrInvalidCouponType
	}
	pct, err := NewPercent(discountPercent)
	if err != nil {
		return nil, err
	}
	if validFrom != nil && validTo != nil && !validTo.After(*validFrom) {
		return nil, ErrInvalidValidity
	}

	return &Coupon{
		id:              id,
		code:            c,
		couponType:      couponType,
		discountPercent: pct,
		validFrom:       validFrom,
		validTo:         validTo,
		active:          active,
		createdAt:       createdAt,
	}, nil
}

func (c *Coupon) IsClaimableAt(t time.Time) bool {
	if !c.active {
		return false
	}
	if c.validFrom != nil && t.Before(*c.validFrom) {
		return false
	}
	if c.validTo != nil && t.After(*c.validTo) {
		return false
	}
	return true
}

func (c *Coupon) ValidateClaim(t time.Time) error {
	if !c.IsClaimableAt(t) {
		return ErrCouponInactive
	}
	return nil
}

func (c *Coupon) ID() uuid.UUID            { return c.id }
func (c *Coupon) Code() Code               { return c.code }
func (c *Coupon) Type() Type               { return c.couponType }
func (c *Coupon) DiscountPercent() Percent { return c.discountPercent }
func (c *Coupon) ValidFrom() *time.Time    { return c.validFrom }
func (c *Coupon) ValidTo() *time.Time      { return c.validTo }
func (c *Coupon) Active() bool             { return c.active }
func (c *Coupon) CreatedAt() time.Time     { return c.createdAt }

// UserCoupon is one claim of a Coupon. ClaimSeq numbers repeat claims of the
// same coupon by the same user, starting at 1.
type UserCoupon struct {
	id        uuid.UUID
	userID    uuid.UUID
	couponID  uuid.UUID
	claimSeq  int
	claimedAt time.Time
	usedAt    *time.Time
	isUsed    bool
	orderID   *uuid.UUID
}

func NewUserCoupon(userID, couponID uuid.UUID, claimSeq int, now time.Time) *UserCoupon {
	return &UserCoupon{
		id:        uuid.New(),
		userID:    userID,
		couponID:  couponID,
		claimSeq:  claimSeq,
		claimedAt: now,
	}
}

func ReconstructUserCoupon(
	id, userID, couponID uuid.UUID,
	claimSeq int,
	claimedAt time.Time,
	usedAt *time.Time,
	isUsed bool,
	orderID *uuid.UUID,
) *UserCoupon {
	return &UserCoupon{
		id:        id,
		userID:    userID,
		couponID:  couponID,
		claimSeq:  claimSeq,
		claimedAt: claimedAt,
		usedAt:    usedAt,
		isUsed:    isUsed,
		orderID:   orderID,
	}
}

// ValidateApply checks that userID may attach this claim to a new order.
func (u *UserCoupon) ValidateApply(userID uuid.UUID) error {
	if u.userID != userID {
		return ErrNotClaimOwner
	}
	if u.isUsed {
		return ErrAlreadyUsed
	}
	return nil
}

func (u *UserCoupon) ID() uuid.UUID        { return u.id }
func (u *UserCoupon) UserID() uuid.UUID    { return u.userID }
func (u *UserCoupon) CouponID() uuid.UUID  { return u.couponID }
func (u *UserCoupon) ClaimSeq() int        { return u.claimSeq }
func (u *UserCoupon) ClaimedAt() time.Time { return u.claimedAt }
func (u *UserCoupon) UsedAt() *time.Time   { return u.usedAt }
func (u *UserCoupon) IsUsed() bool         { return u.isUsed }
func (u *UserCoupon) OrderID() *uuid.UUID  { return u.orderID }
