//go:build unit

package coupon_test

import (
	"testing"
	"time"

	"scent-fulfillment/internal/domain/coupon"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEligibility(t *testing.T) {
	in := coupon.EligibilityInput{UserID: uuid.New(), Type: coupon.TypeRepurchase, Now: time.Now()}

	t.Run("repurchase without completed orders", func(t *testing.T) {
		got := coupon.CheckEligibility(nil, in)
		assert.False(t, got.Eligible)
		assert.Equal(t, 0, got.CompletedOrders)
		assert.NotEmpty(t, got.Reason)
	})

	t.Run("repurchase after one completed order", func(t *testing.T) {
		in := in
		in.CompletedOrders = 1
		got := coupon.CheckEligibility(nil, in)
		assert.True(t, got.Eligible)
		assert.Equal(t, 1, got.CompletedOrders)
	})

	t.Run("repurchase ignores the pluggable policy", func(t *testing.T) {
		deny := coupon.PolicyFunc(func(coupon.EligibilityInput) coupon.Eligibility { return coupon.Eligibility{} })
		in := in
		in.CompletedOrders = 2
		assert.True(t, coupon.CheckEligibility(deny, in).Eligible)
	})

	t.Run("other types go through the policy", func(t *testing.T) {
		in := in
		in.Type = coupon.TypeBirthday
		in.CompletedOrders = 4
		deny := coupon.PolicyFunc(func(coupon.EligibilityInput) coupon.Eligibility {
			return coupon.Eligibility{Reason: "not your birthday month"}
		})

		got := coupon.CheckEligibility(deny, in)
		assert.False(t, got.Eligible)
		assert.Equal(t, 4, got.CompletedOrders)

		assert.True(t, coupon.CheckEligibility(coupon.AllowAll, in).Eligible)
	})
}

func TestNextClaimSeq(t *testing.T) {
	seq, err := coupon.NextClaimSeq(coupon.TypeWelcome, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	_, err = coupon.NextClaimSeq(coupon.TypeWelcome, 1, 5)
	assert.ErrorIs(t, err, coupon.ErrAlreadyClaimed)

	seq, err = coupon.NextClaimSeq(coupon.TypeRepurchase, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, seq)

	_, err = coupon.NextClaimSeq(coupon.TypeRepurchase, 2, 2)
	assert.ErrorIs(t, err, coupon.ErrAlreadyClaimed)
}

func TestCouponClaimWindow(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	c, err := coupon.NewCoupon(uuid.New(), "welcome-10", coupon.TypeWelcome, 10, &from, &to, true, from)
	require.NoError(t, err)
	assert.Equal(t, coupon.Code("WELCOME-10"), c.Code())

	assert.NoError(t, c.ValidateClaim(from.Add(24*time.Hour)))
	assert.ErrorIs(t, c.ValidateClaim(to.Add(time.Second)), coupon.ErrCouponInactive)
	assert.ErrorIs(t, c.ValidateClaim(from.Add(-time.Second)), coupon.ErrCouponInactive)

	inactive, err := coupon.NewCoupon(uuid.New(), "OFF-10", coupon.TypeWelcome, 10, nil, nil, false, from)
	require.NoError(t, err)
	assert.False(t, inactive.IsClaimableAt(from))

	_, err = coupon.NewCoupon(uuid.New(), "OFF-10", coupon.TypeWelcome, 0, nil, nil, true, from)
	assert.ErrorIs(t, err, coupon.ErrInvalidDiscountPercent)
}

func TestUserCouponValidateApply(t *testing.T) {
	owner := uuid.New()
	uc := coupon.NewUserCoupon(owner, uuid.New(), 1, time.Now())
	assert.NoError(t, uc.ValidateApply(owner))
	assert.ErrorIs(t, uc.ValidateApply(uuid.New()), coupon.ErrNotClaimOwner)

	used := coupon.ReconstructUserCoupon(uc.ID(), owner, uc.CouponID(), 1, uc.ClaimedAt(), nil, true, nil)
	assert.ErrorIs(t, used.ValidateApply(owner), coupon.ErrAlreadyUsed)
}
