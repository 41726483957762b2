//go:build unit

package order_test

import (
	"testing"

	"scent-fulfillment/internal/domain/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]order.Status{
		{order.StatusPending, order.StatusPaid},
		{order.StatusPending, order.StatusCancelled},
		{order.StatusPaid, order.StatusShipping},
		{order.StatusPaid, order.StatusCancelled},
		{order.StatusPaid, order.StatusPartialRefunded},
		{order.StatusPaid, order.StatusRefunded},
		{order.StatusShipping, order.StatusDelivered},
		{order.StatusPartialRefunded, order.StatusRefunded},
	}
	for _, tr := range allowed {
		assert.True(t, order.CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]order.Status{
		{order.StatusPending, order.StatusShipping},
		{order.StatusPaid, order.StatusPending},
		{order.StatusDelivered, order.StatusRefunded},
		{order.StatusCancelled, order.StatusPaid},
		{order.StatusRefunded, order.StatusPaid},
		{order.StatusShipping, order.StatusCancelled},
	}
	for _, tr := range denied {
		assert.False(t, order.CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestStatusSets(t *testing.T) {
	assert.False(t, order.StatusPending.IsSettled())
	assert.False(t, order.StatusCancelled.IsSettled())
	assert.True(t, order.StatusPartialRefunded.IsSettled())

	assert.True(t, order.StatusDelivered.CountsAsCompleted())
	assert.False(t, order.StatusRefunded.CountsAsCompleted())
	assert.Len(t, order.CompletedStatuses(), 3)
}

func reconstruct(status order.Status, shipped bool, withCoupon bool) *order.Order {
	p := order.ReconstructParams{
		ID:          uuid.New(),
		Number:      "SF20250314-AAAAAA",
		ProductType: "perfume",
		BatchVolume: 500,
		Price:       24000,
		ShippingFee: 3000,
		Status:      status,
		PaymentID:   "pay_001",
	}
	if shipped {
		p.ShippedAt = &fixedNow
	}
	if withCoupon {
		id := uuid.New()
		p.UserCouponID = &id
		p.DiscountAmount = 3000
	}
	return order.Reconstruct(p)
}

func TestPlanRefund(t *testing.T) {
	tests := []struct {
		name      string
		order     *order.Order
		cancelled int64
		want      order.RefundPlan
		errIs     error
	}{
		{
			name:      "full refund of a paid order gives everything back",
			order:     reconstruct(order.StatusPaid, false, true),
			cancelled: 24000,
			want:      order.RefundPlan{From: order.StatusPaid, To: order.StatusCancelled, Recredit: true, RevertCoupon: true},
		},
		{
			name:      "full refund without coupon",
			order:     reconstruct(order.StatusPaid, false, false),
			cancelled: 27000,
			want:      order.RefundPlan{From: order.StatusPaid, To: order.StatusCancelled, Recredit: true},
		},
		{
			name:      "partial refund keeps inventory and coupon",
			order:     reconstruct(order.StatusPaid, false, true),
			cancelled: 5000,
			want:      order.RefundPlan{From: order.StatusPaid, To: order.StatusPartialRefunded},
		},
		{
			name:      "full refund after shipping",
			order:     reconstruct(order.StatusShipping, true, true),
			cancelled: 24000,
			want:      order.RefundPlan{From: order.StatusShipping, To: order.StatusRefunded},
		},
		{
			name:      "remaining refund after a partial one",
			order:     reconstruct(order.StatusPartialRefunded, false, false),
			cancelled: 27000,
			want:      order.RefundPlan{From: order.StatusPartialRefunded, To: order.StatusRefunded, Recredit: true},
		},
		{
			name:      "pending order",
			order:     reconstruct(order.StatusPending, false, false),
			cancelled: 27000,
			errIs:     order.ErrNotRefundable,
		},
		{
			name:      "delivered order",
			order:     reconstruct(order.StatusDelivered, true, false),
			cancelled: 27000,
			errIs:     order.ErrNotRefundable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.order.PlanRefund(tt.cancelled)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
