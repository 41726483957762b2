package order

import "errors"

var ErrNotRefundable = errors.New("order is not in a refundable state")

type RefundPlan struct {
	From         Status
	To           Status
	Recredit     bool
	RevertCoupon bool
}

// PlanRefund decides where a paid order goes once the gateway reports
// cancelledTotal as refunded. Inventory and coupon are only given back for a
// full refund of goods that never shipped.
func (o *Order) PlanRefund(cancelledTotal int64) (RefundPlan, error) {
	switch o.status {
	case StatusPaid, StatusShipping, StatusPartialRefunded:
	default:
		return RefundPlan{}, ErrNotRefundable
	}

	full := cancelledTotal >= o.pricing.FinalPrice()
	neverShipped := o.shippedAt == nil && o.status != StatusShipping

	plan := RefundPlan{From: o.status}
	switch {
	case !full:
		plan.To = StatusPartialRefunded
	case o.status == StatusPaid:
		plan.To = StatusCancelled
	default:
		plan.To = StatusRefunded
	}
	plan.Recredit = full && neverShipped
	plan.RevertCoupon = full && neverShipped && o.userCouponID != nil

	if !CanTransition(plan.From, plan.To) {
		return RefundPlan{}, ErrNotRefundable
	}
	return plan, nil
}
