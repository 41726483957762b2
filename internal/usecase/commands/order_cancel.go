package commands

import (
	"context"

	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/domain/payment"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/shared"
)

// Cancel cancels a pending order locally, or refunds a paid one through the
// gateway. Cancelling an already cancelled or refunded order is a no-op.
func (uc *orderCommandsImpl) Cancel(ctx context.Context, in CancelInput) (*order.Order, error) {
	o, err := uc.loadOrder(ctx, in.Number)
	if err != nil {
		return nil, err
	}
	if !in.Admin {
		if in.Actor == nil || o.UserID() == nil || *o.UserID() != *in.Actor {
			return nil, ErrUnauthorized
		}
		if err := ownerMayCancel(o, in.Amount); err != nil {
			return nil, err
		}
	}
	return uc.cancel(ctx, o, in)
}

// ownerMayCancel limits customers to withdrawing a whole order before it
// ships. Partial refunds and refunds after shipping are operator actions.
func ownerMayCancel(o *order.Order, amount *int64) error {
	switch o.Status() {
	case order.StatusCancelled, order.StatusRefunded:
		return nil
	case order.StatusPending:
		if amount != nil {
			return ErrPartialCancelNotAllowed
		}
		return nil
	case order.StatusPaid:
		if amount != nil {
			return ErrInvalidTransition
		}
		return nil
	default:
		return ErrInvalidTransition
	}
}

func (uc *orderCommandsImpl) cancel(ctx context.Context, o *order.Order, in CancelInput) (*order.Order, error) {
	switch o.Status() {
	case order.StatusCancelled, order.StatusRefunded:
		return o, nil
	case order.StatusDelivered:
		return nil, ErrInvalidTransition
	case order.StatusPending:
		if in.Amount != nil {
			return nil, ErrPartialCancelNotAllowed
		}
		return uc.cancelPending(ctx, o, in)
	default:
		return uc.refund(ctx, o, in)
	}
}

// cancelPending cancels locally only when the gateway holds no captured
// money for the order. A payment captured ahead of its webhook is settled
// first and then refunded like any paid order.
func (uc *orderCommandsImpl) cancelPending(ctx context.Context, o *order.Order, in CancelInput) (*order.Order, error) {
	rec, err := uc.gateway.Verify(ctx, o.PaymentID())
	switch {
	case errs.Is(err, shared.ErrPaymentNotFound):
		// the customer never reached the gateway
	case err != nil:
		return nil, err
	case rec.Status == payment.StatusPaid:
		return uc.settleThenCancel(ctx, o, in)
	case rec.Refundable() > 0:
		uc.flagForReview(ctx, o, ReviewGatewayAhead)
		return nil, ErrInvalidTransition
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		ok, err := tx.Orders().SwapStatus(ctx, o.ID(), order.StatusPending, order.StatusCancelled, now)
		if err != nil {
			return err
		}
		if !ok {
			cur, err := tx.Reads().OrderByID(ctx, o.ID())
			if err != nil {
				return err
			}
			if cur.Status() == order.StatusCancelled {
				return nil
			}
			return ErrStateChanged
		}
		return enqueue(ctx, tx, uc.settings.NotificationTopic, NotifyOrderCancelled, o.Number(), order.StatusCancelled, "", now)
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("pending order cancelled", "order_number", o.Number().String())
	return uc.reloadOrder(ctx, o.ID())
}

func (uc *orderCommandsImpl) settleThenCancel(ctx context.Context, o *order.Order, in CancelInput) (*order.Order, error) {
	uc.logger.Info("payment captured before cancellation, settling first", "order_number", o.Number().String())
	res, err := uc.Reconcile(ctx, o.Number())
	if err != nil {
		return nil, err
	}
	if !res.Order.Status().IsSettled() {
		return nil, ErrStateChanged
	}
	if !in.Admin {
		if err := ownerMayCancel(res.Order, in.Amount); err != nil {
			return nil, err
		}
	}
	return uc.cancel(ctx, res.Order, in)
}

func (uc *orderCommandsImpl) refund(ctx context.Context, o *order.Order, in CancelInput) (*order.Order, error) {
	refundable := o.RefundableAmount()
	if in.Amount != nil && (*in.Amount <= 0 || *in.Amount > refundable) {
		return nil, &shared.CancellationRejectedError{Message: "amount must be between 1 and the refundable balance"}
	}

	// The latch keeps Ship and a second Cancel away while the gateway call
	// is in flight; no database lock is held across it.
	from := o.Status()
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, err := tx.Orders().LatchCancellation(ctx, o.ID(), from, uc.clock.Now())
		if err != nil {
			return err
		}
		if !ok {
			return ErrCancellationInProgress
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := uc.gateway.Cancel(ctx, o.PaymentID(), in.Reason, in.Amount); err != nil {
		return uc.recoverCancel(ctx, o, err)
	}

	cancelledTotal, paymentStatus := uc.cancelledTotal(ctx, o, in.Amount)
	return uc.applyRefund(ctx, o, cancelledTotal, paymentStatus)
}

// recoverCancel asks the gateway whether a failed cancellation landed anyway,
// as after a lost response or a refund issued from the processor's console.
// The latch is released only when the gateway shows no new refund.
func (uc *orderCommandsImpl) recoverCancel(ctx context.Context, o *order.Order, cause error) (*order.Order, error) {
	vctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.settings.DurableTimeout)
	defer cancel()

	rec, err := uc.gateway.Verify(vctx, o.PaymentID())
	if err != nil {
		uc.releaseLatch(ctx, o, o.Status())
		uc.logger.Error("cancellation outcome unknown",
			"order_number", o.Number().String(),
			"cancel_error", cause.Error(),
			"verify_error", err.Error())
		uc.flagForReview(vctx, o, ReviewCancellationUnconfirmed)
		return nil, cause
	}
	if rec.Amount.Cancelled <= o.RefundedAmount() {
		uc.releaseLatch(ctx, o, o.Status())
		return nil, cause
	}

	uc.logger.Warn("gateway shows a refund despite the failed cancellation",
		"order_number", o.Number().String(),
		"cancelled_total", rec.Amount.Cancelled,
		"error", cause.Error())
	return uc.applyRefund(ctx, o, rec.Amount.Cancelled, rec.Status)
}

// applyRefund records a cancellation the gateway has already applied.
func (uc *orderCommandsImpl) applyRefund(ctx context.Context, o *order.Order, cancelledTotal int64, paymentStatus payment.Status) (*order.Order, error) {
	plan, err := o.PlanRefund(cancelledTotal)
	if err != nil {
		return nil, err
	}

	err = durably(ctx, uc.logger, uc.settings.DurableTimeout, "record_refund", func(ctx context.Context) error {
		return uc.recordRefund(ctx, o, plan, cancelledTotal, paymentStatus)
	})
	if err != nil {
		uc.logger.Error("refund accepted by gateway but not recorded locally",
			"order_number", o.Number().String(),
			"cancelled_total", cancelledTotal,
			"error", err.Error())
		return nil, err
	}

	uc.logger.Info("order refunded",
		"order_number", o.Number().String(),
		"from", plan.From.String(),
		"to", plan.To.String(),
		"cancelled_total", cancelledTotal,
		"recredit", plan.Recredit)
	return uc.reloadOrder(ctx, o.ID())
}

// cancelledTotal prefers the gateway's figure; if the follow-up fetch fails
// the total is derived from what this call asked for.
func (uc *orderCommandsImpl) cancelledTotal(ctx context.Context, o *order.Order, amount *int64) (int64, payment.Status) {
	rec, err := uc.gateway.Verify(ctx, o.PaymentID())
	if err == nil {
		return rec.Amount.Cancelled, rec.Status
	}
	uc.logger.Warn("could not refresh payment after cancellation",
		"order_number", o.Number().String(),
		"error", err.Error())

	requested := o.RefundableAmount()
	if amount != nil {
		requested = *amount
	}
	total := o.RefundedAmount() + requested
	if total >= o.Pricing().FinalPrice() {
		return total, payment.StatusCancelled
	}
	return total, payment.StatusPartialCancelled
}

func (uc *orderCommandsImpl) recordRefund(ctx context.Context, o *order.Order, plan order.RefundPlan, cancelledTotal int64, paymentStatus payment.Status) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		ok, err := tx.Orders().RecordRefund(ctx, o.ID(), plan, cancelledTotal, paymentStatus, now)
		if err != nil {
			return err
		}
		if !ok {
			cur, err := tx.Reads().OrderByID(ctx, o.ID())
			if err != nil {
				return err
			}
			if cur.Status() == plan.To && cur.RefundedAmount() >= cancelledTotal {
				return nil
			}
			return ErrStateChanged
		}

		if plan.Recredit {
			if err := uc.ledger.recreditIfApplied(ctx, tx, o.ID()); err != nil {
				return err
			}
		}
		if plan.RevertCoupon {
			reverted, err := tx.Coupons().Revert(ctx, *o.UserCouponID(), o.ID())
			if err != nil {
				return err
			}
			if !reverted {
				uc.logger.Info("coupon revert skipped", "order_number", o.Number().String())
			}
		}

		kind := NotifyOrderRefunded
		if plan.To == order.StatusCancelled {
			kind = NotifyOrderCancelled
		}
		return enqueue(ctx, tx, uc.settings.NotificationTopic, kind, o.Number(), plan.To, "", now)
	})
}

func (uc *orderCommandsImpl) releaseLatch(ctx context.Context, o *order.Order, status order.Status) {
	err := durably(ctx, uc.logger, uc.settings.DurableTimeout, "release_cancel_latch", func(ctx context.Context) error {
		return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			_, err := tx.Orders().ReleaseCancellation(ctx, o.ID(), status, uc.clock.Now())
			return err
		})
	})
	if err != nil {
		uc.logger.Error("failed to release cancellation latch",
			"order_number", o.Number().String(),
			"error", err.Error())
	}
}
