package commands

import (
	"context"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/domain/payment"
	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	ReviewAmountMismatch    = "amount_mismatch"
	ReviewPaymentNotFound   = "payment_not_found"
	ReviewInsufficientStock = "insufficient_stock"
	ReviewCouponUsed        = "coupon_already_used"
	ReviewRecipeMissing     = "recipe_missing"

	ReviewPaidAfterCancel         = "paid_after_cancel"
	ReviewGatewayAhead            = "gateway_partially_cancelled"
	ReviewCancellationUnconfirmed = "cancellation_unconfirmed"
)

// Reconcile confirms the payment of a pending order against the gateway and
// applies pending -> paid together with coupon redemption and inventory
// deduction. Concurrent calls for the same order in this process share one
// run; across processes the conditional updates make exactly one win and the
// rest observe a replay.
func (uc *orderCommandsImpl) Reconcile(ctx context.Context, number order.Number) (*ReconcileResult, error) {
	ran := false
	v, err, _ := uc.inflight.Do(number.String(), func() (any, error) {
		ran = true
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.settings.DurableTimeout)
		defer cancel()
		return uc.reconcile(rctx, number)
	})
	if err != nil {
		return nil, err
	}
	// callers that joined someone else's flight did not apply anything
	res := v.(*ReconcileResult)
	return &ReconcileResult{Order: res.Order, Replayed: res.Replayed || !ran}, nil
}

func (uc *orderCommandsImpl) ReconcileByPayment(ctx context.Context, paymentID string) (*ReconcileResult, error) {
	o, err := uc.uow.CommandReads().OrderByPaymentID(ctx, paymentID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return uc.Reconcile(ctx, o.Number())
}

func (uc *orderCommandsImpl) reconcile(ctx context.Context, number order.Number) (*ReconcileResult, error) {
	o, err := uc.loadOrder(ctx, number)
	if err != nil {
		return nil, err
	}
	if o.Status().IsSettled() {
		return &ReconcileResult{Order: o, Replayed: true}, nil
	}
	if o.Status() == order.StatusCancelled {
		return nil, uc.checkCancelledPayment(ctx, o)
	}
	if o.Status() != order.StatusPending {
		return nil, ErrInvalidTransition
	}
	if o.Recipe() == nil {
		uc.flagForReview(ctx, o, ReviewRecipeMissing)
		return nil, order.ErrRecipeMissing
	}

	rec, err := uc.gateway.Verify(ctx, o.PaymentID())
	if err != nil {
		if errs.Is(err, shared.ErrPaymentNotFound) {
			uc.flagForReview(ctx, o, ReviewPaymentNotFound)
		}
		return nil, err
	}
	if err := o.VerifyPayment(rec); err != nil {
		if errs.Is(err, order.ErrAmountMismatch) {
			uc.logger.Warn("paid amount mismatch",
				"order_number", number.String(),
				"expected", o.Pricing().FinalPrice(),
				"paid", rec.Amount.Paid)
			uc.flagForReview(ctx, o, ReviewAmountMismatch)
		}
		return nil, err
	}

	replayed := false
	err = durably(ctx, uc.logger, uc.settings.DurableTimeout, "settle_payment", func(ctx context.Context) error {
		r, err := uc.settle(ctx, o.ID(), rec)
		replayed = r
		return err
	})
	if err != nil {
		switch {
		case errs.Is(err, inventory.ErrInsufficientStock):
			uc.flagForReview(ctx, o, ReviewInsufficientStock)
		case errs.Is(err, coupon.ErrAlreadyUsed):
			uc.flagForReview(ctx, o, ReviewCouponUsed)
		case !isBusinessError(err):
			uc.logger.Error("payment confirmed but local settlement failed",
				"order_number", number.String(),
				"error", err.Error())
		}
		return nil, err
	}

	settled, err := uc.reloadOrder(ctx, o.ID())
	if err != nil {
		return nil, err
	}
	if !replayed {
		uc.logger.Info("order paid", "order_number", number.String(), "paid", rec.Amount.Paid)
	}
	return &ReconcileResult{Order: settled, Replayed: replayed}, nil
}

// settle is the all-or-nothing write of a confirmed payment. It reports
// replayed=true when another reconciliation already settled the order.
func (uc *orderCommandsImpl) settle(ctx context.Context, orderID uuid.UUID, rec payment.Record) (bool, error) {
	replayed := false
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		replayed = false
		cur, err := tx.Reads().OrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if cur.Status().IsSettled() {
			replayed = true
			return nil
		}
		if cur.Status() != order.StatusPending {
			return ErrInvalidTransition
		}

		now := uc.clock.Now()
		ok, err := tx.Orders().MarkPaid(ctx, orderID, rec, now)
		if err != nil {
			return err
		}
		if !ok {
			// lost the race; the winner's commit is visible now
			again, err := tx.Reads().OrderByID(ctx, orderID)
			if err != nil {
				return err
			}
			if again.Status().IsSettled() {
				replayed = true
				return nil
			}
			return ErrStateChanged
		}

		if ucID := cur.UserCouponID(); ucID != nil {
			if err := redeemIn(ctx, tx, *ucID, *cur.UserID(), orderID, now); err != nil {
				return err
			}
		}

		recipe := cur.Recipe()
		if recipe == nil {
			return order.ErrRecipeMissing
		}
		if _, err := uc.ledger.DeductIn(ctx, tx, orderID, *recipe, cur.BatchVolume()); err != nil {
			return err
		}

		return enqueue(ctx, tx, uc.settings.NotificationTopic, NotifyOrderPaid, cur.Number(), order.StatusPaid, "", now)
	})
	return replayed, err
}

// checkCancelledPayment handles a payment confirmation for an order that was
// already cancelled. Money the gateway still holds goes to an operator; the
// order itself is never revived.
func (uc *orderCommandsImpl) checkCancelledPayment(ctx context.Context, o *order.Order) error {
	rec, err := uc.gateway.Verify(ctx, o.PaymentID())
	if err != nil {
		if errs.Is(err, shared.ErrPaymentNotFound) {
			return ErrInvalidTransition
		}
		return err
	}
	if rec.Refundable() > 0 && !o.NeedsReview() {
		uc.logger.Warn("payment captured for a cancelled order",
			"order_number", o.Number().String(),
			"refundable", rec.Refundable())
		uc.flagForReview(ctx, o, ReviewPaidAfterCancel)
	}
	return ErrInvalidTransition
}

// flagForReview marks the order for an operator without changing its status.
// It is best effort: the caller's error is what gets reported.
func (uc *orderCommandsImpl) flagForReview(ctx context.Context, o *order.Order, reason string) {
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		ok, err := tx.Orders().FlagForReview(ctx, o.ID(), o.Status(), reason, now)
		if err != nil || !ok {
			return err
		}
		return enqueue(ctx, tx, uc.settings.NotificationTopic, NotifyOrderNeedsReview, o.Number(), o.Status(), reason, now)
	})
	if err != nil {
		uc.logger.Error("failed to flag order for review",
			"order_number", o.Number().String(),
			"reason", reason,
			"error", err.Error())
		return
	}
	uc.logger.Warn("order flagged for review", "order_number", o.Number().String(), "reason", reason)
}
