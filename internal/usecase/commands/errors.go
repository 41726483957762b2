package commands

import (
	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/shared"
)

var (
	ErrOrderNotFound           = errs.New("order not found")
	ErrOrderConflict           = errs.New("order conflicts with an existing order")
	ErrUnauthorized            = errs.New("unauthorized")
	ErrAlreadyPaid             = errs.New("order already paid")
	ErrInvalidTransition       = errs.New("invalid order status transition")
	ErrStateChanged            = errs.New("order state changed concurrently")
	ErrCancellationInProgress  = errs.New("cancellation already in progress")
	ErrPartialCancelNotAllowed = errs.New("partial cancellation requires a paid order")
	ErrCouponNotFound          = errs.New("coupon not found")
	ErrIneligible              = errs.New("not eligible for coupon")
	ErrDeductionNotFound       = errs.New("inventory deduction not found")
	ErrAlreadyRecredited       = errs.New("inventory already recredited")
	ErrCounterMissing          = errs.New("inventory counter missing")
)

// businessErrors are outcomes that retrying the same write cannot change.
var businessErrors = []error{
	ErrOrderNotFound,
	ErrOrderConflict,
	ErrUnauthorized,
	ErrAlreadyPaid,
	ErrInvalidTransition,
	ErrStateChanged,
	ErrCancellationInProgress,
	ErrPartialCancelNotAllowed,
	ErrCouponNotFound,
	ErrIneligible,
	ErrDeductionNotFound,
	ErrAlreadyRecredited,
	ErrCounterMissing,
	coupon.ErrAlreadyUsed,
	coupon.ErrAlreadyClaimed,
	coupon.ErrCouponInactive,
	coupon.ErrNotClaimOwner,
	inventory.ErrInsufficientStock,
	order.ErrAmountMismatch,
	order.ErrPaymentNotCompleted,
	order.ErrRecipeMissing,
	order.ErrNotRefundable,
	shared.ErrPaymentNotFound,
	shared.ErrInvalidCancellationAmount,
}

func isBusinessError(err error) bool {
	return errs.IsAny(err, businessErrors...)
}
