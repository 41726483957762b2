package api

import (
	"errors"
	"log/slog"
	"net/http"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/handler/httperr"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/commands"
	"scent-fulfillment/internal/usecase/queries"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

const retryAfterSeconds = "5"

type errorMapping struct {
	refs    []error
	status  int
	message string
}

// Messages are fixed per outcome so nothing internal leaks into a response.
var errorMappings = []errorMapping{
	{[]error{commands.ErrUnauthorized, queries.ErrUnauthorized}, http.StatusUnauthorized, "Unauthorized"},
	{[]error{coupon.ErrNotClaimOwner}, http.StatusForbidden, "Coupon belongs to another user"},
	{[]error{commands.ErrOrderNotFound, queries.ErrOrderNotFound}, http.StatusNotFound, "Order not found"},
	{[]error{commands.ErrCouponNotFound}, http.StatusNotFound, "Coupon not found"},
	{[]error{shared.ErrPaymentNotFound}, http.StatusNotFound, "Payment not found"},
	{[]error{coupon.ErrAlreadyUsed}, http.StatusConflict, "Coupon already used"},
	{[]error{coupon.ErrAlreadyClaimed}, http.StatusConflict, "Coupon already claimed"},
	{[]error{commands.ErrAlreadyPaid}, http.StatusConflict, "Order already paid"},
	{[]error{commands.ErrInvalidTransition, order.ErrNotRefundable, order.ErrNotPending}, http.StatusConflict, "Order cannot move to the requested state"},
	{[]error{commands.ErrStateChanged}, http.StatusConflict, "Order changed concurrently, retry"},
	{[]error{commands.ErrCancellationInProgress}, http.StatusConflict, "Cancellation already in progress"},
	{[]error{order.ErrRecipeAlreadyAttached}, http.StatusConflict, "Recipe already attached"},
	{[]error{commands.ErrOrderConflict}, http.StatusConflict, "Order already exists for this payment"},
	{[]error{order.ErrAmountMismatch}, http.StatusUnprocessableEntity, "Paid amount does not match the order"},
	{[]error{order.ErrPaymentNotCompleted}, http.StatusUnprocessableEntity, "Payment not completed"},
	{[]error{inventory.ErrInsufficientStock}, http.StatusUnprocessableEntity, "Insufficient stock"},
	{[]error{coupon.ErrCouponInactive}, http.StatusUnprocessableEntity, "Coupon is not active"},
	{[]error{commands.ErrIneligible}, http.StatusUnprocessableEntity, "Not eligible for this coupon"},
	{[]error{commands.ErrPartialCancelNotAllowed}, http.StatusUnprocessableEntity, "Partial cancellation requires a paid order"},
	{[]error{shared.ErrInvalidCancellationAmount}, http.StatusUnprocessableEntity, "Amount exceeds the refundable balance"},
	{[]error{order.ErrRecipeMissing}, http.StatusUnprocessableEntity, "Order has no recipe"},
	{[]error{
		inventory.ErrEmptyRecipe, inventory.ErrTooManyGranules, inventory.ErrInvalidProportion,
		inventory.ErrProportionSum, inventory.ErrDuplicateComponent, inventory.ErrEmptyComponentID,
		order.ErrEmptyProductType, order.ErrEmptyPaymentID, order.ErrNegativeAmount,
		order.ErrNegativeFinalPrice, order.ErrCouponOwnerRequired, order.ErrInvalidOrderNumber,
		coupon.ErrInvalidCouponType,
	}, http.StatusBadRequest, "Invalid request"},
}

// abortWithUsecaseError translates a usecase outcome into a response.
func abortWithUsecaseError(c *gin.Context, err error, fallback string) {
	var rejected *shared.CancellationRejectedError
	if errors.As(err, &rejected) {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, rejected.Message, nil)
		return
	}

	var stock *inventory.InsufficientStockError
	if errors.As(err, &stock) {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Insufficient stock", gin.H{"componentId": stock.ComponentID})
		return
	}

	if errs.Is(err, shared.ErrGatewayUnavailable) {
		c.Header("Retry-After", retryAfterSeconds)
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Payment gateway unavailable, retry later", nil)
		return
	}

	for _, m := range errorMappings {
		if errs.IsAny(err, m.refs...) {
			httperr.AbortWithError(c, m.status, err, m.message, nil)
			return
		}
	}

	slog.Error(fallback, "path", c.Request.URL.Path, "error", err.Error())
	httperr.AbortWithError(c, http.StatusInternalServerError, err, fallback, nil)
}
