package commands

import (
	"context"
	"encoding/json"
	"time"

	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/shared"
)

const (
	NotifyOrderPaid        = "order_paid"
	NotifyOrderCancelled   = "order_cancelled"
	NotifyOrderRefunded    = "order_refunded"
	NotifyOrderShipped     = "order_shipped"
	NotifyOrderDelivered   = "order_delivered"
	NotifyOrderNeedsReview = "order_needs_review"
)

type notificationPayload struct {
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	At          time.Time `json:"at"`
}

// enqueue writes the trigger into the outbox on the caller's transaction so
// it commits or rolls back with the transition itself.
func enqueue(ctx context.Context, tx shared.Tx, topic, kind string, number order.Number, status order.Status, reason string, now time.Time) error {
	payload, err := json.Marshal(notificationPayload{
		OrderNumber: number.String(),
		Status:      status.String(),
		Reason:      reason,
		At:          now,
	})
	if err != nil {
		return errs.Wrap(err, "marshal notification payload")
	}
	return tx.Notifications().CreateJob(ctx, kind, topic, payload, now)
}
