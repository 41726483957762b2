package commands

import (
	"context"

	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/usecase/shared"
)

func (uc *orderCommandsImpl) Ship(ctx context.Context, number order.Number) (*order.Order, error) {
	return uc.advance(ctx, number, order.StatusPaid, order.StatusShipping, NotifyOrderShipped)
}

func (uc *orderCommandsImpl) Deliver(ctx context.Context, number order.Number) (*order.Order, error) {
	return uc.advance(ctx, number, order.StatusShipping, order.StatusDelivered, NotifyOrderDelivered)
}

// advance moves an order one step along the fulfilment path. Repeating a
// step that already happened returns the order unchanged.
func (uc *orderCommandsImpl) advance(ctx context.Context, number order.Number, from, to order.Status, kind string) (*order.Order, error) {
	o, err := uc.loadOrder(ctx, number)
	if err != nil {
		return nil, err
	}
	if o.Status() == to {
		return o, nil
	}
	if o.Status() != from {
		return nil, ErrInvalidTransition
	}
	if o.CancelRequestedAt() != nil {
		return nil, ErrCancellationInProgress
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		ok, err := tx.Orders().SwapStatus(ctx, o.ID(), from, to, now)
		if err != nil {
			return err
		}
		if !ok {
			cur, err := tx.Reads().OrderByID(ctx, o.ID())
			if err != nil {
				return err
			}
			switch {
			case cur.Status() == to:
				return nil
			case cur.CancelRequestedAt() != nil:
				return ErrCancellationInProgress
			default:
				return ErrInvalidTransition
			}
		}
		return enqueue(ctx, tx, uc.settings.NotificationTopic, kind, o.Number(), to, "", now)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order advanced", "order_number", number.String(), "from", from.String(), "to", to.String())
	return uc.reloadOrder(ctx, o.ID())
}
