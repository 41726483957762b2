package queries

import (
	"context"
	"log/slog"
	"time"

	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/pkg/async"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errs.New("order not found")
	ErrUnauthorized  = errs.New("unauthorized")
)

const (
	defaultOrderListLimit = 50
	viewCountTimeout      = 500 * time.Millisecond
)

type OrderReadStore interface {
	FindByNumber(ctx context.Context, number string) (*OrderView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]*OrderListItem, error)
}

type OrderQueries interface {
	GetOrder(ctx context.Context, number string, viewer *uuid.UUID) (*OrderView, error)
	AuthorizeOrder(ctx context.Context, number string, viewer *uuid.UUID) error
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]*OrderListItem, error)
}

type orderQueriesImpl struct {
	store   OrderReadStore
	counter shared.ViewCounter
	logger  *slog.Logger
}

func NewOrderQueries(store OrderReadStore, counter shared.ViewCounter, logger *slog.Logger) OrderQueries {
	return &orderQueriesImpl{store: store, counter: counter, logger: logger}
}

// GetOrder applies the owner check and counts the view.
func (q *orderQueriesImpl) GetOrder(ctx context.Context, number string, viewer *uuid.UUID) (*OrderView, error) {
	view, err := q.visible(ctx, number, viewer)
	if err != nil {
		return nil, err
	}

	async.Fire(q.logger, "order_view_count", viewCountTimeout, func(ctx context.Context) error {
		_, err := q.counter.Incr(ctx, "order:views:"+view.OrderNumber)
		return err
	})

	return view, nil
}

// AuthorizeOrder runs the owner check alone, for commands acting on the order.
func (q *orderQueriesImpl) AuthorizeOrder(ctx context.Context, number string, viewer *uuid.UUID) error {
	_, err := q.visible(ctx, number, viewer)
	return err
}

// visible returns the order if viewer may see it: orders of registered users
// are only visible to that user, guest orders to anyone holding the number.
func (q *orderQueriesImpl) visible(ctx context.Context, number string, viewer *uuid.UUID) (*OrderView, error) {
	view, err := q.store.FindByNumber(ctx, number)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if view.OwnerID != nil {
		if viewer == nil {
			return nil, ErrUnauthorized
		}
		if *viewer != *view.OwnerID {
			return nil, ErrOrderNotFound
		}
	}
	return view, nil
}

func (q *orderQueriesImpl) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]*OrderListItem, error) {
	return q.store.ListByUser(ctx, userID, defaultOrderListLimit)
}
