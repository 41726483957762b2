package queries

import (
	"context"

	"github.com/google/uuid"
)

type CouponReadStore interface {
	ListClaimed(ctx context.Context, userID uuid.UUID) ([]*ClaimedCouponView, error)
}

type CouponQueries interface {
	ListClaimed(ctx context.Context, userID uuid.UUID) ([]*ClaimedCouponView, error)
}

type couponQueriesImpl struct {
	store CouponReadStore
}

func NewCouponQueries(store CouponReadStore) CouponQueries {
	return &couponQueriesImpl{store: store}
}

// ListClaimed returns the user's claims, newest first.
func (q *couponQueriesImpl) ListClaimed(ctx context.Context, userID uuid.UUID) ([]*ClaimedCouponView, error) {
	return q.store.ListClaimed(ctx, userID)
}
