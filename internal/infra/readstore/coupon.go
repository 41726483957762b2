package readstore

import (
	"context"

	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/infra/query"
	"scent-fulfillment/internal/pkg/pgconv"
	"scent-fulfillment/internal/usecase/queries"

	"github.com/google/uuid"
)

type CouponReadQueries interface {
	ListClaimedCoupons(ctx context.Context, db query.DBTX, userID uuid.UUID) ([]query.ClaimedCouponRow, error)
}

type CouponReadStore struct {
	queries CouponReadQueries
	db      query.DBTX
}

func NewCouponReadStore(queries CouponReadQueries, db query.DBTX) *CouponReadStore {
	return &CouponReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *CouponReadStore) ListClaimed(ctx context.Context, userID uuid.UUID) ([]*queries.ClaimedCouponView, error) {
	rows, err := r.queries.ListClaimedCoupons(ctx, r.db, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list claimed coupons", err)
	}

	result := make([]*queries.ClaimedCouponView, len(rows))
	for i, row := range rows {
		result[i] = toClaimedCouponViewFromRow(row)
	}
	return result, nil
}

func toClaimedCouponViewFromRow(row query.ClaimedCouponRow) *queries.ClaimedCouponView {
	return &queries.ClaimedCouponView{
		ID:              row.ID,
		CouponID:        row.CouponID,
		Code:            row.Code,
		Type:            row.Type,
		DiscountPercent: row.DiscountPercent,
		ValidTo:         pgconv.TimePtrFromPgtype(row.ValidTo),
		ClaimSeq:        row.ClaimSeq,
		ClaimedAt:       pgconv.TimeFromPgtype(row.ClaimedAt),
		UsedAt:          pgconv.TimePtrFromPgtype(row.UsedAt),
		IsUsed:          row.IsUsed,
	}
}
