package repository

import (
	"context"
	"time"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/infra/query"
	"scent-fulfillment/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type CouponWriteQueries interface {
	CreateUserCoupon(ctx context.Context, db query.DBTX, arg query.CreateUserCouponParams) error
	RedeemUserCoupon(ctx context.Context, db query.DBTX, arg query.RedeemUserCouponParams) (bool, error)
	RevertUserCoupon(ctx context.Context, db query.DBTX, id, orderID uuid.UUID) (bool, error)
}

type CouponRepository struct {
	queries CouponWriteQueries
	db      query.DBTX
}

func NewCouponRepository(queries CouponWriteQueries, db query.DBTX) *CouponRepository {
	return &CouponRepository{
		queries: queries,
		db:      db,
	}
}

func (r *CouponRepository) CreateClaim(ctx context.Context, uc *coupon.UserCoupon) error {
	err := r.queries.CreateUserCoupon(ctx, r.db, query.CreateUserCouponParams{
		ID:        uc.ID(),
		UserID:    uc.UserID(),
		CouponID:  uc.CouponID(),
		ClaimSeq:  int32(uc.ClaimSeq()),
		ClaimedAt: uc.ClaimedAt(),
	})
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr("coupon claim already exists", err, infra.KindDuplicateKey)
		}
		if pgconv.IsForeignKeyViolation(err) {
			return infra.WrapRepoErr("coupon does not exist", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to create coupon claim", err)
	}
	return nil
}

func (r *CouponRepository) Redeem(ctx context.Context, userCouponID, userID, orderID uuid.UUID, now time.Time) (bool, error) {
	ok, err := r.queries.RedeemUserCoupon(ctx, r.db, query.RedeemUserCouponParams{
		ID:      userCouponID,
		UserID:  userID,
		UsedAt:  now,
		OrderID: orderID,
	})
	if err != nil {
		return false, infra.WrapRepoErr("failed to redeem coupon", err)
	}
	return ok, nil
}

func (r *CouponRepository) Revert(ctx context.Context, userCouponID, orderID uuid.UUID) (bool, error) {
	ok, err := r.queries.RevertUserCoupon(ctx, r.db, userCouponID, orderID)
	if err != nil {
		return false, infra.WrapRepoErr("failed to revert coupon", err)
	}
	return ok, nil
}
