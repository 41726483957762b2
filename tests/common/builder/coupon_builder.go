//go:build unit || e2e

package builder

import (
	"time"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/infra/query"
	"scent-fulfillment/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CouponBuilder struct {
	ID              uuid.UUID
	Code            string
	Type            coupon.Type
	DiscountPercent int
	ValidFrom       *time.Time
	ValidTo         *time.Time
	Active          bool
	CreatedAt       time.Time
}

func NewCouponBuilder() *CouponBuilder {
	return &CouponBuilder{
		ID:              uuid.New(),
		Code:            "WELCOME-10",
		Type:            coupon.TypeWelcome,
		DiscountPercent: 10,
		Active:          true,
		CreatedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (b *CouponBuilder) With(mutate func(*CouponBuilder)) *CouponBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *CouponBuilder) BuildDomain() *coupon.Coupon {
	c, err := coupon.NewCoupon(b.ID, b.Code, b.Type, b.DiscountPercent, b.ValidFrom, b.ValidTo, b.Active, b.CreatedAt)
	if err != nil {
		panic(err)
	}
	return c
}

func (b *CouponBuilder) BuildRow() query.Coupon {
	return query.Coupon{
		ID:              b.ID,
		Code:            b.Code,
		Type:            b.Type.String(),
		DiscountPercent: int32(b.DiscountPercent),
		ValidFrom:       timestamptz(b.ValidFrom),
		ValidTo:         timestamptz(b.ValidTo),
		IsActive:        b.Active,
		CreatedAt:       pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
	}
}

// BuildClaim returns an unused claim of this coupon by userID.
func (b *CouponBuilder) BuildClaim(userID uuid.UUID, seq int) *coupon.UserCoupon {
	return coupon.NewUserCoupon(userID, b.ID, seq, b.CreatedAt.Add(time.Hour))
}

func (b *CouponBuilder) BuildClaimedView(claim *coupon.UserCoupon) *queries.ClaimedCouponView {
	return &queries.ClaimedCouponView{
		ID:              claim.ID(),
		CouponID:        b.ID,
		Code:            b.Code,
		Type:            b.Type.String(),
		DiscountPercent: int32(b.DiscountPercent),
		ValidTo:         b.ValidTo,
		ClaimSeq:        int32(claim.ClaimSeq()),
		ClaimedAt:       claim.ClaimedAt(),
		UsedAt:          claim.UsedAt(),
		IsUsed:          claim.IsUsed(),
	}
}
