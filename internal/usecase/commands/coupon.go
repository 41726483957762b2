package commands

import (
	"context"
	"log/slog"
	"time"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/pkg/clock"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/google/uuid"
)

type CouponCommands interface {
	CheckEligibility(ctx context.Context, userID uuid.UUID, couponType coupon.Type) (coupon.Eligibility, error)
	Claim(ctx context.Context, userID, couponID uuid.UUID) (*coupon.UserCoupon, error)
	Redeem(ctx context.Context, userCouponID, userID, orderID uuid.UUID) error
}

type couponCommandsImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	policy coupon.Policy
	logger *slog.Logger
}

func NewCouponCommands(uow shared.UnitOfWork, clk clock.Clock, policy coupon.Policy, logger *slog.Logger) CouponCommands {
	return &couponCommandsImpl{uow: uow, clock: clk, policy: policy, logger: logger}
}

func (uc *couponCommandsImpl) CheckEligibility(ctx context.Context, userID uuid.UUID, couponType coupon.Type) (coupon.Eligibility, error) {
	if !couponType.IsValid() {
		return coupon.Eligibility{}, coupon.ErrInvalidCouponType
	}
	completed, err := uc.uow.CommandReads().CountCompletedOrders(ctx, userID)
	if err != nil {
		return coupon.Eligibility{}, err
	}
	return coupon.CheckEligibility(uc.policy, coupon.EligibilityInput{
		UserID:          userID,
		Type:            couponType,
		CompletedOrders: completed,
		Now:             uc.clock.Now(),
	}), nil
}

func (uc *couponCommandsImpl) Claim(ctx context.Context, userID, couponID uuid.UUID) (*coupon.UserCoupon, error) {
	cp, err := uc.uow.CommandReads().CouponByID(ctx, couponID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	now := uc.clock.Now()
	if err := cp.ValidateClaim(now); err != nil {
		return nil, err
	}

	elig, err := uc.CheckEligibility(ctx, userID, cp.Type())
	if err != nil {
		return nil, err
	}
	if !elig.Eligible {
		return nil, ErrIneligible
	}

	var claimed *coupon.UserCoupon
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, err := tx.Reads().CountClaims(ctx, userID, couponID)
		if err != nil {
			return err
		}
		seq, err := coupon.NextClaimSeq(cp.Type(), existing, elig.CompletedOrders)
		if err != nil {
			return err
		}

		claim := coupon.NewUserCoupon(userID, couponID, seq, now)
		if err := tx.Coupons().CreateClaim(ctx, claim); err != nil {
			// a concurrent claim took the same sequence number
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return coupon.ErrAlreadyClaimed
			}
			return err
		}
		claimed = claim
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("coupon claimed",
		"user_id", userID.String(),
		"coupon_id", couponID.String(),
		"claim_seq", claimed.ClaimSeq())
	return claimed, nil
}

// Redeem marks a claim used by orderID. Of any number of concurrent calls for
// the same claim exactly one succeeds; the rest get ErrAlreadyUsed.
func (uc *couponCommandsImpl) Redeem(ctx context.Context, userCouponID, userID, orderID uuid.UUID) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return redeemIn(ctx, tx, userCouponID, userID, orderID, uc.clock.Now())
	})
}

func redeemIn(ctx context.Context, tx shared.Tx, userCouponID, userID, orderID uuid.UUID, now time.Time) error {
	ok, err := tx.Coupons().Redeem(ctx, userCouponID, userID, orderID, now)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	claim, err := tx.Reads().UserCouponByID(ctx, userCouponID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrCouponNotFound
		}
		return err
	}
	if claim.UserID() != userID {
		return coupon.ErrNotClaimOwner
	}
	return coupon.ErrAlreadyUsed
}
