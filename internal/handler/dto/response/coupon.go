package response

import (
	"time"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ClaimedCouponResponse struct {
	ID              uuid.UUID  `json:"id"`
	CouponID        uuid.UUID  `json:"couponId"`
	Code            string     `json:"code"`
	Type            string     `json:"type"`
	DiscountPercent int32      `json:"discountPercent"`
	ValidTo         *time.Time `json:"validTo,omitempty"`
	ClaimSeq        int32      `json:"claimSeq"`
	ClaimedAt       time.Time  `json:"claimedAt"`
	UsedAt          *time.Time `json:"usedAt,omitempty"`
	IsUsed          bool       `json:"isUsed"`
}

type ClaimResponse struct {
	ID        uuid.UUID `json:"id"`
	CouponID  uuid.UUID `json:"couponId"`
	ClaimSeq  int       `json:"claimSeq"`
	ClaimedAt time.Time `json:"claimedAt"`
}

type EligibilityResponse struct {
	Eligible        bool   `json:"eligible"`
	CompletedOrders int    `json:"completedOrders"`
	Reason          string `json:"reason,omitempty"`
}

func FromClaimedCoupons(items []*queries.ClaimedCouponView) ([]*ClaimedCouponResponse, error) {
	res := make([]*ClaimedCouponResponse, 0, len(items))
	if err := copier.Copy(&res, &items); err != nil {
		return nil, err
	}
	return res, nil
}

func FromUserCoupon(uc *coupon.UserCoupon) *ClaimResponse {
	return &ClaimResponse{
		ID:        uc.ID(),
		CouponID:  uc.CouponID(),
		ClaimSeq:  uc.ClaimSeq(),
		ClaimedAt: uc.ClaimedAt(),
	}
}

func FromEligibility(e coupon.Eligibility) *EligibilityResponse {
	return &EligibilityResponse{
		Eligible:        e.Eligible,
		CompletedOrders: e.CompletedOrders,
		Reason:          e.Reason,
	}
}
