package converter

import (
	"encoding/json"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/domain/payment"
	"scent-fulfillment/internal/infra/query"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/pkg/pgconv"
)

func OrderToCreateParams(o *order.Order) (query.CreateOrderParams, error) {
	var recipe []byte
	if r := o.Recipe(); r != nil {
		b, err := json.Marshal(r)
		if err != nil {
			return query.CreateOrderParams{}, errs.Wrap(err, "marshal recipe")
		}
		recipe = b
	}
	p := o.Pricing()
	return query.CreateOrderParams{
		ID:               o.ID(),
		OrderNumber:      o.Number().String(),
		UserID:           pgconv.UUIDPtrToPgtype(o.UserID()),
		ProductType:      o.ProductType(),
		Recipe:           recipe,
		BatchVolumeUnits: int64(o.BatchVolume()),
		Price:            p.Price(),
		ShippingFee:      p.ShippingFee(),
		DiscountAmount:   p.DiscountAmount(),
		FinalPrice:       p.FinalPrice(),
		UserCouponID:     pgconv.UUIDPtrToPgtype(o.UserCouponID()),
		PaymentID:        o.PaymentID(),
		CreatedAt:        o.CreatedAt(),
	}, nil
}

func OrderFromRow(row query.Order) (*order.Order, error) {
	recipe, err := RecipeFromJSON(row.Recipe)
	if err != nil {
		return nil, err
	}

	var summary *payment.Summary
	if row.PaymentStatus.Valid {
		summary = &payment.Summary{
			Status:          payment.Status(row.PaymentStatus.String),
			Method:          pgconv.StringFromPgtype(row.PaymentMethod),
			PaidAmount:      row.PaidAmount,
			CancelledAmount: row.CancelledAmount,
			PaidAt:          pgconv.TimePtrFromPgtype(row.PaidAt),
			ReceiptURL:      pgconv.StringFromPgtype(row.ReceiptUrl),
		}
	}

	return order.Reconstruct(order.ReconstructParams{
		ID:                row.ID,
		Number:            order.Number(row.OrderNumber),
		UserID:            pgconv.UUIDPtrFromPgtype(row.UserID),
		ProductType:       row.ProductType,
		Recipe:            recipe,
		BatchVolume:       inventory.Volume(row.BatchVolumeUnits),
		Price:             row.Price,
		ShippingFee:       row.ShippingFee,
		DiscountAmount:    row.DiscountAmount,
		Status:            order.Status(row.Status),
		UserCouponID:      pgconv.UUIDPtrFromPgtype(row.UserCouponID),
		PaymentID:         row.PaymentID,
		Payment:           summary,
		RefundedAmount:    row.CancelledAmount,
		NeedsReview:       row.NeedsReview,
		ReviewReason:      pgconv.StringFromPgtype(row.ReviewReason),
		CancelRequestedAt: pgconv.TimePtrFromPgtype(row.CancelRequestedAt),
		ShippedAt:         pgconv.TimePtrFromPgtype(row.ShippedAt),
		CreatedAt:         pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:         pgconv.TimeFromPgtype(row.UpdatedAt),
	}), nil
}

// RecipeFromJSON returns nil for a NULL column.
func RecipeFromJSON(b []byte) (*inventory.Recipe, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var r inventory.Recipe
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, errs.Wrap(err, "unmarshal recipe")
	}
	return &r, nil
}

func CouponFromRow(row query.Coupon) (*coupon.Coupon, error) {
	return coupon.NewCoupon(
		row.ID,
		row.Code,
		coupon.Type(row.Type),
		int(row.DiscountPercent),
		pgconv.TimePtrFromPgtype(row.ValidFrom),
		pgconv.TimePtrFromPgtype(row.ValidTo),
		row.IsActive,
		pgconv.TimeFromPgtype(row.CreatedAt),
	)
}

func UserCouponFromRow(row query.UserCoupon) *coupon.UserCoupon {
	return coupon.ReconstructUserCoupon(
		row.ID,
		row.UserID,
		row.CouponID,
		int(row.ClaimSeq),
		pgconv.TimeFromPgtype(row.ClaimedAt),
		pgconv.TimePtrFromPgtype(row.UsedAt),
		row.IsUsed,
		pgconv.UUIDPtrFromPgtype(row.OrderID),
	)
}
