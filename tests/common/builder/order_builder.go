//go:build unit || e2e

package builder

import (
	"encoding/json"
	"time"

	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/domain/payment"
	reqdto "scent-fulfillment/internal/handler/dto/request"
	"scent-fulfillment/internal/infra/query"
	"scent-fulfillment/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderBuilder struct {
	ID                uuid.UUID
	Number            order.Number
	UserID            *uuid.UUID
	ProductType       string
	Recipe            *inventory.Recipe
	BatchVolume       inventory.Volume
	Price             int64
	ShippingFee       int64
	DiscountAmount    int64
	Status            order.Status
	UserCouponID      *uuid.UUID
	PaymentID         string
	Payment           *payment.Summary
	RefundedAmount    int64
	CancelRequestedAt *time.Time
	ShippedAt         *time.Time
	CreatedAt         time.Time
}

// DefaultRecipe is a two-component blend, 60/40.
func DefaultRecipe() inventory.Recipe {
	return inventory.Recipe{
		Title: "Citrus Morning",
		Granules: []inventory.Granule{
			{ComponentID: "BERGAMOT", Name: "Bergamot", Proportion: 0.6},
			{ComponentID: "CEDAR", Name: "Cedarwood", Proportion: 0.4},
		},
	}
}

func NewOrderBuilder() *OrderBuilder {
	userID := uuid.New()
	recipe := DefaultRecipe()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return &OrderBuilder{
		ID:          uuid.New(),
		Number:      order.NewNumber(now),
		UserID:      &userID,
		ProductType: "perfume_50ml",
		Recipe:      &recipe,
		BatchVolume: 500,
		Price:       45000,
		ShippingFee: 3000,
		Status:      order.StatusPending,
		PaymentID:   "pay_" + uuid.NewString(),
		CreatedAt:   now,
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) Guest() *OrderBuilder {
	b.UserID = nil
	return b
}

// Paid moves the order to paid with a matching PAID summary.
func (b *OrderBuilder) Paid() *OrderBuilder {
	paidAt := b.CreatedAt.Add(time.Minute)
	b.Status = order.StatusPaid
	b.Payment = &payment.Summary{
		Status:     payment.StatusPaid,
		Method:     "CARD",
		PaidAmount: b.FinalPrice(),
		PaidAt:     &paidAt,
	}
	return b
}

func (b *OrderBuilder) FinalPrice() int64 {
	return b.Price + b.ShippingFee - b.DiscountAmount
}

// PaidRecord is the gateway record that settles this order exactly.
func (b *OrderBuilder) PaidRecord() payment.Record {
	paidAt := b.CreatedAt.Add(time.Minute)
	return payment.Record{
		PaymentID: b.PaymentID,
		Status:    payment.StatusPaid,
		Amount:    payment.Amount{Total: b.FinalPrice(), Paid: b.FinalPrice()},
		Method:    "CARD",
		PaidAt:    &paidAt,
	}
}

// Build methods
func (b *OrderBuilder) BuildParams() order.ReconstructParams {
	return order.ReconstructParams{
		ID:                b.ID,
		Number:            b.Number,
		UserID:            b.UserID,
		ProductType:       b.ProductType,
		Recipe:            b.Recipe,
		BatchVolume:       b.BatchVolume,
		Price:             b.Price,
		ShippingFee:       b.ShippingFee,
		DiscountAmount:    b.DiscountAmount,
		Status:            b.Status,
		UserCouponID:      b.UserCouponID,
		PaymentID:         b.PaymentID,
		Payment:           b.Payment,
		RefundedAmount:    b.RefundedAmount,
		CancelRequestedAt: b.CancelRequestedAt,
		ShippedAt:         b.ShippedAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.CreatedAt,
	}
}

func (b *OrderBuilder) BuildDomain() *order.Order {
	return order.Reconstruct(b.BuildParams())
}

func (b *OrderBuilder) BuildRow() query.Order {
	row := query.Order{
		ID:                b.ID,
		OrderNumber:       b.Number.String(),
		ProductType:       b.ProductType,
		BatchVolumeUnits:  int64(b.BatchVolume),
		Price:             b.Price,
		ShippingFee:       b.ShippingFee,
		DiscountAmount:    b.DiscountAmount,
		FinalPrice:        b.FinalPrice(),
		Status:            b.Status.String(),
		PaymentID:         b.PaymentID,
		CancelledAmount:   b.RefundedAmount,
		CancelRequestedAt: timestamptz(b.CancelRequestedAt),
		ShippedAt:         timestamptz(b.ShippedAt),
		CreatedAt:         pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
		UpdatedAt:         pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
	}
	if b.UserID != nil {
		row.UserID = pgtype.UUID{Bytes: *b.UserID, Valid: true}
	}
	if b.UserCouponID != nil {
		row.UserCouponID = pgtype.UUID{Bytes: *b.UserCouponID, Valid: true}
	}
	if b.Recipe != nil {
		row.Recipe, _ = json.Marshal(b.Recipe)
	}
	if b.Payment != nil {
		row.PaymentStatus = pgtype.Text{String: b.Payment.Status.String(), Valid: true}
		row.PaidAmount = b.Payment.PaidAmount
		row.PaymentMethod = pgtype.Text{String: b.Payment.Method, Valid: b.Payment.Method != ""}
		row.PaidAt = timestamptz(b.Payment.PaidAt)
	}
	return row
}

func (b *OrderBuilder) BuildPlaceRequestDTO() reqdto.PlaceOrderRequest {
	req := reqdto.PlaceOrderRequest{
		ProductType:  b.ProductType,
		Price:        b.Price,
		PaymentID:    b.PaymentID,
		UserCouponID: b.UserCouponID,
	}
	if b.Recipe != nil {
		rr := &reqdto.RecipeRequest{Title: b.Recipe.Title}
		for _, g := range b.Recipe.Granules {
			rr.Granules = append(rr.Granules, reqdto.GranuleRequest{
				ComponentID: g.ComponentID,
				Name:        g.Name,
				Proportion:  g.Proportion,
			})
		}
		req.Recipe = rr
	}
	return req
}

func (b *OrderBuilder) BuildView() *queries.OrderView {
	v := &queries.OrderView{
		OrderNumber:    b.Number.String(),
		ProductType:    b.ProductType,
		Status:         b.Status.String(),
		Price:          b.Price,
		ShippingFee:    b.ShippingFee,
		DiscountAmount: b.DiscountAmount,
		FinalPrice:     b.FinalPrice(),
		Components:     []queries.RecipeComponentView{},
		CreatedAt:      b.CreatedAt,
		OwnerID:        b.UserID,
	}
	if b.Recipe != nil {
		v.RecipeTitle = b.Recipe.Title
		for _, g := range b.Recipe.Granules {
			v.Components = append(v.Components, queries.RecipeComponentView{
				ComponentID: g.ComponentID,
				Name:        g.Name,
				Proportion:  g.Proportion,
			})
		}
	}
	if b.Payment != nil {
		v.Payment = &queries.PaymentView{
			Status:          b.Payment.Status.String(),
			Method:          b.Payment.Method,
			PaidAmount:      b.Payment.PaidAmount,
			CancelledAmount: b.RefundedAmount,
			PaidAt:          b.Payment.PaidAt,
		}
	}
	return v
}

func timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
