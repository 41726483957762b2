package request

import (
	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/usecase/commands"

	"github.com/google/uuid"
)

type GranuleRequest struct {
	ComponentID string  `json:"componentId" binding:"required"`
	Name        string  `json:"name"`
	Proportion  float64 `json:"proportion" binding:"required,gt=0,lte=1"`
}

type RecipeRequest struct {
	Title    string           `json:"title"`
	Granules []GranuleRequest `json:"granules" binding:"required,min=1,dive"`
}

func (r *RecipeRequest) ToDomain() inventory.Recipe {
	rec := inventory.Recipe{
		Title:    r.Title,
		Granules: make([]inventory.Granule, len(r.Granules)),
	}
	for i, g := range r.Granules {
		rec.Granules[i] = inventory.Granule{
			ComponentID: g.ComponentID,
			Name:        g.Name,
			Proportion:  g.Proportion,
		}
	}
	return rec
}

type PlaceOrderRequest struct {
	ProductType  string         `json:"productType" binding:"required,max=100"`
	Price        int64          `json:"price" binding:"gte=0"`
	PaymentID    string         `json:"paymentId" binding:"required,max=200"`
	UserCouponID *uuid.UUID     `json:"userCouponId"`
	Recipe       *RecipeRequest `json:"recipe"`
}

func (r *PlaceOrderRequest) ToInput(userID *uuid.UUID) commands.PlaceOrderInput {
	in := commands.PlaceOrderInput{
		UserID:       userID,
		ProductType:  r.ProductType,
		Price:        r.Price,
		UserCouponID: r.UserCouponID,
		PaymentID:    r.PaymentID,
	}
	if r.Recipe != nil {
		rec := r.Recipe.ToDomain()
		in.Recipe = &rec
	}
	return in
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
	// Amount omitted means the whole refundable balance.
	Amount *int64 `json:"amount" binding:"omitempty,gt=0"`
}
