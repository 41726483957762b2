package response

import (
	"time"

	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type RecipeComponentResponse struct {
	ComponentID string  `json:"componentId"`
	Name        string  `json:"name,omitempty"`
	Proportion  float64 `json:"proportion"`
}

type PaymentResponse struct {
	Status          string     `json:"status"`
	Method          string     `json:"method,omitempty"`
	PaidAmount      int64      `json:"paidAmount"`
	CancelledAmount int64      `json:"cancelledAmount"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	ReceiptURL      string     `json:"receiptUrl,omitempty"`
}

type OrderResponse struct {
	OrderNumber    string                    `json:"orderNumber"`
	ProductType    string                    `json:"productType"`
	Status         string                    `json:"status"`
	Price          int64                     `json:"price"`
	ShippingFee    int64                     `json:"shippingFee"`
	DiscountAmount int64                     `json:"discountAmount"`
	FinalPrice     int64                     `json:"finalPrice"`
	RecipeTitle    string                    `json:"recipeTitle,omitempty"`
	Components     []RecipeComponentResponse `json:"components"`
	Payment        *PaymentResponse          `json:"payment,omitempty"`
	CreatedAt      time.Time                 `json:"createdAt"`
}

type OrderListItemResponse struct {
	OrderNumber string    `json:"orderNumber"`
	ProductType string    `json:"productType"`
	Status      string    `json:"status"`
	FinalPrice  int64     `json:"finalPrice"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderStateResponse answers write endpoints. It carries no owner or
// payment identifiers.
type OrderStateResponse struct {
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	FinalPrice  int64  `json:"finalPrice"`
	Replayed    bool   `json:"replayed,omitempty"`
	NeedsReview bool   `json:"needsReview,omitempty"`
}

func FromOrderView(v *queries.OrderView) (*OrderResponse, error) {
	res := &OrderResponse{}
	if err := copier.CopyWithOption(res, v, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	if res.Components == nil {
		res.Components = []RecipeComponentResponse{}
	}
	return res, nil
}

func FromOrderList(items []*queries.OrderListItem) ([]*OrderListItemResponse, error) {
	res := make([]*OrderListItemResponse, 0, len(items))
	if err := copier.Copy(&res, &items); err != nil {
		return nil, err
	}
	return res, nil
}

func FromOrder(o *order.Order, replayed bool) *OrderStateResponse {
	return &OrderStateResponse{
		OrderNumber: o.Number().String(),
		Status:      o.Status().String(),
		FinalPrice:  o.Pricing().FinalPrice(),
		Replayed:    replayed,
		NeedsReview: o.NeedsReview(),
	}
}
