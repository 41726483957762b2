package readstore

import (
	"context"

	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/infra/query"
	"scent-fulfillment/internal/infra/repository/converter"
	"scent-fulfillment/internal/pkg/pgconv"
	"scent-fulfillment/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderReadQueries interface {
	GetOrderByNumber(ctx context.Context, db query.DBTX, orderNumber string) (query.Order, error)
	ListOrdersByUser(ctx context.Context, db query.DBTX, userID uuid.UUID, limit int32) ([]query.Order, error)
}

type OrderReadStore struct {
	queries OrderReadQueries
	db      query.DBTX
}

func NewOrderReadStore(queries OrderReadQueries, db query.DBTX) *OrderReadStore {
	return &OrderReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *OrderReadStore) FindByNumber(ctx context.Context, number string) (*queries.OrderView, error) {
	row, err := r.queries.GetOrderByNumber(ctx, r.db, number)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order by number", err)
	}

	view, err := toOrderViewFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert order row", err)
	}
	return view, nil
}

func (r *OrderReadStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	rows, err := r.queries.ListOrdersByUser(ctx, r.db, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders by user", err)
	}

	result := make([]*queries.OrderListItem, len(rows))
	for i, row := range rows {
		result[i] = &queries.OrderListItem{
			OrderNumber: row.OrderNumber,
			ProductType: row.ProductType,
			Status:      row.Status,
			FinalPrice:  row.FinalPrice,
			CreatedAt:   pgconv.TimeFromPgtype(row.CreatedAt),
		}
	}
	return result, nil
}

func toOrderViewFromRow(row query.Order) (*queries.OrderView, error) {
	view := &queries.OrderView{
		OrderNumber:    row.OrderNumber,
		ProductType:    row.ProductType,
		Status:         row.Status,
		Price:          row.Price,
		ShippingFee:    row.ShippingFee,
		DiscountAmount: row.DiscountAmount,
		FinalPrice:     row.FinalPrice,
		Components:     []queries.RecipeComponentView{},
		CreatedAt:      pgconv.TimeFromPgtype(row.CreatedAt),
		OwnerID:        pgconv.UUIDPtrFromPgtype(row.UserID),
	}

	recipe, err := converter.RecipeFromJSON(row.Recipe)
	if err != nil {
		return nil, err
	}
	if recipe != nil {
		view.RecipeTitle = recipe.Title
		for _, g := range recipe.Granules {
			view.Components = append(view.Components, queries.RecipeComponentView{
				ComponentID: g.ComponentID,
				Name:        g.Name,
				Proportion:  g.Proportion,
			})
		}
	}

	if row.PaymentStatus.Valid {
		view.Payment = &queries.PaymentView{
			Status:          row.PaymentStatus.String,
			Method:          pgconv.StringFromPgtype(row.PaymentMethod),
			PaidAmount:      row.PaidAmount,
			CancelledAmount: row.CancelledAmount,
			PaidAt:          pgconv.TimePtrFromPgtype(row.PaidAt),
			ReceiptURL:      pgconv.StringFromPgtype(row.ReceiptUrl),
		}
	}

	return view, nil
}
