//go:build unit

package readstore

import (
	"context"
	"testing"

	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/infra/query"
	"scent-fulfillment/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderReadQueries struct {
	mock.Mock
}

func (m *MockOrderReadQueries) GetOrderByNumber(ctx context.Context, db query.DBTX, orderNumber string) (query.Order, error) {
	args := m.Called(ctx, db, orderNumber)
	return args.Get(0).(query.Order), args.Error(1)
}

func (m *MockOrderReadQueries) ListOrdersByUser(ctx context.Context, db query.DBTX, userID uuid.UUID, limit int32) ([]query.Order, error) {
	args := m.Called(ctx, db, userID, limit)
	return args.Get(0).([]query.Order), args.Error(1)
}

func TestFindByNumber(t *testing.T) {
	paid := builder.NewOrderBuilder().Paid()
	guestWithoutRecipe := builder.NewOrderBuilder().Guest().With(func(b *builder.OrderBuilder) { b.Recipe = nil })
	broken := builder.NewOrderBuilder().BuildRow()
	broken.Recipe = []byte("{not json")

	tests := []struct {
		name      string
		row       query.Order
		mockError error
		want      func(b *builder.OrderBuilder) bool
		wantKind  infra.RepositoryErrorKind
	}{
		{name: "success - paid order with recipe", row: paid.BuildRow()},
		{name: "success - guest order without recipe", row: guestWithoutRecipe.BuildRow()},
		{name: "order not found", mockError: pgx.ErrNoRows, wantKind: infra.KindNotFound},
		{name: "database error", mockError: assert.AnError, wantKind: infra.KindDBFailure},
		{name: "corrupt recipe", row: broken, wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockOrderReadQueries)
			mockQueries.On("GetOrderByNumber", mock.Anything, mock.Anything, "SF20260501-ABCDEF").Return(tt.row, tt.mockError)

			store := NewOrderReadStore(mockQueries, nil)
			view, err := store.FindByNumber(context.Background(), "SF20260501-ABCDEF")

			if tt.wantKind != "" {
				assert.Error(t, err)
				assert.Nil(t, view)
				assert.True(t, infra.IsKind(err, tt.wantKind))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.row.OrderNumber, view.OrderNumber)
			assert.Equal(t, tt.row.FinalPrice, view.FinalPrice)
			mockQueries.AssertExpectations(t)
		})
	}

	t.Run("projection", func(t *testing.T) {
		mockQueries := new(MockOrderReadQueries)
		mockQueries.On("GetOrderByNumber", mock.Anything, mock.Anything, paid.Number.String()).Return(paid.BuildRow(), nil)

		view, err := NewOrderReadStore(mockQueries, nil).FindByNumber(context.Background(), paid.Number.String())
		require.NoError(t, err)
		if diff := cmp.Diff(paid.BuildView(), view); diff != "" {
			t.Errorf("FindByNumber() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("guest view has no owner and empty components", func(t *testing.T) {
		mockQueries := new(MockOrderReadQueries)
		mockQueries.On("GetOrderByNumber", mock.Anything, mock.Anything, mock.Anything).Return(guestWithoutRecipe.BuildRow(), nil)

		view, err := NewOrderReadStore(mockQueries, nil).FindByNumber(context.Background(), guestWithoutRecipe.Number.String())
		require.NoError(t, err)
		assert.Nil(t, view.OwnerID)
		assert.NotNil(t, view.Components)
		assert.Empty(t, view.Components)
		assert.Nil(t, view.Payment)
	})
}

func TestListByUser(t *testing.T) {
	userID := uuid.New()
	first := builder.NewOrderBuilder().Paid().With(func(b *builder.OrderBuilder) { b.UserID = &userID })
	second := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
		b.UserID = &userID
		b.Status = order.StatusCancelled
	})

	t.Run("success", func(t *testing.T) {
		mockQueries := new(MockOrderReadQueries)
		mockQueries.On("ListOrdersByUser", mock.Anything, mock.Anything, userID, int32(20)).
			Return([]query.Order{first.BuildRow(), second.BuildRow()}, nil)

		items, err := NewOrderReadStore(mockQueries, nil).ListByUser(context.Background(), userID, 20)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, first.Number.String(), items[0].OrderNumber)
		assert.Equal(t, "paid", items[0].Status)
		assert.Equal(t, "cancelled", items[1].Status)
		assert.Equal(t, first.CreatedAt, items[0].CreatedAt)
	})

	t.Run("database error", func(t *testing.T) {
		mockQueries := new(MockOrderReadQueries)
		mockQueries.On("ListOrdersByUser", mock.Anything, mock.Anything, userID, int32(20)).
			Return([]query.Order(nil), assert.AnError)

		items, err := NewOrderReadStore(mockQueries, nil).ListByUser(context.Background(), userID, 20)
		assert.Nil(t, items)
		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}
