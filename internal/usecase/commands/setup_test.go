//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/domain/payment"
	"scent-fulfillment/internal/pkg/clock"
	"scent-fulfillment/internal/usecase/commands"
	"scent-fulfillment/tests/common/builder"
	"scent-fulfillment/tests/common/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTopic = "fulfillment-notifications"

var testSettings = commands.Settings{
	BatchVolume:       500,
	ShippingFee:       3000,
	DurableTimeout:    3 * time.Second,
	NotificationTopic: testTopic,
}

type gatewayMock struct {
	mock.Mock
}

func (g *gatewayMock) Verify(ctx context.Context, paymentID string) (payment.Record, error) {
	args := g.Called(ctx, paymentID)
	return args.Get(0).(payment.Record), args.Error(1)
}

func (g *gatewayMock) Cancel(ctx context.Context, paymentID, reason string, amount *int64) (payment.Cancellation, error) {
	args := g.Called(ctx, paymentID, reason, amount)
	return args.Get(0).(payment.Cancellation), args.Error(1)
}

type fixture struct {
	store   *memstore.Store
	gateway *gatewayMock
	clock   *clock.MockClock
	ledger  *commands.Ledger
	orders  commands.OrderCommands
	coupons commands.CouponCommands
	logger  *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:   memstore.New(),
		gateway: &gatewayMock{},
		clock:   clock.NewMockClock(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	f.ledger = commands.NewLedger(f.store, f.clock, f.logger)
	f.orders = f.newOrderCommands()
	f.coupons = commands.NewCouponCommands(f.store, f.clock, coupon.AllowAll, f.logger)

	f.store.SeedCounter("BERGAMOT", 1000)
	f.store.SeedCounter("CEDAR", 1000)
	return f
}

// newOrderCommands builds another instance over the same store, the way a
// second API replica would.
func (f *fixture) newOrderCommands() commands.OrderCommands {
	return commands.NewOrderCommands(f.store, f.gateway, f.ledger, f.clock, testSettings, f.logger)
}

func (f *fixture) seedOrder(b *builder.OrderBuilder) *order.Order {
	f.store.SeedOrder(b.BuildParams())
	return b.BuildDomain()
}

// seedPaidOrder takes b through a real reconciliation so the deduction
// marker, lines and coupon redemption all exist.
func (f *fixture) seedPaidOrder(t *testing.T, b *builder.OrderBuilder) *order.Order {
	t.Helper()
	f.seedOrder(b)
	f.gateway.On("Verify", mock.Anything, b.PaymentID).Return(b.PaidRecord(), nil).Once()

	res, err := f.orders.Reconcile(context.Background(), b.Number)
	require.NoError(t, err)
	require.Equal(t, order.StatusPaid, res.Order.Status())
	return res.Order
}

func (f *fixture) seedClaim(userID uuid.UUID, cb *builder.CouponBuilder) *coupon.UserCoupon {
	f.store.SeedCoupon(cb.BuildDomain())
	claim := cb.BuildClaim(userID, 1)
	f.store.SeedClaim(claim)
	return claim
}

// unpaidRecord is what the gateway reports before the customer completes checkout.
func unpaidRecord(b *builder.OrderBuilder) payment.Record {
	return payment.Record{
		PaymentID: b.PaymentID,
		Status:    payment.StatusReady,
		Amount:    payment.Amount{Total: b.FinalPrice()},
	}
}

func cancelledRecord(b *builder.OrderBuilder, cancelled int64) payment.Record {
	rec := b.PaidRecord()
	rec.Amount.Cancelled = cancelled
	rec.Status = payment.StatusPartialCancelled
	if cancelled >= rec.Amount.Paid {
		rec.Status = payment.StatusCancelled
	}
	return rec
}
