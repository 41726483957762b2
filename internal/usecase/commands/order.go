package commands

import (
	"context"
	"log/slog"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/pkg/clock"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type OrderCommands interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*order.Order, error)
	AttachRecipe(ctx context.Context, number order.Number, recipe inventory.Recipe, viewer *uuid.UUID) (*order.Order, error)
	Reconcile(ctx context.Context, number order.Number) (*ReconcileResult, error)
	ReconcileByPayment(ctx context.Context, paymentID string) (*ReconcileResult, error)
	Cancel(ctx context.Context, in CancelInput) (*order.Order, error)
	Ship(ctx context.Context, number order.Number) (*order.Order, error)
	Deliver(ctx context.Context, number order.Number) (*order.Order, error)
}

type PlaceOrderInput struct {
	UserID       *uuid.UUID
	ProductType  string
	Recipe       *inventory.Recipe
	Price        int64
	UserCouponID *uuid.UUID
	PaymentID    string
}

type ReconcileResult struct {
	Order    *order.Order
	Replayed bool
}

type CancelInput struct {
	Number order.Number
	Actor  *uuid.UUID
	Admin  bool
	Reason string
	// Amount nil means the whole refundable balance.
	Amount *int64
}

type orderCommandsImpl struct {
	uow      shared.UnitOfWork
	gateway  shared.PaymentGateway
	ledger   *Ledger
	clock    clock.Clock
	settings Settings
	logger   *slog.Logger
	inflight singleflight.Group
}

func NewOrderCommands(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	ledger *Ledger,
	clk clock.Clock,
	settings Settings,
	logger *slog.Logger,
) OrderCommands {
	return &orderCommandsImpl{
		uow:      uow,
		gateway:  gateway,
		ledger:   ledger,
		clock:    clk,
		settings: settings,
		logger:   logger,
	}
}

func (uc *orderCommandsImpl) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*order.Order, error) {
	var discount int64
	if in.UserCouponID != nil {
		if in.UserID == nil {
			return nil, order.ErrCouponOwnerRequired
		}
		d, err := uc.couponDiscount(ctx, *in.UserCouponID, *in.UserID, in.Price)
		if err != nil {
			return nil, err
		}
		discount = d
	}

	pricing, err := order.NewPricing(in.Price, uc.settings.ShippingFee, discount)
	if err != nil {
		return nil, err
	}

	o, err := order.New(order.NewParams{
		UserID:       in.UserID,
		ProductType:  in.ProductType,
		Recipe:       in.Recipe,
		BatchVolume:  uc.settings.BatchVolume,
		Pricing:      pricing,
		UserCouponID: in.UserCouponID,
		PaymentID:    in.PaymentID,
	}, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Orders().Create(ctx, o); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrOrderConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order placed",
		"order_number", o.Number().String(),
		"final_price", pricing.FinalPrice(),
		"has_recipe", o.Recipe() != nil)
	return o, nil
}

// couponDiscount checks the claim can be applied now. The claim is only
// consumed when the payment is reconciled.
func (uc *orderCommandsImpl) couponDiscount(ctx context.Context, userCouponID, userID uuid.UUID, price int64) (int64, error) {
	reads := uc.uow.CommandReads()
	claim, err := reads.UserCouponByID(ctx, userCouponID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return 0, ErrCouponNotFound
		}
		return 0, err
	}
	if err := claim.ValidateApply(userID); err != nil {
		return 0, err
	}

	cp, err := reads.CouponByID(ctx, claim.CouponID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return 0, ErrCouponNotFound
		}
		return 0, err
	}
	if !cp.IsClaimableAt(uc.clock.Now()) {
		return 0, coupon.ErrCouponInactive
	}
	return order.PercentDiscount(price, cp.DiscountPercent().Int()), nil
}

func (uc *orderCommandsImpl) AttachRecipe(ctx context.Context, number order.Number, recipe inventory.Recipe, viewer *uuid.UUID) (*order.Order, error) {
	o, err := uc.loadOrder(ctx, number)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(viewer) {
		return nil, ErrOrderNotFound
	}
	if err := o.AttachRecipe(recipe); err != nil {
		return nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, err := tx.Orders().AttachRecipe(ctx, o.ID(), *o.Recipe(), uc.clock.Now())
		if err != nil {
			return err
		}
		if !ok {
			return order.ErrRecipeAlreadyAttached
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.reloadOrder(ctx, o.ID())
}

func (uc *orderCommandsImpl) loadOrder(ctx context.Context, number order.Number) (*order.Order, error) {
	o, err := uc.uow.CommandReads().OrderByNumber(ctx, number)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (uc *orderCommandsImpl) reloadOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := uc.uow.CommandReads().OrderByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}
