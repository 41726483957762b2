package commands

import (
	"context"
	"log/slog"

	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/pkg/clock"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/google/uuid"
)

type InventoryCommands interface {
	Deduct(ctx context.Context, orderID uuid.UUID, recipe inventory.Recipe, batch inventory.Volume) (*inventory.DeductionResult, error)
	Recredit(ctx context.Context, orderID uuid.UUID) error
}

// Ledger owns the per-order deduction marker and the component counters.
// The *In variants join a transaction owned by the caller.
type Ledger struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	logger *slog.Logger
}

func NewLedger(uow shared.UnitOfWork, clk clock.Clock, logger *slog.Logger) *Ledger {
	return &Ledger{uow: uow, clock: clk, logger: logger}
}

func NewInventoryCommands(l *Ledger) InventoryCommands {
	return l
}

func (l *Ledger) Deduct(ctx context.Context, orderID uuid.UUID, recipe inventory.Recipe, batch inventory.Volume) (*inventory.DeductionResult, error) {
	var result *inventory.DeductionResult
	err := l.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := l.DeductIn(ctx, tx, orderID, recipe, batch)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeductIn applies the deduction for orderID at most once. A second call sees
// the marker and returns the stored lines with Replayed set; nothing moves.
func (l *Ledger) DeductIn(ctx context.Context, tx shared.Tx, orderID uuid.UUID, recipe inventory.Recipe, batch inventory.Volume) (*inventory.DeductionResult, error) {
	lines, err := inventory.Plan(recipe, batch)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	inserted, err := tx.Inventory().InsertMarker(ctx, orderID, now)
	if err != nil {
		return nil, err
	}
	if !inserted {
		stored, err := tx.Reads().DeductionLines(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return &inventory.DeductionResult{OrderID: orderID, Lines: stored, Replayed: true}, nil
	}

	for _, line := range lines {
		ok, err := tx.Inventory().Decrement(ctx, line.ComponentID, line.Volume, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &inventory.InsufficientStockError{ComponentID: line.ComponentID, Required: line.Volume}
		}
	}
	if err := tx.Inventory().SaveLines(ctx, orderID, lines); err != nil {
		return nil, err
	}

	l.logger.Info("inventory deducted", "order_id", orderID.String(), "components", len(lines))
	return &inventory.DeductionResult{OrderID: orderID, Lines: lines}, nil
}

func (l *Ledger) Recredit(ctx context.Context, orderID uuid.UUID) error {
	return l.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return l.RecreditIn(ctx, tx, orderID)
	})
}

// RecreditIn returns exactly the recorded lines to their counters, once.
func (l *Ledger) RecreditIn(ctx context.Context, tx shared.Tx, orderID uuid.UUID) error {
	marker, err := tx.Reads().DeductionMarker(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrDeductionNotFound
		}
		return err
	}
	if marker.Recredited() {
		return ErrAlreadyRecredited
	}

	ok, err := tx.Inventory().MarkRecredited(ctx, orderID, l.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyRecredited
	}

	lines, err := tx.Reads().DeductionLines(ctx, orderID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		ok, err := tx.Inventory().Increment(ctx, line.ComponentID, line.Volume)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCounterMissing
		}
	}

	l.logger.Info("inventory recredited", "order_id", orderID.String(), "components", len(lines))
	return nil
}

// recreditIfApplied treats a missing or already-returned deduction as done.
func (l *Ledger) recreditIfApplied(ctx context.Context, tx shared.Tx, orderID uuid.UUID) error {
	err := l.RecreditIn(ctx, tx, orderID)
	if errs.IsAny(err, ErrDeductionNotFound, ErrAlreadyRecredited) {
		l.logger.Info("recredit skipped", "order_id", orderID.String(), "reason", err.Error())
		return nil
	}
	return err
}
