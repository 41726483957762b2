//go:build unit

package commands_test

import (
	"context"
	"testing"

	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/usecase/commands"
	"scent-fulfillment/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerDeduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := commands.NewInventoryCommands(f.ledger)
	orderID := uuid.New()

	res, err := inv.Deduct(ctx, orderID, builder.DefaultRecipe(), 500)
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, []inventory.Line{
		{ComponentID: "BERGAMOT", Volume: 300},
		{ComponentID: "CEDAR", Volume: 200},
	}, res.Lines)
	assert.Equal(t, inventory.Volume(700), f.store.Counter("BERGAMOT"))
	assert.Equal(t, inventory.Volume(800), f.store.Counter("CEDAR"))

	t.Run("replay moves nothing", func(t *testing.T) {
		again, err := inv.Deduct(ctx, orderID, builder.DefaultRecipe(), 500)
		require.NoError(t, err)
		assert.True(t, again.Replayed)
		assert.Equal(t, res.Lines, again.Lines)
		assert.Equal(t, inventory.Volume(700), f.store.Counter("BERGAMOT"))
	})

	t.Run("insufficient stock leaves counters alone", func(t *testing.T) {
		other := uuid.New()
		_, err := inv.Deduct(ctx, other, builder.DefaultRecipe(), 2000)

		var short *inventory.InsufficientStockError
		require.ErrorAs(t, err, &short)
		assert.Equal(t, "BERGAMOT", short.ComponentID)
		assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
		assert.Equal(t, inventory.Volume(700), f.store.Counter("BERGAMOT"))
		assert.Equal(t, inventory.Volume(800), f.store.Counter("CEDAR"))
		_, ok := f.store.Marker(other)
		assert.False(t, ok)
	})
}

func TestLedgerRecredit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := commands.NewInventoryCommands(f.ledger)
	orderID := uuid.New()

	_, err := inv.Deduct(ctx, orderID, builder.DefaultRecipe(), 500)
	require.NoError(t, err)

	require.NoError(t, inv.Recredit(ctx, orderID))
	assert.Equal(t, inventory.Volume(1000), f.store.Counter("BERGAMOT"))
	assert.Equal(t, inventory.Volume(1000), f.store.Counter("CEDAR"))

	err = inv.Recredit(ctx, orderID)
	assert.ErrorIs(t, err, commands.ErrAlreadyRecredited)
	assert.Equal(t, inventory.Volume(1000), f.store.Counter("BERGAMOT"))

	err = inv.Recredit(ctx, uuid.New())
	assert.ErrorIs(t, err, commands.ErrDeductionNotFound)
}
