//go:build unit

package inventory_test

import (
	"testing"

	"scent-fulfillment/internal/domain/inventory"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	t.Run("two granules over a 10 mL batch", func(t *testing.T) {
		recipe, err := inventory.NewRecipe("Citrus", []inventory.Granule{
			{ComponentID: "A", Proportion: 0.6},
			{ComponentID: "B", Proportion: 0.4},
		})
		require.NoError(t, err)

		lines, err := inventory.Plan(recipe, inventory.VolumeFromML(decimal.NewFromInt(10)))
		require.NoError(t, err)

		want := []inventory.Line{
			{ComponentID: "A", Volume: 60},
			{ComponentID: "B", Volume: 40},
		}
		if diff := cmp.Diff(want, lines); diff != "" {
			t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, "6.0 mL", lines[0].Volume.String())
	})

	t.Run("halves round up to the next 0.1 mL", func(t *testing.T) {
		recipe := inventory.Recipe{Granules: []inventory.Granule{
			{ComponentID: "A", Proportion: 0.5},
			{ComponentID: "B", Proportion: 0.5},
		}}

		lines, err := inventory.Plan(recipe, inventory.Volume(5))
		require.NoError(t, err)

		assert.Equal(t, inventory.Volume(3), lines[0].Volume)
		assert.Equal(t, inventory.Volume(3), lines[1].Volume)
	})

	t.Run("thirds of 50 mL", func(t *testing.T) {
		recipe := inventory.Recipe{Granules: []inventory.Granule{
			{ComponentID: "A", Proportion: 0.333333},
			{ComponentID: "B", Proportion: 0.333333},
			{ComponentID: "C", Proportion: 0.333334},
		}}

		lines, err := inventory.Plan(recipe, inventory.VolumeFromML(decimal.NewFromInt(50)))
		require.NoError(t, err)

		for _, l := range lines {
			assert.Equal(t, inventory.Volume(167), l.Volume, l.ComponentID)
		}
	})

	t.Run("non-positive batch", func(t *testing.T) {
		recipe := inventory.Recipe{Granules: []inventory.Granule{{ComponentID: "A", Proportion: 1}}}
		_, err := inventory.Plan(recipe, 0)
		assert.ErrorIs(t, err, inventory.ErrInvalidBatchVolume)
	})
}

func TestRecipeValidate(t *testing.T) {
	tests := []struct {
		name     string
		granules []inventory.Granule
		errIs    error
	}{
		{
			name:     "single full granule",
			granules: []inventory.Granule{{ComponentID: "A", Proportion: 1}},
		},
		{
			name:  "empty",
			errIs: inventory.ErrEmptyRecipe,
		},
		{
			name:     "zero proportion",
			granules: []inventory.Granule{{ComponentID: "A", Proportion: 0}, {ComponentID: "B", Proportion: 1}},
			errIs:    inventory.ErrInvalidProportion,
		},
		{
			name:     "proportion above one",
			granules: []inventory.Granule{{ComponentID: "A", Proportion: 1.2}},
			errIs:    inventory.ErrInvalidProportion,
		},
		{
			name:     "sum below one",
			granules: []inventory.Granule{{ComponentID: "A", Proportion: 0.5}, {ComponentID: "B", Proportion: 0.4}},
			errIs:    inventory.ErrProportionSum,
		},
		{
			name:     "duplicate component",
			granules: []inventory.Granule{{ComponentID: "A", Proportion: 0.5}, {ComponentID: "A", Proportion: 0.5}},
			errIs:    inventory.ErrDuplicateComponent,
		},
		{
			name:     "blank component",
			granules: []inventory.Granule{{ComponentID: "  ", Proportion: 1}},
			errIs:    inventory.ErrEmptyComponentID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inventory.NewRecipe("", tt.granules)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRecipeClone(t *testing.T) {
	orig := inventory.Recipe{Granules: []inventory.Granule{{ComponentID: "A", Proportion: 1}}}
	cl := orig.Clone()
	cl.Granules[0].ComponentID = "Z"

	assert.Equal(t, "A", orig.Granules[0].ComponentID)
}

func TestInsufficientStockError(t *testing.T) {
	var err error = &inventory.InsufficientStockError{ComponentID: "B", Required: 40}

	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Contains(t, err.Error(), `"B"`)
	assert.Contains(t, err.Error(), "4.0 mL")
}
