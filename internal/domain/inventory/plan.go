package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is the amount taken from one component for one order.
type Line struct {
	ComponentID string
	Volume      Volume
}

// Marker records that an order's deduction has been applied.
type Marker struct {
	OrderID      uuid.UUID
	AppliedAt    time.Time
	RecreditedAt *time.Time
}

func (m Marker) Recredited() bool {
	return m.RecreditedAt != nil
}

type DeductionResult struct {
	OrderID  uuid.UUID
	Lines    []Line
	Replayed bool
}

func (d DeductionResult) Total() Volume {
	var sum Volume
	for _, l := range d.Lines {
		sum += l.Volume
	}
	return sum
}

// Plan resolves every granule to batchVolume * proportion, rounded half-up to
// the 0.1 mL unit. Lines follow the recipe's granule order.
func Plan(recipe Recipe, batch Volume) ([]Line, error) {
	if batch <= 0 {
		return nil, ErrInvalidBatchVolume
	}
	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	batchUnits := decimal.NewFromInt(int64(batch))
	lines := make([]Line, 0, len(recipe.Granules))
	for _, g := range recipe.Granules {
		// Round is half away from zero, which equals half-up for positive values.
		units := batchUnits.Mul(decimal.NewFromFloat(g.Proportion)).Round(0)
		lines = append(lines, Line{ComponentID: g.ComponentID, Volume: Volume(units.IntPart())})
	}
	return lines, nil
}
