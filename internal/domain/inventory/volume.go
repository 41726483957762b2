package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Volume counts the smallest addressable unit, 0.1 mL. Counters, deduction
// lines and batch sizes all use it so deduct and recredit are exact inverses.
type Volume int64

const unitExp = 1 // 10^1 units per mL

func VolumeFromML(ml decimal.Decimal) Volume {
	return Volume(ml.Shift(unitExp).Round(0).IntPart())
}

func (v Volume) ML() decimal.Decimal {
	return decimal.New(int64(v), -unitExp)
}

func (v Volume) String() string {
	return fmt.Sprintf("%s mL", v.ML().StringFixed(unitExp))
}
