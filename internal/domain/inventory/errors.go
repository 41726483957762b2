package inventory

import (
	"errors"
	"fmt"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// InsufficientStockError names the first component that could not cover its line.
type InsufficientStockError struct {
	ComponentID string
	Required    Volume
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for component %q (need %s)", e.ComponentID, e.Required)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
