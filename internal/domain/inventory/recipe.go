package inventory

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyRecipe        = errors.New("recipe has no granules")
	ErrTooManyGranules    = errors.New("recipe has too many granules")
	ErrInvalidProportion  = errors.New("granule proportion must be within (0, 1]")
	ErrProportionSum      = errors.New("granule proportions must sum to 1")
	ErrDuplicateComponent = errors.New("component appears more than once in recipe")
	ErrEmptyComponentID   = errors.New("granule component is empty")
	ErrInvalidBatchVolume = errors.New("batch volume must be positive")
)

const maxGranulesPerRecipe = 32

var proportionTolerance = decimal.New(1, -6)

// Granule is one weighted fragrance component of a recipe.
type Granule struct {
	ComponentID string  `json:"componentId"`
	Name        string  `json:"name,omitempty"`
	Proportion  float64 `json:"proportion"`
}

// Recipe is the composition snapshot an order owns. Granule order is kept
// as generated.
type Recipe struct {
	Title    string    `json:"title,omitempty"`
	Granules []Granule `json:"granules"`
}

func NewRecipe(title string, granules []Granule) (Recipe, error) {
	r := Recipe{Title: strings.TrimSpace(title), Granules: make([]Granule, len(granules))}
	for i, g := range granules {
		g.ComponentID = strings.TrimSpace(g.ComponentID)
		r.Granules[i] = g
	}
	if err := r.Validate(); err != nil {
		return Recipe{}, err
	}
	return r, nil
}

func (r Recipe) Validate() error {
	if len(r.Granules) == 0 {
		return ErrEmptyRecipe
	}
	if len(r.Granules) > maxGranulesPerRecipe {
		return ErrTooManyGranules
	}

	seen := make(map[string]struct{}, len(r.Granules))
	sum := decimal.Zero
	for _, g := range r.Granules {
		if g.ComponentID == "" {
			return ErrEmptyComponentID
		}
		if _, dup := seen[g.ComponentID]; dup {
			return ErrDuplicateComponent
		}
		seen[g.ComponentID] = struct{}{}

		if g.Proportion <= 0 || g.Proportion > 1 {
			return ErrInvalidProportion
		}
		sum = sum.Add(decimal.NewFromFloat(g.Proportion))
	}

	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(proportionTolerance) {
		return ErrProportionSum
	}
	return nil
}

// Clone returns a deep copy so a placed order never shares granules with
// the generator's output.
func (r Recipe) Clone() Recipe {
	out := Recipe{Title: r.Title, Granules: make([]Granule, len(r.Granules))}
	copy(out.Granules, r.Granules)
	return out
}
