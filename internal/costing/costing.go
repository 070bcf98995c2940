// Package costing computes direct, indirect and per-unit costs for recipes
// and production batches from read-only ledger data.
package costing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// moneyPlaces is the scale used for division and overhead results, matching
// the DECIMAL(18,6) columns of the schema. Sums are never rounded.
const moneyPlaces = 6

// DefaultMethod is the only allocation method currently implemented:
// indirect cost as a flat percentage of direct cost.
const DefaultMethod = "PCT_DIRECT"

var (
	// ErrNotFound indicates a recipe or batch that does not exist or has
	// nothing costable.
	ErrNotFound = errors.New("costing: not found")

	// ErrInvalidInput indicates a malformed caller-supplied parameter, such
	// as a negative overhead percentage.
	ErrInvalidInput = errors.New("costing: invalid input")
)

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err is, or wraps, ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// Line is a raw ingredient or consumption row as the ledger stores it.
type Line struct {
	MaterialID int64
	Name       string
	Quantity   decimal.Decimal
}

// CostLine is one priced line of a breakdown. Built fresh on every costing
// call and never mutated afterwards.
type CostLine struct {
	MaterialID int64           `json:"material_id"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// CostBreakdown is the result of costing a recipe or a batch. UnitCost is
// nil when the yield is zero or unknown; "free" and "unknown" are different
// answers.
type CostBreakdown struct {
	Lines        []CostLine       `json:"lines"`
	DirectCost   decimal.Decimal  `json:"direct_cost"`
	IndirectCost decimal.Decimal  `json:"indirect_cost"`
	TotalCost    decimal.Decimal  `json:"total_cost"`
	Yield        decimal.Decimal  `json:"yield"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
}

// OverheadConfig is the persisted indirect-cost allocation setting.
// Pct is always stored normalized (0.18, never 18).
type OverheadConfig struct {
	Method string          `json:"method"`
	Pct    decimal.Decimal `json:"pct"`
}

// DefaultOverheadConfig returns the configuration used before any
// administrative update: percentage-of-direct with a zero rate.
func DefaultOverheadConfig() OverheadConfig {
	return OverheadConfig{Method: DefaultMethod, Pct: decimal.Zero}
}

// Ledger is the read-only collaborator that supplies raw recipe, batch and
// cost data. Implementations must not be mutated by any method.
type Ledger interface {
	RecipeIngredients(ctx context.Context, recipeID int64) ([]Line, error)
	RecipeOutputs(ctx context.Context, recipeID int64) ([]Line, error)
	BatchConsumption(ctx context.Context, batchID int64) ([]Line, error)
	BatchOutputs(ctx context.Context, batchID int64) ([]Line, error)
	BatchDate(ctx context.Context, batchID int64) (time.Time, error)

	// LatestPurchaseCost returns the unit cost of the most recent purchase
	// line for the material at or before asOf (any date when asOf is nil).
	// The boolean reports whether a purchase line exists at all.
	LatestPurchaseCost(ctx context.Context, materialID int64, asOf *time.Time) (decimal.Decimal, bool, error)

	// StandardCost returns the material's configured standard cost, if any.
	StandardCost(ctx context.Context, materialID int64) (decimal.Decimal, bool, error)
}

// ConfigStore persists the overhead configuration. Reads and writes are
// whole-value: a reader never sees a half-written {method, pct} pair.
type ConfigStore interface {
	Overhead(ctx context.Context) (OverheadConfig, bool, error)
	SetOverhead(ctx context.Context, cfg OverheadConfig) error
}
