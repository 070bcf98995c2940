package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Engine produces cost breakdowns for recipes and production batches.
// It is a pure transform over ledger data; nothing is persisted.
type Engine struct {
	ledger   Ledger
	resolver *Resolver
	policy   *Policy
}

// NewEngine returns an Engine reading from ledger and applying the overhead
// policy.
func NewEngine(ledger Ledger, policy *Policy) *Engine {
	return &Engine{
		ledger:   ledger,
		resolver: NewResolver(ledger),
		policy:   policy,
	}
}

// CostRecipe costs one recipe at the latest known material prices.
// A recipe with no ingredient lines cannot be costed and yields ErrNotFound.
// yieldOverride, when set, replaces the recipe's declared output quantities;
// overheadOverride, when set, replaces the configured rate for this call.
func (e *Engine) CostRecipe(ctx context.Context, recipeID int64, yieldOverride, overheadOverride *decimal.Decimal) (CostBreakdown, error) {
	ingredients, err := e.ledger.RecipeIngredients(ctx, recipeID)
	if err != nil {
		return CostBreakdown{}, fmt.Errorf("recipe %d ingredients: %w", recipeID, err)
	}
	if len(ingredients) == 0 {
		return CostBreakdown{}, fmt.Errorf("%w: recipe %d has no ingredients", ErrNotFound, recipeID)
	}

	yield := decimal.Zero
	if yieldOverride != nil {
		yield = *yieldOverride
	} else {
		outputs, err := e.ledger.RecipeOutputs(ctx, recipeID)
		if err != nil {
			return CostBreakdown{}, fmt.Errorf("recipe %d outputs: %w", recipeID, err)
		}
		for _, out := range outputs {
			yield = yield.Add(out.Quantity)
		}
	}

	return e.breakdown(ctx, ingredients, nil, yield, overheadOverride)
}

// CostBatch costs one production batch at the material prices in effect on
// the batch's date. A batch with no consumption recorded yet is legitimate
// and produces an all-zero breakdown with no lines.
func (e *Engine) CostBatch(ctx context.Context, batchID int64, overheadOverride *decimal.Decimal) (CostBreakdown, error) {
	date, err := e.ledger.BatchDate(ctx, batchID)
	if err != nil {
		return CostBreakdown{}, fmt.Errorf("batch %d date: %w", batchID, err)
	}

	consumption, err := e.ledger.BatchConsumption(ctx, batchID)
	if err != nil {
		return CostBreakdown{}, fmt.Errorf("batch %d consumption: %w", batchID, err)
	}

	outputs, err := e.ledger.BatchOutputs(ctx, batchID)
	if err != nil {
		return CostBreakdown{}, fmt.Errorf("batch %d outputs: %w", batchID, err)
	}
	yield := decimal.Zero
	for _, out := range outputs {
		yield = yield.Add(out.Quantity)
	}

	return e.breakdown(ctx, consumption, &date, yield, overheadOverride)
}

// breakdown prices the given lines and rolls them up. Lines keep their
// insertion order, and a material appearing on several lines is costed once
// per line; rows are never merged. Line totals are exact products, so the
// direct cost is an exact sum.
func (e *Engine) breakdown(ctx context.Context, raw []Line, asOf *time.Time, yield decimal.Decimal, overheadOverride *decimal.Decimal) (CostBreakdown, error) {
	rate, err := e.policy.EffectiveRate(ctx, overheadOverride)
	if err != nil {
		return CostBreakdown{}, err
	}

	ids := make([]int64, 0, len(raw))
	for _, line := range raw {
		ids = append(ids, line.MaterialID)
	}
	costs, err := e.resolver.UnitCosts(ctx, ids, asOf)
	if err != nil {
		return CostBreakdown{}, err
	}

	lines := make([]CostLine, 0, len(raw))
	direct := decimal.Zero
	for _, line := range raw {
		unitCost := costs[line.MaterialID]
		total := line.Quantity.Mul(unitCost)
		lines = append(lines, CostLine{
			MaterialID: line.MaterialID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitCost:   unitCost,
			LineTotal:  total,
		})
		direct = direct.Add(total)
	}

	indirect := direct.Mul(rate).Round(moneyPlaces)
	total := direct.Add(indirect)

	breakdown := CostBreakdown{
		Lines:        lines,
		DirectCost:   direct,
		IndirectCost: indirect,
		TotalCost:    total,
		Yield:        yield,
	}
	if yield.IsPositive() {
		unit := total.DivRound(yield, moneyPlaces)
		breakdown.UnitCost = &unit
	}

	return breakdown, nil
}
