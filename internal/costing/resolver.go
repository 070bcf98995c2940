package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Resolver resolves material unit costs against the purchase ledger, with a
// standard-cost fallback for materials that have never been purchased.
type Resolver struct {
	ledger Ledger
}

// NewResolver returns a Resolver backed by the given ledger.
func NewResolver(ledger Ledger) *Resolver {
	return &Resolver{ledger: ledger}
}

// UnitCosts returns the applicable unit cost for every requested material.
// With asOf set, only purchases dated at or before it are considered;
// otherwise the latest known purchase wins. A material with no purchase
// history falls back to its standard cost, and a material with neither
// resolves to zero. Missing cost data is a reportable state, not an error.
func (r *Resolver) UnitCosts(ctx context.Context, materialIDs []int64, asOf *time.Time) (map[int64]decimal.Decimal, error) {
	costs := make(map[int64]decimal.Decimal, len(materialIDs))

	for _, id := range materialIDs {
		if _, done := costs[id]; done {
			continue
		}

		cost, ok, err := r.ledger.LatestPurchaseCost(ctx, id, asOf)
		if err != nil {
			return nil, fmt.Errorf("latest purchase cost for material %d: %w", id, err)
		}
		if !ok {
			cost, ok, err = r.ledger.StandardCost(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("standard cost for material %d: %w", id, err)
			}
			if !ok {
				cost = decimal.Zero
			}
		}

		costs[id] = cost
	}

	return costs, nil
}
