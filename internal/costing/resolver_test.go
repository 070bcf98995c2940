package costing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestUnitCosts_PurchaseBeatsStandardCost(t *testing.T) {
	ledger := newMemoryLedger()
	ledger.purchases[10] = []purchase{
		{date: day(t, "2024-01-05"), lineID: 1, unitCost: dec(t, "450")},
		{date: day(t, "2024-02-05"), lineID: 2, unitCost: dec(t, "475")},
	}
	ledger.standard[10] = dec(t, "400")
	ledger.standard[11] = dec(t, "90")

	resolver := NewResolver(ledger)

	costs, err := resolver.UnitCosts(context.Background(), []int64{10, 11, 12}, nil)
	if err != nil {
		t.Fatalf("UnitCosts returned error: %v", err)
	}

	assertDecimal(t, "purchased material", costs[10], dec(t, "475"))
	assertDecimal(t, "standard-cost fallback", costs[11], dec(t, "90"))
	assertDecimal(t, "unknown material", costs[12], decimal.Zero)
}

func TestUnitCosts_AsOfDateRestrictsPurchases(t *testing.T) {
	ledger := newMemoryLedger()
	ledger.purchases[10] = []purchase{
		{date: day(t, "2024-01-05"), lineID: 1, unitCost: dec(t, "450")},
		{date: day(t, "2024-02-05"), lineID: 2, unitCost: dec(t, "475")},
	}
	ledger.standard[10] = dec(t, "400")

	resolver := NewResolver(ledger)

	asOf := day(t, "2024-01-31")
	costs, err := resolver.UnitCosts(context.Background(), []int64{10}, &asOf)
	if err != nil {
		t.Fatalf("UnitCosts returned error: %v", err)
	}
	assertDecimal(t, "as-of cost", costs[10], dec(t, "450"))

	// Before any purchase the standard cost applies.
	early := day(t, "2023-12-31")
	costs, err = resolver.UnitCosts(context.Background(), []int64{10}, &early)
	if err != nil {
		t.Fatalf("UnitCosts returned error: %v", err)
	}
	assertDecimal(t, "pre-history cost", costs[10], dec(t, "400"))
}

func TestUnitCosts_DuplicateIDsResolvedOnce(t *testing.T) {
	ledger := newMemoryLedger()
	ledger.standard[10] = dec(t, "50")

	resolver := NewResolver(ledger)

	costs, err := resolver.UnitCosts(context.Background(), []int64{10, 10, 10}, nil)
	if err != nil {
		t.Fatalf("UnitCosts returned error: %v", err)
	}
	if len(costs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(costs))
	}
	assertDecimal(t, "cost", costs[10], dec(t, "50"))
}
