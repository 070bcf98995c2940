package costing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Policy resolves the effective indirect-cost rate for a costing call,
// reading the persisted configuration unless a per-call override is given.
type Policy struct {
	store ConfigStore
}

// NewPolicy returns a Policy backed by the given configuration store.
func NewPolicy(store ConfigStore) *Policy {
	return &Policy{store: store}
}

// NormalizePct accepts a rate entered either as a fraction (0.18) or as a
// whole percentage (18) and returns the fraction. Values above 1 are taken
// to be whole percentages. Negative values are rejected.
func NormalizePct(pct decimal.Decimal) (decimal.Decimal, error) {
	if pct.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: overhead percentage %s is negative", ErrInvalidInput, pct)
	}
	if pct.GreaterThan(one) {
		return pct.DivRound(decimal.NewFromInt(100), moneyPlaces), nil
	}
	return pct, nil
}

// EffectiveRate returns the overhead rate to apply for one costing call.
// An override takes precedence for that call only and is never persisted.
// Without an override, the stored configuration applies, defaulting to a
// zero rate when nothing has been configured yet.
func (p *Policy) EffectiveRate(ctx context.Context, override *decimal.Decimal) (decimal.Decimal, error) {
	if override != nil {
		return NormalizePct(*override)
	}

	cfg, ok, err := p.store.Overhead(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read overhead config: %w", err)
	}
	if !ok {
		return decimal.Zero, nil
	}
	return cfg.Pct, nil
}

// SetConfig normalizes pct and persists the configuration whole.
// Last writer wins; overhead changes are rare administrative actions.
func (p *Policy) SetConfig(ctx context.Context, method string, pct decimal.Decimal) (OverheadConfig, error) {
	normalized, err := NormalizePct(pct)
	if err != nil {
		return OverheadConfig{}, err
	}
	if method == "" {
		method = DefaultMethod
	}

	cfg := OverheadConfig{Method: method, Pct: normalized}
	if err := p.store.SetOverhead(ctx, cfg); err != nil {
		return OverheadConfig{}, fmt.Errorf("persist overhead config: %w", err)
	}
	return cfg, nil
}
