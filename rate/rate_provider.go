package rate

import (
	"context"
	"maps"
	"slices"
)

// Table maps a currency code to its rate relative to the table's base currency.
// The base currency's entry is exactly 1 and every rate is positive.
type Table map[string]float64

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	return maps.Clone(t)
}

// Codes returns the currency codes in the table in ascending order.
func (t Table) Codes() []string {
	return slices.Sorted(maps.Keys(t))
}

type Provider interface {
	// LatestRates returns the current rate table for base.
	LatestRates(ctx context.Context, base string) (Table, error)
}
