package currency

import (
	"context"
	"fmt"
	"math"

	"github.com/infigaming-com/go-currency/rate"
)

// Amount is a value in a given currency.
type Amount struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// Convert converts amount from one currency to another through the base currency:
// (amount / rates[from]) * rates[to]. The result is not rounded.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	return convert(s.load(ctx).rates, amount, from, to)
}

// Convert converts with the snapshot's own table, so a batch of conversions sees one table
// even if the service refreshes meanwhile.
func (s Snapshot) Convert(amount float64, from, to string) (float64, error) {
	return convert(s.Rates, amount, from, to)
}

// Sum converts every amount to the target currency with one rate table and adds them up.
func (s *Service) Sum(ctx context.Context, amounts []Amount, to string) (float64, error) {
	rates := s.load(ctx).rates
	if _, ok := rates[to]; !ok {
		return 0, unknownCurrencyCode(to)
	}

	var total float64
	for _, a := range amounts {
		converted, err := convert(rates, a.Value, a.Currency, to)
		if err != nil {
			return 0, err
		}
		total += converted
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, overflow(to)
	}
	return total, nil
}

func convert(rates rate.Table, amount float64, from, to string) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, NewError(ErrCodeInvalidAmount, fmt.Sprintf("invalid amount: %v", amount), nil, amount)
	}
	fromRate, ok := rates[from]
	if !ok {
		return 0, unknownCurrencyCode(from)
	}
	toRate, ok := rates[to]
	if !ok {
		return 0, unknownCurrencyCode(to)
	}
	if from == to {
		return amount, nil
	}
	converted := (amount / fromRate) * toRate
	if math.IsNaN(converted) || math.IsInf(converted, 0) {
		return 0, overflow(to)
	}
	return converted, nil
}

// overflow reports a finite input whose result does not fit a float64.
func overflow(to string) *Error {
	return NewError(ErrCodeInvalidAmount, fmt.Sprintf("amount in %s out of range", to), nil, to)
}
