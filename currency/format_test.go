package currency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	svc, _ := newTestService(t, &fakeProvider{rates: liveRates})

	tests := []struct {
		name     string
		amount   float64
		code     string
		expected string
	}{
		{name: "symbol before", amount: 1234.5, code: "USD", expected: "$1,234.50"},
		{name: "base currency", amount: 1234567.891, code: "KES", expected: "KSh1,234,567.89"},
		{name: "symbol after", amount: 99.9, code: "AED", expected: "99.90د.إ"},
		{name: "no decimals", amount: 1234.5, code: "JPY", expected: "¥1,235"},
		{name: "three decimals", amount: 1234.5, code: "KWD", expected: "1,234.500د.ك"},
		{name: "small", amount: 5, code: "GBP", expected: "£5.00"},
		{name: "zero", amount: 0, code: "EUR", expected: "€0.00"},
		{name: "rounding carries into grouping", amount: 999.999, code: "USD", expected: "$1,000.00"},
		{name: "negative", amount: -1234.5, code: "USD", expected: "$-1,234.50"},
		{name: "negative rounding to zero", amount: -0.001, code: "USD", expected: "$-0.00"},
		{name: "negative rounding to zero no decimals", amount: -0.4, code: "JPY", expected: "¥-0"},
		{name: "unknown code", amount: 1234.5, code: "XYZ", expected: "1234.5"},
		{name: "unknown code integer", amount: 1000000, code: "XYZ", expected: "1000000"},
		{name: "not a number", amount: math.NaN(), code: "USD", expected: "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.FormatAmount(tt.amount, tt.code))
		})
	}
}

func TestFormatAmount_CustomMetadata(t *testing.T) {
	svc, _ := newTestService(t, &fakeProvider{rates: liveRates}, WithMetadata(NewMetadataTable([]Metadata{
		{Code: "BTC", Symbol: "₿", Position: PositionBefore, CentPrecision: 8},
		{Code: "XAF", Symbol: " FCFA", Position: PositionAfter, CentPrecision: -1},
	})))

	assert.Equal(t, "₿0.00012345", svc.FormatAmount(0.00012345, "BTC"))
	assert.Equal(t, "1,500 FCFA", svc.FormatAmount(1500, "XAF"))
	assert.Equal(t, "10", svc.FormatAmount(10, "USD"))
}

func TestGroupThousands(t *testing.T) {
	tests := map[string]string{
		"0":             "0",
		"12":            "12",
		"123":           "123",
		"1234":          "1,234",
		"123456":        "123,456",
		"1234567.00":    "1,234,567.00",
		"-1234.5":       "-1,234.5",
		"-123":          "-123",
		"1000000000.25": "1,000,000,000.25",
	}

	for in, expected := range tests {
		assert.Equal(t, expected, groupThousands(in), in)
	}
}
