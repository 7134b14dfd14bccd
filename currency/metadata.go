package currency

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"
)

// Position says where the symbol goes relative to the amount.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
)

// Metadata is the display information for one currency.
type Metadata struct {
	Code          string   `json:"currency_code"`
	Symbol        string   `json:"currency_symbol"`
	Position      Position `json:"currency_position"`
	CentPrecision int      `json:"cent_precision"`
}

// DefaultMetadata is the reference list used when no other list is configured.
var DefaultMetadata = []Metadata{
	{Code: "KES", Symbol: "KSh", Position: PositionBefore, CentPrecision: 2},
	{Code: "USD", Symbol: "$", Position: PositionBefore, CentPrecision: 2},
	{Code: "GBP", Symbol: "£", Position: PositionBefore, CentPrecision: 2},
	{Code: "EUR", Symbol: "€", Position: PositionBefore, CentPrecision: 2},
	{Code: "AED", Symbol: "د.إ", Position: PositionAfter, CentPrecision: 2},
	{Code: "UGX", Symbol: "USh", Position: PositionBefore, CentPrecision: 0},
	{Code: "TZS", Symbol: "TSh", Position: PositionBefore, CentPrecision: 2},
	{Code: "RWF", Symbol: "FRw", Position: PositionBefore, CentPrecision: 0},
	{Code: "NGN", Symbol: "₦", Position: PositionBefore, CentPrecision: 2},
	{Code: "ZAR", Symbol: "R", Position: PositionBefore, CentPrecision: 2},
	{Code: "INR", Symbol: "₹", Position: PositionBefore, CentPrecision: 2},
	{Code: "JPY", Symbol: "¥", Position: PositionBefore, CentPrecision: 0},
	{Code: "CNY", Symbol: "¥", Position: PositionBefore, CentPrecision: 2},
	{Code: "CAD", Symbol: "C$", Position: PositionBefore, CentPrecision: 2},
	{Code: "AUD", Symbol: "A$", Position: PositionBefore, CentPrecision: 2},
	{Code: "CHF", Symbol: "CHF", Position: PositionAfter, CentPrecision: 2},
	{Code: "KWD", Symbol: "د.ك", Position: PositionAfter, CentPrecision: 3},
}

// MetadataTable is a read-only lookup of Metadata by currency code.
type MetadataTable struct {
	byCode map[string]Metadata
}

// NewMetadataTable indexes entries by code. A later entry for the same code replaces an
// earlier one and negative precisions are treated as zero.
func NewMetadataTable(entries []Metadata) *MetadataTable {
	byCode := make(map[string]Metadata, len(entries))
	for _, m := range entries {
		if m.CentPrecision < 0 {
			m.CentPrecision = 0
		}
		byCode[m.Code] = m
	}
	return &MetadataTable{byCode: byCode}
}

func (t *MetadataTable) Get(code string) (Metadata, bool) {
	m, ok := t.byCode[code]
	return m, ok
}

// Codes returns the known currency codes in ascending order.
func (t *MetadataTable) Codes() []string {
	codes := lo.Keys(t.byCode)
	slices.Sort(codes)
	return codes
}

// List returns every entry ordered by code.
func (t *MetadataTable) List() []Metadata {
	return lo.Map(t.Codes(), func(code string, _ int) Metadata {
		return t.byCode[code]
	})
}

// LoadMetadata reads a JSON array of metadata records, e.g.
// [{"currency_code":"KES","currency_symbol":"KSh","currency_position":"before","cent_precision":2}].
func LoadMetadata(r io.Reader) ([]Metadata, error) {
	var entries []Metadata
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode currency metadata: %w", err)
	}
	for i, m := range entries {
		if m.Code == "" {
			return nil, fmt.Errorf("currency metadata entry %d has no currency_code", i)
		}
	}
	return entries, nil
}
