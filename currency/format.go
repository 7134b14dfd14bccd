package currency

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders amount with the currency's precision and symbol, grouping thousands
// with "," and using "." for decimals whatever the currency. Codes without metadata get the
// plain number, e.g. "1234.5".
func (s *Service) FormatAmount(amount float64, code string) string {
	return formatAmount(s.metadata, amount, code)
}

func (s *Service) Metadata(code string) (Metadata, bool) {
	return s.metadata.Get(code)
}

func (s *Service) SupportedCurrencies() []string {
	return s.metadata.Codes()
}

func (s *Service) MetadataList() []Metadata {
	return s.metadata.List()
}

func formatAmount(metadata *MetadataTable, amount float64, code string) string {
	meta, ok := metadata.Get(code)
	if !ok || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return strconv.FormatFloat(amount, 'f', -1, 64)
	}

	fixed := decimal.NewFromFloat(amount).StringFixed(int32(meta.CentPrecision))
	// negatives that round to zero keep their sign, e.g. "$-0.00"
	if amount < 0 && !strings.HasPrefix(fixed, "-") {
		fixed = "-" + fixed
	}
	formatted := groupThousands(fixed)
	if meta.Position == PositionBefore {
		return meta.Symbol + formatted
	}
	return formatted + meta.Symbol
}

// groupThousands inserts "," every three integer digits of a fixed-point string.
func groupThousands(s string) string {
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	negative := strings.HasPrefix(intPart, "-")
	if negative {
		intPart = intPart[1:]
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
