package reports

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/infigaming-com/go-currency/currency"
	"github.com/shopspring/decimal"
)

const defaultTimeFormat = "2006-01-02 15:04:05"

// Formatter renders one cell value.
type Formatter interface {
	Format(ctx context.Context, value any) (string, error)
}

type FormatterFunc func(ctx context.Context, value any) (string, error)

func (f FormatterFunc) Format(ctx context.Context, value any) (string, error) {
	return f(ctx, value)
}

// OriginalFormatter returns values as-is without any formatting
type OriginalFormatter struct{}

func (OriginalFormatter) Format(_ context.Context, value any) (string, error) {
	if value == nil {
		return "", nil
	}
	return fmt.Sprintf("%v", value), nil
}

// DateTimeFormatter formats unix millisecond timestamps or time.Time values.
// TimeZone is an IANA name ("Africa/Nairobi") or a fixed offset ("UTC+3").
type DateTimeFormatter struct {
	TimeZone   string
	TimeFormat string
}

func (f DateTimeFormatter) Format(_ context.Context, value any) (string, error) {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case int64:
		t = time.UnixMilli(v)
	case int:
		t = time.UnixMilli(int64(v))
	default:
		return "", fmt.Errorf("invalid timestamp type: %T", value)
	}

	location, err := f.location()
	if err != nil {
		return "", err
	}

	format := f.TimeFormat
	if format == "" {
		format = defaultTimeFormat
	}
	return t.In(location).Format(format), nil
}

func (f DateTimeFormatter) location() (*time.Location, error) {
	switch {
	case f.TimeZone == "" || f.TimeZone == "UTC":
		return time.UTC, nil
	case strings.HasPrefix(f.TimeZone, "UTC"):
		offsetHours, err := strconv.Atoi(strings.TrimPrefix(f.TimeZone, "UTC"))
		if err != nil {
			return nil, fmt.Errorf("invalid time zone offset %q: %w", f.TimeZone, err)
		}
		return time.FixedZone(f.TimeZone, offsetHours*3600), nil
	default:
		return time.LoadLocation(f.TimeZone)
	}
}

// MapFormatter maps string values to their display representations
type MapFormatter struct {
	Mappings map[string]string
}

func (f MapFormatter) Format(_ context.Context, value any) (string, error) {
	inputStr, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid value type: %T", value)
	}

	if mappedValue, exists := f.Mappings[inputStr]; exists {
		return mappedValue, nil
	}
	return inputStr, nil
}

// AmountFormatter is satisfied by *currency.Service.
type AmountFormatter interface {
	FormatAmount(amount float64, code string) string
}

// AmountConverter is satisfied by *currency.Service.
type AmountConverter interface {
	AmountFormatter
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

// CurrencyAmountFormatter formats an amount in its own currency. A currency.Amount carries its
// code; bare numbers use Currency.
type CurrencyAmountFormatter struct {
	Service  AmountFormatter
	Currency string
	ShowSign bool
}

func (f CurrencyAmountFormatter) Format(_ context.Context, value any) (string, error) {
	amount, err := toAmount(value, f.Currency)
	if err != nil {
		return "", err
	}

	formatted := f.Service.FormatAmount(amount.Value, amount.Currency)
	if f.ShowSign && amount.Value > 0 {
		formatted = "+" + formatted
	}
	return formatted, nil
}

// ConvertedAmountFormatter converts an amount into To at the current rates and formats it in To.
type ConvertedAmountFormatter struct {
	Service  AmountConverter
	Currency string
	To       string
}

func (f ConvertedAmountFormatter) Format(ctx context.Context, value any) (string, error) {
	amount, err := toAmount(value, f.Currency)
	if err != nil {
		return "", err
	}

	converted, err := f.Service.Convert(ctx, amount.Value, amount.Currency, f.To)
	if err != nil {
		return "", err
	}
	return f.Service.FormatAmount(converted, f.To), nil
}

func toAmount(value any, code string) (currency.Amount, error) {
	switch v := value.(type) {
	case currency.Amount:
		return v, nil
	case *currency.Amount:
		if v == nil {
			return currency.Amount{}, fmt.Errorf("nil amount")
		}
		return *v, nil
	case float64:
		return currency.Amount{Value: v, Currency: code}, nil
	case int64:
		return currency.Amount{Value: float64(v), Currency: code}, nil
	case int:
		return currency.Amount{Value: float64(v), Currency: code}, nil
	case decimal.Decimal:
		return currency.Amount{Value: v.InexactFloat64(), Currency: code}, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return currency.Amount{}, fmt.Errorf("invalid amount %q: %w", v, err)
		}
		return currency.Amount{Value: d.InexactFloat64(), Currency: code}, nil
	default:
		return currency.Amount{}, fmt.Errorf("invalid amount type: %T", value)
	}
}
