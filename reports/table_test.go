package reports

import (
	"context"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/infigaming-com/go-currency/currency"
	"github.com/infigaming-com/go-currency/rate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticProvider rate.Table

func (p staticProvider) LatestRates(context.Context, string) (rate.Table, error) {
	return rate.Table(p).Clone(), nil
}

func newTestService(t *testing.T) *currency.Service {
	t.Helper()
	svc, err := currency.NewService(zap.NewNop(), staticProvider{"KES": 1, "USD": 0.01, "EUR": 0.008})
	require.NoError(t, err)
	return svc
}

type transaction struct {
	At     int64
	Kind   string
	Amount currency.Amount
}

func TestTable_Rows(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	table := NewTable[transaction]().
		Add("Date", func(r transaction) any { return r.At }, DateTimeFormatter{TimeZone: "UTC+3"}).
		Add("Type", func(r transaction) any { return r.Kind }, MapFormatter{Mappings: map[string]string{"payment_deposit": "Deposit"}}).
		Add("Amount", func(r transaction) any { return r.Amount }, CurrencyAmountFormatter{Service: svc, ShowSign: true}).
		Add("Amount (USD)", func(r transaction) any { return r.Amount }, ConvertedAmountFormatter{Service: svc, To: "USD"}).
		Add("Currency", func(r transaction) any { return r.Amount.Currency }, nil)

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).UnixMilli()
	rows, err := table.Rows(ctx, []transaction{
		{At: at, Kind: "payment_deposit", Amount: currency.Amount{Value: 150000, Currency: "KES"}},
		{At: at, Kind: "game_bet", Amount: currency.Amount{Value: -8, Currency: "EUR"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Type", "Amount", "Amount (USD)", "Currency"}, table.Headers())
	assert.Equal(t, [][]string{
		{"2024-03-01 12:00:00", "Deposit", "+KSh150,000.00", "$1,500.00", "KES"},
		{"2024-03-01 12:00:00", "game_bet", "€-8.00", "$-10.00", "EUR"},
	}, rows)
}

func TestTable_RowsReportsFormatterError(t *testing.T) {
	svc := newTestService(t)

	table := NewTable[transaction]().
		Add("Amount (XYZ)", func(r transaction) any { return r.Amount }, ConvertedAmountFormatter{Service: svc, To: "XYZ"})

	_, err := table.Rows(context.Background(), []transaction{{Amount: currency.Amount{Value: 1, Currency: "KES"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, currency.ErrUnknownCurrencyCode)
	assert.Contains(t, err.Error(), `row 0 column "Amount (XYZ)"`)
}

func TestTable_Generate(t *testing.T) {
	table := NewTable[transaction]().
		Add("Type", func(r transaction) any { return r.Kind }, nil).
		Add("Value", func(r transaction) any { return r.Amount.Value }, FormatterFunc(func(_ context.Context, v any) (string, error) {
			return fmt.Sprintf("%.1f", v), nil
		}))

	content, ext, err := table.Generate(context.Background(), FormatCSV, []transaction{{Kind: "bet", Amount: currency.Amount{Value: 2.5}}})
	require.NoError(t, err)
	assert.Equal(t, "csv", ext)
	assert.Equal(t, "Type,Value\nbet,2.5\n", string(content))
}

func TestCurrencyAmountFormatter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	f := CurrencyAmountFormatter{Service: svc, Currency: "USD"}

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "float", value: 1234.5, expected: "$1,234.50"},
		{name: "int", value: 12, expected: "$12.00"},
		{name: "decimal string", value: "1000000.005", expected: "$1,000,000.01"},
		{name: "decimal", value: decimal.RequireFromString("0.5"), expected: "$0.50"},
		{name: "amount keeps its currency", value: currency.Amount{Value: 99.9, Currency: "AED"}, expected: "99.90د.إ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Format(ctx, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := f.Format(ctx, "abc")
	assert.Error(t, err)
	_, err = f.Format(ctx, true)
	assert.Error(t, err)
}

func TestDateTimeFormatter(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 21, 30, 0, 0, time.UTC)

	got, err := DateTimeFormatter{}.Format(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 21:30:00", got)

	got, err = DateTimeFormatter{TimeZone: "Africa/Nairobi", TimeFormat: time.DateOnly}.Format(ctx, at.UnixMilli())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", got)

	_, err = DateTimeFormatter{TimeZone: "UTC+x"}.Format(ctx, at)
	assert.Error(t, err)
	_, err = DateTimeFormatter{}.Format(ctx, "yesterday")
	assert.Error(t, err)
}

func TestOriginalFormatter(t *testing.T) {
	ctx := context.Background()

	got, _ := OriginalFormatter{}.Format(ctx, nil)
	assert.Equal(t, "", got)
	got, _ = OriginalFormatter{}.Format(ctx, 0.0077)
	assert.Equal(t, "0.0077", got)
}
