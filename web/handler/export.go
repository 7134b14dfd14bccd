package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/infigaming-com/go-currency/currency"
	"github.com/infigaming-com/go-currency/reports"
)

const defaultExportAmount = 1000

type rateRow struct {
	Code   string
	Symbol string
	Rate   float64
	Base   currency.Amount
	Unit   currency.Amount
}

// ExportRates renders the current rate table as a csv, excel or pdf download.
// Query: format, display (currency the unit price is shown in, default base), amount (of base).
func (h *CurrencyHandler) ExportRates(c *gin.Context) {
	ctx := c.Request.Context()
	snap := h.service.Snapshot(ctx)

	display := c.DefaultQuery("display", snap.Base)
	if _, ok := snap.Rates[display]; !ok {
		h.fail(c, currency.NewError(currency.ErrCodeUnknownCurrencyCode, fmt.Sprintf("unknown currency code: %q", display), nil, display))
		return
	}
	amount := float64(defaultExportAmount)
	if raw, ok := c.GetQuery("amount"); ok {
		var err error
		if amount, err = parseAmount(raw); err != nil {
			h.fail(c, err)
			return
		}
	}

	rows := make([]rateRow, 0, len(snap.Rates))
	for _, code := range snap.Rates.Codes() {
		meta, _ := h.service.Metadata(code)
		rows = append(rows, rateRow{
			Code:   code,
			Symbol: meta.Symbol,
			Rate:   snap.Rates[code],
			Base:   currency.Amount{Value: amount * snap.Rates[code], Currency: code},
			Unit:   currency.Amount{Value: 1, Currency: code},
		})
	}

	table := reports.NewTable[rateRow]().
		Add("Currency", func(r rateRow) any { return r.Code }, nil).
		Add("Symbol", func(r rateRow) any { return r.Symbol }, nil).
		Add("Rate", func(r rateRow) any { return r.Rate }, nil).
		Add(fmt.Sprintf("%s %s", strconv.FormatFloat(amount, 'f', -1, 64), snap.Base), func(r rateRow) any { return r.Base },
			reports.CurrencyAmountFormatter{Service: h.service}).
		Add("1 unit in "+display, func(r rateRow) any { return r.Unit },
			reports.ConvertedAmountFormatter{Service: snapshotConverter{snap: snap, formatter: h.service}, To: display})

	title := fmt.Sprintf("Exchange rates, base %s, %s (%s)", snap.Base, snap.FetchedAt.UTC().Format("2006-01-02 15:04 MST"), snap.Source)
	content, ext, err := table.Generate(ctx, reports.Format(c.DefaultQuery("format", string(reports.FormatCSV))), rows,
		reports.WithTitle(title), reports.WithSheetName("Rates"))
	if err != nil {
		h.fail(c, err)
		return
	}

	filename := fmt.Sprintf("rates-%s-%s.%s", snap.Base, snap.FetchedAt.UTC().Format("20060102T1504"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, reports.ContentType(ext), content)
}

// snapshotConverter pins conversions to the table the export rows were built from.
type snapshotConverter struct {
	snap      currency.Snapshot
	formatter reports.AmountFormatter
}

func (c snapshotConverter) Convert(_ context.Context, amount float64, from, to string) (float64, error) {
	return c.snap.Convert(amount, from, to)
}

func (c snapshotConverter) FormatAmount(amount float64, code string) string {
	return c.formatter.FormatAmount(amount, code)
}
