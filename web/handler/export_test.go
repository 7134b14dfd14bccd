package handler

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/infigaming-com/go-currency/currency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestCurrencyHandler_ExportRates(t *testing.T) {
	router := setupRouter(t, liveProvider())

	t.Run("csv", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/currency/rates/export?display=USD", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		assert.Equal(t, []string{
			"Currency,Symbol,Rate,1000 KES,1 unit in USD",
			`EUR,€,0.008,€8.00,$1.25`,
			`KES,KSh,1,"KSh1,000.00",$0.01`,
			`USD,$,0.01,$10.00,$1.00`,
		}, lines)
	})

	t.Run("excel", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/currency/rates/export?format=excel&amount=50", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		file, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer file.Close()

		rows, err := file.GetRows("Rates")
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, []string{"Currency", "Symbol", "Rate", "50 KES", "1 unit in KES"}, rows[0])
		assert.Equal(t, []string{"USD", "$", "0.01", "$0.50", "KSh100.00"}, rows[3])
	})

	t.Run("pdf", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/currency/rates/export?format=pdf", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("unknown display currency", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/currency/rates/export?display=XYZ", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("bad amount", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/currency/rates/export?amount=lots", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// refreshedService answers Convert from a table that no longer has the exported codes, as if
// the service fell back between taking the snapshot and formatting the rows.
type refreshedService struct {
	*currency.Service
}

func (s refreshedService) Convert(_ context.Context, _ float64, from, _ string) (float64, error) {
	return 0, currency.NewError(currency.ErrCodeUnknownCurrencyCode, "unknown currency code", nil, from)
}

func TestCurrencyHandler_ExportRatesUsesOneTable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, err := currency.NewService(zap.NewNop(), liveProvider())
	require.NoError(t, err)

	router := gin.New()
	NewCurrencyHandler(zap.NewNop(), refreshedService{Service: svc}).Register(router)

	rec := doRequest(router, http.MethodGet, "/api/currency/rates/export?display=USD", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `EUR,€,0.008,€8.00,$1.25`)
}
