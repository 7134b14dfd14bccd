package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/infigaming-com/go-currency/cache"
	"github.com/infigaming-com/go-currency/config"
	"github.com/infigaming-com/go-currency/web/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRatesServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/KES", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"KES","rates":{"KES":1,"USD":0.01,"EUR":0.008}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testConfig(t *testing.T, providerURL string) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.HTTP.Mode = "test"
	cfg.Rates.ProviderURL = providerURL
	cfg.Rates.APIKey = "secret"
	cfg.Rates.Retries = 0
	return cfg
}

func TestApp_ServesConversions(t *testing.T) {
	srv, calls := newRatesServer(t)
	a, err := newApp(zap.NewNop(), testConfig(t, srv.URL))
	require.NoError(t, err)
	defer a.Close()

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/currency/convert?amount=1000&from=KES&to=USD", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp handler.ConvertResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "$10.00", resp.Formatted)
		assert.NotEmpty(t, rec.Header().Get("X-CORRELATION-ID"))
	}
	assert.Equal(t, int32(1), calls.Load())

	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_RedisStore(t *testing.T) {
	srv, calls := newRatesServer(t)
	mr := miniredis.RunT(t)

	cfg := testConfig(t, srv.URL)
	cfg.Rates.Store = config.StoreRedis
	cfg.Rates.RefreshLock = true
	cfg.Redis = cache.RedisCacheConfig{Addr: mr.Addr(), ConnectTimeout: time.Second}

	first, err := newApp(zap.NewNop(), cfg)
	require.NoError(t, err)
	defer first.Close()

	rec := httptest.NewRecorder()
	first.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/currency/rates", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mr.Exists("currency:rates:KES"))

	second, err := newApp(zap.NewNop(), cfg)
	require.NoError(t, err)
	defer second.Close()

	rec = httptest.NewRecorder()
	second.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/currency/rates", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap struct {
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "shared", snap.Source)
	assert.Equal(t, int32(1), calls.Load())
}

func TestApp_MetadataFile(t *testing.T) {
	srv, _ := newRatesServer(t)
	path := filepath.Join(t.TempDir(), "currencies.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"currency_code":"USD","currency_symbol":"US$","currency_position":"before","cent_precision":2}]`), 0o600))

	cfg := testConfig(t, srv.URL)
	cfg.Rates.MetadataFile = path
	a, err := newApp(zap.NewNop(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "US$1,234.50", a.service.FormatAmount(1234.5, "USD"))
	assert.Equal(t, []string{"USD"}, a.service.SupportedCurrencies())

	cfg.Rates.MetadataFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = newApp(zap.NewNop(), cfg)
	assert.Error(t, err)
}

func TestApp_RedisUnavailable(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Rates.Store = config.StoreRedis
	cfg.Redis = cache.RedisCacheConfig{Addr: "127.0.0.1:1", ConnectTimeout: 100 * time.Millisecond}

	_, err := newApp(zap.NewNop(), cfg)
	assert.Error(t, err)
}

func TestApp_BaseCurrencyWithFallbackRates(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Rates.BaseCurrency = "USD"
	require.Error(t, cfg.Validate())

	cfg.Rates.FallbackRates = map[string]float64{"USD": 1, "KES": 130}
	require.NoError(t, cfg.Validate())

	a, err := newApp(zap.NewNop(), cfg)
	require.NoError(t, err)
	defer a.Close()

	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/currency/convert?amount=2&from=USD&to=KES", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 260, resp.Result, 1e-9)
	assert.Equal(t, "KSh260.00", resp.Formatted)
}
