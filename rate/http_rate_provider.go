package rate

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/infigaming-com/go-currency/errors"
	"github.com/infigaming-com/go-currency/request"
	"go.uber.org/zap"
)

const (
	DefaultLatestRatesURL = "https://api.exchangerate-api.com/v4/latest"
	defaultRequestTimeout = 5 * time.Second
)

type httpRateProvider struct {
	lg             *zap.Logger
	url            string
	apiKeyHeader   string
	apiKey         string
	requestTimeout time.Duration
	maxRetries     int
	debugEnabled   bool
}

type HTTPProviderOption func(*httpRateProvider)

func WithAPIKey(header, apiKey string) HTTPProviderOption {
	return func(p *httpRateProvider) {
		p.apiKeyHeader = header
		p.apiKey = apiKey
	}
}

func WithRequestTimeout(timeout time.Duration) HTTPProviderOption {
	return func(p *httpRateProvider) {
		if timeout > 0 {
			p.requestTimeout = timeout
		}
	}
}

func WithRetry(maxRetries int) HTTPProviderOption {
	return func(p *httpRateProvider) {
		p.maxRetries = maxRetries
	}
}

func WithDebugEnabled(debugEnabled bool) HTTPProviderOption {
	return func(p *httpRateProvider) {
		p.debugEnabled = debugEnabled
	}
}

// latestRatesResponse is the "latest" payload: {"base": "KES", "rates": {"USD": 0.0077, ...}}.
type latestRatesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// NewHTTPProvider returns a Provider that GETs {url}/{base}.
func NewHTTPProvider(lg *zap.Logger, url string, opts ...HTTPProviderOption) Provider {
	if url == "" {
		url = DefaultLatestRatesURL
	}
	p := &httpRateProvider{
		lg:             lg,
		url:            strings.TrimSuffix(url, "/"),
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *httpRateProvider) LatestRates(ctx context.Context, base string) (Table, error) {
	options := []request.Option{
		request.WithLogger(p.lg),
		request.WithDebugEnabled(p.debugEnabled),
		request.WithRequestTimeout(p.requestTimeout),
		request.WithRetry(p.maxRetries),
	}
	if p.apiKey != "" {
		options = append(options, request.WithRequestHeaders(map[string]string{p.apiKeyHeader: p.apiKey}))
	}

	statusCode, responseBody, err := request.Get(ctx, fmt.Sprintf("%s/%s", p.url, base), options...)
	if err != nil {
		return nil, errors.NewError(ErrCodeRequestFailed, "rate request failed", err)
	}
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, errors.NewError(ErrCodeUnexpectedStatus, fmt.Sprintf("status code: %d, response: %s", statusCode, string(responseBody)), nil).
			WithStatusCode(statusCode)
	}

	var resp latestRatesResponse
	if err := json.Unmarshal(responseBody, &resp); err != nil {
		return nil, errors.NewError(ErrCodeMalformedResponse, "malformed rate provider response", err)
	}
	return normalize(base, resp.Rates)
}

// normalize validates the provider rates and pins the base currency to exactly 1.
func normalize(base string, rates map[string]float64) (Table, error) {
	if len(rates) == 0 {
		return nil, errors.NewError(ErrCodeMissingRates, "rate provider response has no rates", nil)
	}
	table := make(Table, len(rates)+1)
	for code, r := range rates {
		if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, errors.NewError(ErrCodeInvalidRate, fmt.Sprintf("invalid rate for %s: %v", code, r), nil).
				WithDetails(code)
		}
		table[code] = r
	}
	table[base] = 1
	return table, nil
}
