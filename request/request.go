package request

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/infigaming-com/go-currency/util"
	"go.uber.org/zap"
)

var (
	httpClient *http.Client
	once       sync.Once
)

type requestOption struct {
	lg                   *zap.Logger
	debugEnabled         bool
	queryParams          map[string]string
	requestHeaders       map[string]string
	correlationIdKey     string
	correlationId        string
	requestTimeout       time.Duration
	slowRequestThreshold time.Duration
	maxRetries           int
	retryBackoff         time.Duration
}

type Option interface {
	apply(option *requestOption) error
}

type optionFunc func(option *requestOption) error

func (f optionFunc) apply(option *requestOption) error {
	return f(option)
}

func defaultRequestOption() *requestOption {
	return &requestOption{
		lg:                   zap.L(),
		queryParams:          map[string]string{},
		requestHeaders:       map[string]string{},
		correlationIdKey:     "X-Correlation-ID",
		requestTimeout:       3 * time.Second,
		slowRequestThreshold: 5 * time.Second,
		retryBackoff:         time.Second,
	}
}

func WithLogger(lg *zap.Logger) Option {
	return optionFunc(func(option *requestOption) error {
		if lg != nil {
			option.lg = lg
		}
		return nil
	})
}

func WithDebugEnabled(debugEnabled bool) Option {
	return optionFunc(func(option *requestOption) error {
		option.debugEnabled = debugEnabled
		return nil
	})
}

func WithQueryParams(queryParams map[string]string) Option {
	return optionFunc(func(option *requestOption) error {
		maps.Copy(option.queryParams, queryParams)
		return nil
	})
}

func WithRequestHeaders(requestHeaders map[string]string) Option {
	return optionFunc(func(option *requestOption) error {
		maps.Copy(option.requestHeaders, requestHeaders)
		return nil
	})
}

func WithCorrelationId(correlationIdKey, correlationId string) Option {
	return optionFunc(func(option *requestOption) error {
		option.correlationIdKey = correlationIdKey
		option.correlationId = correlationId
		return nil
	})
}

func WithRequestTimeout(requestTimeout time.Duration) Option {
	return optionFunc(func(option *requestOption) error {
		if requestTimeout <= 0 {
			return ErrInvalidRequestTimeout
		}
		option.requestTimeout = requestTimeout
		return nil
	})
}

func WithSlowRequestThreshold(slowRequestThreshold time.Duration) Option {
	return optionFunc(func(option *requestOption) error {
		if slowRequestThreshold <= 0 {
			option.lg.Error("[HTTP-REQUEST-ERROR: invalid slow request threshold]",
				zap.Duration("slowRequestThreshold", slowRequestThreshold),
			)
			return ErrInvalidSlowRequestThreshold
		}
		option.slowRequestThreshold = slowRequestThreshold
		return nil
	})
}

// WithRetry enables retry with specified max attempts.
// Default is 0 (no retry). Only transient errors (timeout, connection refused, etc.)
// are retried; HTTP error statuses are returned to the caller as-is.
func WithRetry(maxRetries int) Option {
	return optionFunc(func(option *requestOption) error {
		if maxRetries < 0 {
			maxRetries = 0
		}
		option.maxRetries = maxRetries
		return nil
	})
}

// WithRetryBackoff sets the base delay between retries. Attempt n waits (n-1)*backoff.
func WithRetryBackoff(backoff time.Duration) Option {
	return optionFunc(func(option *requestOption) error {
		if backoff < 0 {
			backoff = 0
		}
		option.retryBackoff = backoff
		return nil
	})
}

func getHttpClient() *http.Client {
	once.Do(func() {
		httpClient = &http.Client{
			Timeout: 0,
		}
	})
	return httpClient
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable")
}

func Request(ctx context.Context, method string, requestUrl string, options ...Option) (httpStatusCode int, responseBody []byte, err error) {
	start := time.Now()

	option := defaultRequestOption()
	for _, opt := range options {
		if err := opt.apply(option); err != nil {
			return 0, nil, err
		}
	}

	defer func() {
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("url", requestUrl),
			zap.Any("queryParams", option.queryParams),
			zap.Int("httpStatusCode", httpStatusCode),
			zap.ByteString("responseBody", responseBody),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			option.lg.Error("[HTTP-REQUEST-ERROR]", append(fields, zap.Error(err))...)
			return
		}
		if option.debugEnabled {
			option.lg.Debug("[HTTP-REQUEST-DEBUG]", fields...)
		}
	}()

	maxAttempts := option.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt-1) * option.retryBackoff
			option.lg.Info("[HTTP-REQUEST-RETRY]",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", maxAttempts),
				zap.Duration("backoff", backoff),
				zap.String("method", method),
				zap.String("url", requestUrl),
			)

			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		httpStatusCode, responseBody, err = doRequest(ctx, method, requestUrl, option)
		if err == nil {
			return httpStatusCode, responseBody, nil
		}

		if !isRetryableError(err) || attempt == maxAttempts {
			return httpStatusCode, responseBody, err
		}

		lastErr = err
		option.lg.Warn("[HTTP-REQUEST-RETRYABLE-ERROR]",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts),
			zap.String("method", method),
			zap.String("url", requestUrl),
		)
	}

	return 0, nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func doRequest(ctx context.Context, method string, requestUrl string, option *requestOption) (int, []byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, option.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, method, requestUrl, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	query := req.URL.Query()
	for k, v := range option.queryParams {
		query.Add(k, v)
	}
	req.URL.RawQuery = query.Encode()

	correlationId := option.correlationId
	if correlationId == "" {
		if fromCtx, ctxErr := util.CorrelationIdFromCtx(ctx); ctxErr == nil {
			correlationId = fromCtx
		} else {
			correlationId = uuid.New().String()
		}
	}
	if option.correlationIdKey != "" {
		req.Header.Set(option.correlationIdKey, correlationId)
	}

	for k, v := range option.requestHeaders {
		req.Header.Set(k, v)
	}

	requestStart := time.Now()
	resp, err := getHttpClient().Do(req)
	if err != nil {
		if timeoutCtx.Err() == context.DeadlineExceeded {
			return 0, nil, fmt.Errorf("request timeout: %w", err)
		}
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	requestDuration := time.Since(requestStart)

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if requestDuration > option.slowRequestThreshold {
		option.lg.Warn("[HTTP-REQUEST-SLOW]",
			zap.String("method", method),
			zap.String("url", requestUrl),
			zap.Int("httpStatusCode", resp.StatusCode),
			zap.Duration("duration", requestDuration),
		)
	}

	return resp.StatusCode, responseBody, nil
}

func Get(ctx context.Context, requestUrl string, options ...Option) (httpStatusCode int, responseBody []byte, err error) {
	return Request(ctx, http.MethodGet, requestUrl, options...)
}
