package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/infigaming-com/go-currency/util"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const maxLoggedBodySize = 1024

type loggingMiddlewareOptions struct {
	lg            *zap.Logger
	debugEnabled  bool
	excludePaths  []string
	slowThreshold time.Duration
}

type LoggingMiddlewareOption func(*loggingMiddlewareOptions)

func WithLogger(lg *zap.Logger) LoggingMiddlewareOption {
	return func(o *loggingMiddlewareOptions) {
		o.lg = lg
	}
}

func WithDebugEnabled(debugEnabled bool) LoggingMiddlewareOption {
	return func(o *loggingMiddlewareOptions) {
		o.debugEnabled = debugEnabled
	}
}

func WithExcludePaths(excludePaths []string) LoggingMiddlewareOption {
	return func(o *loggingMiddlewareOptions) {
		o.excludePaths = excludePaths
	}
}

// WithSlowThreshold logs requests slower than threshold at warn level. Zero disables it.
func WithSlowThreshold(threshold time.Duration) LoggingMiddlewareOption {
	return func(o *loggingMiddlewareOptions) {
		o.slowThreshold = threshold
	}
}

func defaultLoggingMiddlewareOptions() *loggingMiddlewareOptions {
	return &loggingMiddlewareOptions{
		lg:           zap.L(),
		debugEnabled: true,
	}
}

func LoggingMiddleware(opts ...LoggingMiddlewareOption) gin.HandlerFunc {
	cfg := defaultLoggingMiddlewareOptions()

	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		if lo.Contains(cfg.excludePaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		correlationId, err := util.CorrelationIdFromCtx(ctx)
		if err != nil {
			cfg.lg.Warn("failed to get correlation id", zap.Error(err))
			correlationId = uuid.New().String()
		}

		startTime := time.Now()
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		rw := &responseWriter{ResponseWriter: c.Writer, body: bytes.NewBuffer([]byte{})}
		c.Writer = rw

		c.Next()

		duration := time.Since(startTime)
		status := c.Writer.Status()

		if status >= 500 {
			cfg.lg.Error("[HTTP-SERVER-ERROR]",
				zap.String("correlationId", correlationId),
				zap.String("method", c.Request.Method),
				zap.String("url", c.Request.URL.String()),
				zap.Int("status", status),
				zap.Strings("errors", c.Errors.Errors()),
				zap.Duration("duration", duration),
			)
		} else if cfg.slowThreshold > 0 && duration > cfg.slowThreshold {
			cfg.lg.Warn("[HTTP-SLOW-REQUEST]",
				zap.String("correlationId", correlationId),
				zap.String("method", c.Request.Method),
				zap.String("url", c.Request.URL.String()),
				zap.Duration("duration", duration),
			)
		}

		if cfg.debugEnabled {
			responseBody := rw.body.Bytes()
			if len(responseBody) > maxLoggedBodySize {
				responseBody = responseBody[:maxLoggedBodySize]
			}
			cfg.lg.Debug("[Logging]",
				zap.String("correlationId", correlationId),
				zap.String("method", c.Request.Method),
				zap.String("url", c.Request.URL.String()),
				zap.Any("queryParams", c.Request.URL.Query()),
				zap.Any("requestHeaders", c.Request.Header),
				zap.ByteString("requestBody", requestBody),
				zap.Int("status", status),
				zap.ByteString("responseBody", responseBody),
				zap.Duration("duration", duration),
			)
		}
	}
}
