package main

import (
	"fmt"
	"os"

	"github.com/coocood/freecache"
	"github.com/infigaming-com/go-currency/cache"
	"github.com/infigaming-com/go-currency/config"
	"github.com/infigaming-com/go-currency/currency"
	"github.com/infigaming-com/go-currency/lock"
	"github.com/infigaming-com/go-currency/observability/metrics"
	"github.com/infigaming-com/go-currency/rate"
	"github.com/infigaming-com/go-currency/web"
	"github.com/infigaming-com/go-currency/web/handler"
	"github.com/infigaming-com/go-currency/web/middleware"
	"go.uber.org/zap"
)

var version = "dev"

type app struct {
	lg      *zap.Logger
	service *currency.Service
	server  *web.Server
	closers []func()
}

func newApp(lg *zap.Logger, cfg *config.Config) (*app, error) {
	a := &app{lg: lg}
	ready := false
	defer func() {
		if !ready {
			a.Close()
		}
	}()

	opts := []currency.Option{
		currency.WithBaseCurrency(cfg.Rates.BaseCurrency),
		currency.WithRefreshInterval(cfg.Rates.RefreshInterval),
		currency.WithFallbackRetryInterval(cfg.Rates.FallbackRetryInterval),
		currency.WithFetchTimeout(cfg.Rates.FetchTimeout),
	}
	if len(cfg.Rates.FallbackRates) > 0 {
		opts = append(opts, currency.WithFallbackRates(cfg.Rates.FallbackRates))
	}

	if cfg.Rates.MetadataFile != "" {
		table, err := loadMetadata(cfg.Rates.MetadataFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, currency.WithMetadata(table))
	}

	store, locker, err := a.newStore(cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, currency.WithSharedStore(store, cfg.Rates.RefreshInterval))
	}
	if locker != nil {
		opts = append(opts, currency.WithRefreshLock(locker))
	}

	if cfg.Metrics.Enabled {
		exporter, err := a.newMetrics(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, currency.WithMetrics(exporter))
	}

	providerOpts := []rate.HTTPProviderOption{
		rate.WithRequestTimeout(cfg.Rates.FetchTimeout),
		rate.WithRetry(cfg.Rates.Retries),
		rate.WithDebugEnabled(cfg.Log.DebugEnabled),
	}
	if cfg.Rates.APIKey != "" {
		providerOpts = append(providerOpts, rate.WithAPIKey(cfg.Rates.APIKeyHeader, cfg.Rates.APIKey))
	}
	provider := rate.NewHTTPProvider(lg, cfg.Rates.ProviderURL, providerOpts...)

	service, err := currency.NewService(lg, provider, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create currency service: %w", err)
	}
	a.service = service

	a.server = web.NewServer(lg,
		web.WithMode(cfg.HTTP.Mode),
		web.WithPort(cfg.HTTP.Port),
		web.WithShutdownTimeout(cfg.HTTP.ShutdownTimeout),
		web.WithCustomHandler(middleware.CorrelationIdMiddleware()),
		web.WithCustomHandler(middleware.LoggingMiddleware(
			middleware.WithLogger(lg),
			middleware.WithDebugEnabled(cfg.Log.DebugEnabled),
			middleware.WithSlowThreshold(cfg.HTTP.SlowThreshold),
			middleware.WithExcludePaths([]string{"/", "/healthcheck"}),
		)),
		web.WithRoutes(handler.NewCurrencyHandler(lg, a.service).Register),
	)
	ready = true
	return a, nil
}

// newStore returns the shared rate store and, for redis with refresh_lock set, a refresh lock
// on the same connection.
func (a *app) newStore(cfg *config.Config) (cache.Cache, lock.Lock, error) {
	switch cfg.Rates.Store {
	case config.StoreMemory:
		return cache.NewFreeCache(freecache.NewCache(cfg.Rates.MemoryStoreSize)), nil, nil
	case config.StoreRedis:
		client, closeFn, err := cache.NewRedisClient(a.lg, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, closeFn)

		var locker lock.Lock
		if cfg.Rates.RefreshLock {
			locker = lock.NewRedisLock(client)
		}
		return cache.NewRedisCacheFromClient(client), locker, nil
	default:
		return nil, nil, nil
	}
}

func (a *app) newMetrics(cfg *config.Config) (*metrics.MetricExporter, error) {
	opts := []metrics.Option{
		metrics.WithServiceName(cfg.Metrics.ServiceName),
		metrics.WithServiceNamespace(cfg.Metrics.ServiceNamespace),
		metrics.WithServiceVersion(version),
		metrics.WithEnvironment(cfg.Env),
		metrics.WithExportInterval(cfg.Metrics.ExportInterval),
	}
	if cfg.Metrics.OTLPGRPCEndpoint != "" {
		opts = append(opts, metrics.WithOTLPGRPCEndpoint(cfg.Metrics.OTLPGRPCEndpoint))
	}
	if cfg.Metrics.OTLPEndpoint != "" {
		opts = append(opts, metrics.WithOTLPEndpoint(cfg.Metrics.OTLPEndpoint))
	}

	exporter, closeFn, err := metrics.NewMetricExporter(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	a.closers = append(a.closers, closeFn)
	return exporter, nil
}

func loadMetadata(path string) (*currency.MetadataTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open currency metadata: %w", err)
	}
	defer f.Close()

	entries, err := currency.LoadMetadata(f)
	if err != nil {
		return nil, err
	}
	return currency.NewMetadataTable(entries), nil
}

// Close releases resources in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
