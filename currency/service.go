package currency

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/infigaming-com/go-currency/cache"
	"github.com/infigaming-com/go-currency/lock"
	"github.com/infigaming-com/go-currency/rate"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseCurrency    = "KES"
	DefaultRefreshInterval = time.Hour
	DefaultFetchTimeout    = 5 * time.Second

	refreshKey = "rates"
)

// FallbackRates is served whenever a refresh fails.
var FallbackRates = rate.Table{
	"KES": 1,
	"USD": 0.007,
	"GBP": 0.0055,
	"EUR": 0.0065,
	"AED": 0.026,
}

// Source tells where the cached rate table came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceShared   Source = "shared"
	SourceFallback Source = "fallback"
)

// MetricRecorder is satisfied by *metrics.MetricExporter.
type MetricRecorder interface {
	RecordCounter(ctx context.Context, name, description, unit string, value int64, attributes map[string]string) error
	RecordHistogram(ctx context.Context, name, description, unit string, value float64, attributes map[string]string) error
}

// Snapshot is a copy of the cached rate table with its provenance.
type Snapshot struct {
	Base      string     `json:"base"`
	Rates     rate.Table `json:"rates"`
	FetchedAt time.Time  `json:"fetched_at"`
	Source    Source     `json:"source"`
}

// snapshot is replaced as a whole; rates and fetchedAt are never observed apart.
type snapshot struct {
	rates     rate.Table
	fetchedAt time.Time
	source    Source
}

// refreshResult is the outcome of one refresh attempt. err is set only on the fallback path.
type refreshResult struct {
	rates     rate.Table
	fetchedAt time.Time
	source    Source
	err       error
}

// Service caches the base-currency rate table and converts and formats amounts with it.
// Create one per process and share it.
type Service struct {
	lg       *zap.Logger
	provider rate.Provider
	metadata *MetadataTable
	metrics  MetricRecorder
	store    cache.Cache
	storeTTL time.Duration
	locker   lock.Lock
	now      func() time.Time

	base                  string
	fallback              rate.Table
	refreshInterval       time.Duration
	fallbackRetryInterval time.Duration
	fetchTimeout          time.Duration

	current atomic.Pointer[snapshot]
	refresh singleflight.Group
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.refreshInterval = interval
		}
	}
}

// WithFallbackRetryInterval sets how long a fallback table is served before the provider is
// tried again. It defaults to the refresh interval.
func WithFallbackRetryInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.fallbackRetryInterval = interval
		}
	}
}

func WithFetchTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.fetchTimeout = timeout
		}
	}
}

func WithBaseCurrency(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.base = base
		}
	}
}

// WithFallbackRates replaces FallbackRates. If the base currency is changed with
// WithBaseCurrency the fallback must be replaced too, since its base entry has to be 1.
func WithFallbackRates(table rate.Table) Option {
	return func(s *Service) {
		s.fallback = table.Clone()
	}
}

func WithMetadata(metadata *MetadataTable) Option {
	return func(s *Service) {
		if metadata != nil {
			s.metadata = metadata
		}
	}
}

// WithSharedStore lets instances sharing store reuse each other's live tables.
// ttl <= 0 means the refresh interval.
func WithSharedStore(store cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.store = store
		s.storeTTL = ttl
	}
}

// WithRefreshLock makes instances sharing a store take turns fetching, so a stale table
// costs one provider call across all of them. It only takes effect with WithSharedStore.
func WithRefreshLock(locker lock.Lock) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

func WithMetrics(recorder MetricRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

func NewService(lg *zap.Logger, provider rate.Provider, opts ...Option) (*Service, error) {
	if lg == nil {
		lg = zap.NewNop()
	}
	s := &Service{
		lg:              lg,
		provider:        provider,
		metadata:        NewMetadataTable(DefaultMetadata),
		metrics:         nopRecorder{},
		now:             time.Now,
		base:            DefaultBaseCurrency,
		fallback:        FallbackRates.Clone(),
		refreshInterval: DefaultRefreshInterval,
		fetchTimeout:    DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fallbackRetryInterval <= 0 {
		s.fallbackRetryInterval = s.refreshInterval
	}
	if s.storeTTL <= 0 {
		s.storeTTL = s.refreshInterval
	}

	if provider == nil {
		return nil, fmt.Errorf("rate provider is required")
	}
	fallback, err := checkTable(s.base, s.fallback)
	if err != nil {
		return nil, fmt.Errorf("invalid fallback rates: %w", err)
	}
	s.fallback = fallback
	return s, nil
}

func (s *Service) BaseCurrency() string {
	return s.base
}

// GetRates returns the current rate table, refreshing it first when it has expired.
// It never fails: when the provider cannot be reached the fallback table is returned.
func (s *Service) GetRates(ctx context.Context) rate.Table {
	return s.load(ctx).rates.Clone()
}

func (s *Service) Snapshot(ctx context.Context) Snapshot {
	snap := s.load(ctx)
	return Snapshot{
		Base:      s.base,
		Rates:     snap.rates.Clone(),
		FetchedAt: snap.fetchedAt,
		Source:    snap.source,
	}
}

func (s *Service) expired(snap *snapshot, now time.Time) bool {
	if snap == nil {
		return true
	}
	interval := s.refreshInterval
	if snap.source == SourceFallback {
		interval = s.fallbackRetryInterval
	}
	return now.Sub(snap.fetchedAt) > interval
}

func (s *Service) load(ctx context.Context) *snapshot {
	if snap := s.current.Load(); !s.expired(snap, s.now()) {
		return snap
	}

	v, _, _ := s.refresh.Do(refreshKey, func() (any, error) {
		// a refresh that finished just before this one started is still fresh
		if snap := s.current.Load(); !s.expired(snap, s.now()) {
			return snap, nil
		}
		result := s.fetch(ctx)
		snap := &snapshot{
			rates:     result.rates,
			fetchedAt: result.fetchedAt,
			source:    result.source,
		}
		s.current.Store(snap)
		s.report(ctx, result)
		return snap, nil
	})
	return v.(*snapshot)
}

func (s *Service) fetch(ctx context.Context) refreshResult {
	if result, ok := s.loadShared(ctx); ok {
		return result
	}
	if unlock := s.lockRefresh(ctx); unlock != nil {
		defer unlock()
		// the previous holder has usually just published
		if result, ok := s.loadShared(ctx); ok {
			return result
		}
	}

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
	defer cancel()

	start := time.Now()
	rates, err := s.provider.LatestRates(fetchCtx, s.base)
	if err == nil {
		rates, err = checkTable(s.base, rates)
	}
	s.recordFetch(ctx, time.Since(start), err)

	if err != nil {
		return refreshResult{
			rates:     s.fallback.Clone(),
			fetchedAt: s.now(),
			source:    SourceFallback,
			err:       err,
		}
	}

	result := refreshResult{
		rates:     rates,
		fetchedAt: s.now(),
		source:    SourceLive,
	}
	s.saveShared(ctx, result)
	return result
}

func (s *Service) report(ctx context.Context, result refreshResult) {
	if result.err != nil {
		s.lg.Warn("[CURRENCY-RATES-FALLBACK]",
			zap.Error(result.err),
			zap.String("base", s.base),
			zap.Duration("retryIn", s.fallbackRetryInterval),
		)
	} else {
		s.lg.Info("[CURRENCY-RATES-REFRESHED]",
			zap.String("base", s.base),
			zap.String("source", string(result.source)),
			zap.Int("count", len(result.rates)),
			zap.Time("fetchedAt", result.fetchedAt),
		)
	}

	if err := s.metrics.RecordCounter(ctx, "currency_rates_refresh_total", "Rate table refreshes by source", "1", 1,
		map[string]string{"source": string(result.source)}); err != nil {
		s.lg.Debug("failed to record refresh metric", zap.Error(err))
	}
}

func (s *Service) recordFetch(ctx context.Context, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	if recordErr := s.metrics.RecordHistogram(ctx, "currency_rates_fetch_duration_ms", "Rate provider fetch duration", "ms",
		float64(elapsed.Microseconds())/1000, map[string]string{"outcome": outcome}); recordErr != nil {
		s.lg.Debug("failed to record fetch metric", zap.Error(recordErr))
	}
}

// checkTable enforces the table invariants: non-empty, every rate positive and finite,
// base present at exactly 1. A missing base entry is added.
func checkTable(base string, table rate.Table) (rate.Table, error) {
	if len(table) == 0 {
		return nil, NewError(ErrCodeInvalidRateTable, "rate table is empty", nil, nil)
	}
	for code, r := range table {
		if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, NewError(ErrCodeInvalidRateTable, fmt.Sprintf("invalid rate for %s: %v", code, r), nil, code)
		}
	}
	if r, ok := table[base]; ok && r != 1 {
		return nil, NewError(ErrCodeInvalidRateTable, fmt.Sprintf("base currency %s has rate %v", base, r), nil, base)
	}
	checked := table.Clone()
	checked[base] = 1
	return checked, nil
}

type nopRecorder struct{}

func (nopRecorder) RecordCounter(context.Context, string, string, string, int64, map[string]string) error {
	return nil
}

func (nopRecorder) RecordHistogram(context.Context, string, string, string, float64, map[string]string) error {
	return nil
}
