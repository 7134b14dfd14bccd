package currency

import (
	"context"
	"errors"
	"time"

	"github.com/infigaming-com/go-currency/cache"
	"github.com/infigaming-com/go-currency/lock"
	"go.uber.org/zap"
)

type sharedRates struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt int64              `json:"fetched_at"`
}

func (s *Service) storeKey() string {
	return "currency:rates:" + s.base
}

func (s *Service) lockKey() string {
	return "currency:rates:lock:" + s.base
}

// loadShared adopts a live table another instance published within the refresh interval.
func (s *Service) loadShared(ctx context.Context) (refreshResult, bool) {
	if s.store == nil {
		return refreshResult{}, false
	}

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
	defer cancel()

	shared, err := cache.GetTyped[sharedRates](storeCtx, s.store, s.storeKey())
	if err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			s.lg.Warn("[CURRENCY-RATES-STORE-ERROR: failed to read shared rates]", zap.Error(err))
		}
		return refreshResult{}, false
	}

	fetchedAt := time.UnixMilli(shared.FetchedAt)
	if shared.Base != s.base || s.now().Sub(fetchedAt) > s.refreshInterval {
		return refreshResult{}, false
	}
	rates, err := checkTable(s.base, shared.Rates)
	if err != nil {
		s.lg.Warn("[CURRENCY-RATES-STORE-ERROR: invalid shared rates]", zap.Error(err))
		return refreshResult{}, false
	}

	return refreshResult{
		rates:     rates,
		fetchedAt: fetchedAt,
		source:    SourceShared,
	}, true
}

// saveShared publishes a live table. Fallback tables are never published.
func (s *Service) saveShared(ctx context.Context, result refreshResult) {
	if s.store == nil || result.source != SourceLive {
		return
	}

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
	defer cancel()

	shared := sharedRates{
		Base:      s.base,
		Rates:     result.rates,
		FetchedAt: result.fetchedAt.UnixMilli(),
	}
	if err := cache.SetTyped(storeCtx, s.store, s.storeKey(), shared, s.storeTTL); err != nil {
		s.lg.Warn("[CURRENCY-RATES-STORE-ERROR: failed to write shared rates]", zap.Error(err))
	}
}

// lockRefresh waits up to the fetch timeout for the cluster-wide refresh lock. It returns nil
// when there is no lock to take; the caller then fetches on its own.
func (s *Service) lockRefresh(ctx context.Context) func() {
	if s.store == nil || s.locker == nil {
		return nil
	}

	lockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
	defer cancel()

	unlock, err := s.locker.Lock(lockCtx, s.lockKey(),
		lock.WithExpiry(2*s.fetchTimeout),
		lock.WithWait(s.fetchTimeout, 50*time.Millisecond),
	)
	if err != nil {
		s.lg.Warn("[CURRENCY-RATES-LOCK-ERROR: fetching without refresh lock]", zap.Error(err))
		return nil
	}

	return func() {
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		if err := unlock(unlockCtx); err != nil {
			s.lg.Warn("[CURRENCY-RATES-LOCK-ERROR: failed to release refresh lock]", zap.Error(err))
		}
	}
}
