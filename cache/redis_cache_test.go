package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createTestRedisCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cache, closeFn, err := NewRedisCache(zap.NewNop(), &RedisCacheConfig{
		Addr:           mr.Addr(),
		ConnectTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(closeFn)
	return cache, mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	cache, _ := createTestRedisCache(t)
	ctx := context.Background()

	in := storedRates{Rates: map[string]float64{"KES": 1, "GBP": 0.0055}, FetchedAt: 1700000000000}
	require.NoError(t, SetTyped(ctx, cache, "rates:KES", in, time.Minute))

	out, err := GetTyped[storedRates](ctx, cache, "rates:KES")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	assert.NoError(t, cache.Delete(ctx, "rates:KES"))
	assert.ErrorIs(t, cache.Delete(ctx, "rates:KES"), ErrKeyNotFound)

	_, err = GetTyped[storedRates](ctx, cache, "rates:KES")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := createTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisCache_Clear(t *testing.T) {
	cache, _ := createTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", "1", 0))
	require.NoError(t, cache.Clear(ctx))

	_, err := cache.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cache, closeFn, err := NewRedisCache(zap.NewNop(), &RedisCacheConfig{
		Addr:           addr,
		ConnectTimeout: 200 * time.Millisecond,
	})
	assert.Error(t, err)
	assert.Nil(t, cache)
	assert.Nil(t, closeFn)
}
