package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLock(t *testing.T) Lock {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLock(client)
}

func TestRedisLock_Lock(t *testing.T) {
	l := setupTestLock(t)
	ctx := context.Background()
	key := "currency:rates:lock:KES"

	unlock, err := l.Lock(ctx, key)
	require.NoError(t, err)

	_, err = l.TryLock(ctx, key)
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	require.NoError(t, unlock(ctx))

	unlock, err = l.TryLock(ctx, key)
	require.NoError(t, err)
	assert.NoError(t, unlock(ctx))
}

func TestRedisLock_WaitsForRelease(t *testing.T) {
	l := setupTestLock(t)
	ctx := context.Background()
	key := "currency:rates:lock:KES"

	unlock, err := l.Lock(ctx, key)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = unlock(context.Background())
	}()

	start := time.Now()
	second, err := l.Lock(ctx, key, WithWait(2*time.Second, 20*time.Millisecond))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.NoError(t, second(ctx))
}

func TestRedisLock_GivesUp(t *testing.T) {
	l := setupTestLock(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "busy")
	require.NoError(t, err)
	defer unlock(ctx)

	_, err = l.Lock(ctx, "busy", WithWait(100*time.Millisecond, 20*time.Millisecond))
	assert.ErrorIs(t, err, ErrLockNotAcquired)
}

func TestRedisLock_InvalidInput(t *testing.T) {
	l := setupTestLock(t)

	_, err := l.Lock(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidLockKey)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.TryLock(ctx, "key")
	assert.ErrorIs(t, err, context.Canceled)
}
