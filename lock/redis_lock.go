package lock

import (
	"context"
	"errors"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

type redisLock struct {
	rs *redsync.Redsync
}

func NewRedisLock(client *redis.Client) Lock {
	return &redisLock{rs: redsync.New(goredis.NewPool(client))}
}

func (l *redisLock) Lock(ctx context.Context, key string, opts ...LockOption) (Unlock, error) {
	options := defaultLockOptions()
	for _, opt := range opts {
		opt(options)
	}
	return l.acquire(ctx, key,
		redsync.WithExpiry(options.expiry),
		redsync.WithRetryDelay(options.retryDelay),
		redsync.WithTries(options.retries),
	)
}

func (l *redisLock) TryLock(ctx context.Context, key string, opts ...LockOption) (Unlock, error) {
	options := defaultLockOptions()
	for _, opt := range opts {
		opt(options)
	}
	return l.acquire(ctx, key,
		redsync.WithExpiry(options.expiry),
		redsync.WithTries(1),
	)
}

func (l *redisLock) acquire(ctx context.Context, key string, opts ...redsync.Option) (Unlock, error) {
	if key == "" {
		return nil, ErrInvalidLockKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mutex := l.rs.NewMutex(key, opts...)
	if err := mutex.LockContext(ctx); err != nil {
		var errTaken *redsync.ErrTaken
		if errors.As(err, &errTaken) || errors.Is(err, redsync.ErrFailed) {
			return nil, ErrLockNotAcquired
		}
		return nil, err
	}

	return func(ctx context.Context) error {
		ok, err := mutex.UnlockContext(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("failed to unlock")
		}
		return nil
	}, nil
}
