package lock

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidLockKey  = errors.New("invalid lock key")
	ErrLockNotAcquired = errors.New("lock not acquired")
)

// Unlock releases a held lock.
type Unlock func(context.Context) error

type Lock interface {
	// Lock retries until the lock is acquired, the retries run out or ctx is done.
	Lock(ctx context.Context, key string, opts ...LockOption) (Unlock, error)
	// TryLock makes a single attempt.
	TryLock(ctx context.Context, key string, opts ...LockOption) (Unlock, error)
}

type LockOptions struct {
	expiry     time.Duration
	retryDelay time.Duration
	retries    int
}

type LockOption func(*LockOptions)

// WithExpiry bounds how long a lock outlives a holder that never unlocks.
func WithExpiry(expiry time.Duration) LockOption {
	return func(o *LockOptions) {
		o.expiry = expiry
	}
}

func WithRetryDelay(retryDelay time.Duration) LockOption {
	return func(o *LockOptions) {
		o.retryDelay = retryDelay
	}
}

func WithRetries(retries int) LockOption {
	return func(o *LockOptions) {
		o.retries = retries
	}
}

// WithWait retries every retryDelay for up to wait.
func WithWait(wait, retryDelay time.Duration) LockOption {
	return func(o *LockOptions) {
		o.retryDelay = retryDelay
		o.retries = max(1, int(wait/retryDelay))
	}
}

func defaultLockOptions() *LockOptions {
	return &LockOptions{
		expiry:     8 * time.Second,
		retryDelay: 50 * time.Millisecond,
		retries:    32,
	}
}
