package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
)

type freeCache struct {
	cache *freecache.Cache
}

// NewFreeCache wraps an in-process freecache. Size is fixed at construction,
// e.g. freecache.NewCache(1024 * 1024) for a 1MB store.
func NewFreeCache(cache *freecache.Cache) Cache {
	return &freeCache{cache: cache}
}

func (c *freeCache) Set(ctx context.Context, key string, value string, expiry time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// freecache counts whole seconds and 0 never expires
	ttlSeconds := 0
	if expiry > 0 {
		ttlSeconds = int((expiry + time.Second - 1) / time.Second)
	}
	if err := c.cache.Set([]byte(key), []byte(value), ttlSeconds); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (c *freeCache) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := c.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return string(data), nil
}

func (c *freeCache) Delete(ctx context.Context, key string) error {
	if c.cache.Del([]byte(key)) {
		return nil
	}
	return ErrKeyNotFound
}

func (c *freeCache) Clear(ctx context.Context) error {
	c.cache.Clear()
	return nil
}
