package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a string key/value store with per-entry expiry.
type Cache interface {
	Set(ctx context.Context, key string, value string, expiry time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

func SetTyped[T any](ctx context.Context, cache Cache, key string, value T, expiry time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrJsonMarshal, err)
	}

	return cache.Set(ctx, key, string(data), expiry)
}

func GetTyped[T any](ctx context.Context, cache Cache, key string) (T, error) {
	var result T

	value, err := cache.Get(ctx, key)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(value), &result); err != nil {
		return result, fmt.Errorf("%w: %w", ErrJsonUnmarshal, err)
	}

	return result, nil
}
