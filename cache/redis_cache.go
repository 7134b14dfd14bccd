package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultConnectTimeout = 5 * time.Second

type RedisCacheConfig struct {
	Addr           string        `yaml:"addr" env:"REDIS_ADDR"`
	DB             int64         `yaml:"db" env:"REDIS_DB" env-default:"0"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"REDIS_CONNECT_TIMEOUT" env-default:"5s"`
}

type redisCache struct {
	client *redis.Client
}

// NewRedisClient connects and pings redis. The returned func closes the client.
func NewRedisClient(lg *zap.Logger, cfg *RedisCacheConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   int(cfg.DB),
	})

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	lg.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int64("db", cfg.DB))

	return client, func() {
		_ = client.Close()
		lg.Info("closed redis connection", zap.String("addr", cfg.Addr), zap.Int64("db", cfg.DB))
	}, nil
}

// NewRedisCache connects to redis and returns a Cache over it. The returned func closes the client.
func NewRedisCache(lg *zap.Logger, cfg *RedisCacheConfig) (Cache, func(), error) {
	client, closeFn, err := NewRedisClient(lg, cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewRedisCacheFromClient(client), closeFn, nil
}

// NewRedisCacheFromClient shares an existing client. Closing it stays with the caller.
func NewRedisCacheFromClient(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Set(ctx context.Context, key string, value string, expiry time.Duration) error {
	if expiry < 0 {
		expiry = 0
	}
	return c.client.Set(ctx, key, value, expiry).Err()
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return data, nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	n, err := c.client.Del(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (c *redisCache) Clear(ctx context.Context) error {
	return c.client.FlushDB(ctx).Err()
}
