// internal/common/database/redis.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio-builder/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("redis: key not found")

// RedisClient wraps the Redis client and namespaces every key with a prefix.
type RedisClient struct {
	Client    *redis.Client
	keyPrefix string
}

// NewRedis creates a new Redis client. The connection is not checked; call Ping.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb, keyPrefix: cfg.KeyPrefix}, nil
}

// Key joins parts under the configured prefix.
func (c *RedisClient) Key(parts ...string) string {
	key := strings.Join(parts, ":")
	if c.keyPrefix == "" {
		return key
	}
	return c.keyPrefix + ":" + key
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// SetJSON stores v as JSON under key. A zero ttl keeps the key forever.
func (c *RedisClient) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.Client.Set(ctx, key, data, ttl).Err()
}

// GetJSON decodes the JSON value stored under key into v.
func (c *RedisClient) GetJSON(ctx context.Context, key string, v interface{}) error {
	data, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

// Del deletes one or more keys
func (c *RedisClient) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}
