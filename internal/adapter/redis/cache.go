package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the expiring key/value store backing offers, idle-claim locks,
// trip baselines and the atomic distance accumulator. Values are stored as
// JSON; absence after TTL expiry is a normal state, not an error.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
	}
}

// Get unmarshals the value under key into dst. Returns (false, nil) when
// the key does not exist.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	const op = "Cache.Get"

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%s: bad payload under %q: %w", op, key, err)
	}

	return true, nil
}

// Exists reports key presence without reading the value.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	const op = "Cache.Exists"

	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// Set stores the value under key without expiry.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	const op = "Cache.Set"

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SetEx stores the value under key with a TTL.
func (c *Cache) SetEx(ctx context.Context, key string, value any, ttl time.Duration) error {
	const op = "Cache.SetEx"

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// HIncrByFloat atomically adds delta to the hash field and returns the new
// total. Redis applies the increment server-side, so concurrent samples for
// the same field never lose an update.
func (c *Cache) HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	const op = "Cache.HIncrByFloat"

	total, err := c.client.HIncrByFloat(ctx, key, field, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

// Delete removes the key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	const op = "Cache.Delete"

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
