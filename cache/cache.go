// Package cache is a thin Redis layer for the read side: a short-TTL JSON
// cache for dashboard stats and a SetNX lock that throttles the background
// overdue sweep. A nil client degrades to uncached, so tests and Redis-less
// setups keep working.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StatsKey     = "lender:dashboard:stats"
	SweepLockKey = "lender:sweep:lock"
)

type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache { return &Cache{rdb: rdb} }

// Get unmarshals the cached value into dst; false on miss or error.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, b, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, key).Err()
}

// TryLock wins at most once per ttl across all instances. Without Redis it
// always wins, which is correct for a single process.
func (c *Cache) TryLock(ctx context.Context, key string, ttl time.Duration) bool {
	if c == nil || c.rdb == nil {
		return true
	}
	ok, err := c.rdb.SetNX(ctx, key, "1", ttl).Result()
	return err == nil && ok
}
