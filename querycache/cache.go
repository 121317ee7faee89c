// Package querycache provides a Redis-backed result cache for
// bsets queries, with singleflight collapsing concurrent cache misses
// for the same query into a single evaluation.
//
// WHY SINGLEFLIGHT?
// A burst of identical queries arriving while the cache is cold would
// otherwise all fall through to QueryHandler.Query at once; singleflight
// ensures only the first caller evaluates the query, and every other
// caller waits on and shares that result.
package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nrumiano/bsets"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "bsets:query:"

// Cache wraps a Redis client with query-result caching and stampede
// protection.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Cache from a RedisConfig, verifying the connection
// with a PING.
func New(cfg bsets.RedisConfig) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("querycache: redis ping failed: %w", err)
	}
	return &Cache{rdb: rdb, ttl: cfg.ResultTTL}, nil
}

// GetOrCompute returns the cached results for (itemIDs, topK) if
// present, otherwise calls compute, caches its result, and returns it.
// Concurrent calls for the same key share one compute invocation.
func (c *Cache) GetOrCompute(ctx context.Context, itemIDs []int64, topK int, compute func() ([]bsets.Result, error)) ([]bsets.Result, bool, error) {
	key := c.buildKey(itemIDs, topK)

	if results, ok := c.get(ctx, key); ok {
		return results, true, nil
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if results, ok := c.get(ctx, key); ok {
			return results, nil
		}
		results, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, results)
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]bsets.Result), false, nil
}

func (c *Cache) get(ctx context.Context, key string) ([]bsets.Result, bool) {
	data, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		c.misses.Add(1)
		return nil, false
	}
	var results []bsets.Result
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return results, true
}

func (c *Cache) set(ctx context.Context, key string, results []bsets.Result) {
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, data, c.ttl)
}

func (c *Cache) buildKey(itemIDs []int64, topK int) string {
	ids := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	sort.Strings(ids)

	h := sha256.Sum256([]byte(strings.Join(ids, ",") + "|" + strconv.Itoa(topK)))
	return keyPrefix + hex.EncodeToString(h[:])
}

// Stats returns cumulative hit/miss counters since the cache was
// created.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close closes the underlying Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
