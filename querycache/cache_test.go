package querycache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/nrumiano/bsets"
)

func TestBuildKey_OrderIndependent(t *testing.T) {
	c := &Cache{}
	k1 := c.buildKey([]int64{3, 1, 2}, 10)
	k2 := c.buildKey([]int64{1, 2, 3}, 10)
	if k1 != k2 {
		t.Errorf("buildKey order-dependence: %q != %q", k1, k2)
	}
	if len(k1) <= len(keyPrefix) {
		t.Errorf("buildKey produced too short a key: %q", k1)
	}
}

func TestBuildKey_DistinctTopKDistinctKey(t *testing.T) {
	c := &Cache{}
	k1 := c.buildKey([]int64{1}, 10)
	k2 := c.buildKey([]int64{1}, 20)
	if k1 == k2 {
		t.Error("buildKey ignored topK, producing identical keys")
	}
}

// requireRedis skips the test unless a Redis instance is reachable at
// 127.0.0.1:6379, the default address used throughout this package's
// example configs.
func requireRedis(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", "127.0.0.1:6379", 200*time.Millisecond)
	if err != nil {
		t.Skip("no redis reachable at 127.0.0.1:6379, skipping integration test")
	}
	conn.Close()
}

func TestCache_GetOrCompute_CachesAcrossCalls(t *testing.T) {
	requireRedis(t)

	cache, err := New(bsets.RedisConfig{Addr: "127.0.0.1:6379", ResultTTL: 30 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	calls := 0
	compute := func() ([]bsets.Result, error) {
		calls++
		return []bsets.Result{{ItemID: 42, LogScore: -1.0}}, nil
	}

	r1, hit1, err := cache.GetOrCompute(ctx, []int64{1, 2}, 5, compute)
	if err != nil {
		t.Fatalf("GetOrCompute (first): %v", err)
	}
	if hit1 {
		t.Error("first call reported a cache hit, want miss")
	}

	r2, hit2, err := cache.GetOrCompute(ctx, []int64{2, 1}, 5, compute)
	if err != nil {
		t.Fatalf("GetOrCompute (second): %v", err)
	}
	if !hit2 {
		t.Error("second call (same ids, different order) reported a miss, want hit")
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if len(r1) != 1 || len(r2) != 1 || r1[0].ItemID != r2[0].ItemID {
		t.Errorf("results mismatch: r1=%v r2=%v", r1, r2)
	}

	hits, misses := cache.Stats()
	if hits < 1 || misses < 1 {
		t.Errorf("Stats() = (hits=%d, misses=%d), want both >= 1", hits, misses)
	}
}
