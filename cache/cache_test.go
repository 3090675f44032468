package cache

import (
	"sync"
	"testing"
)

// ShardedCache tests

func TestNewSharded(t *testing.T) {
	c := NewSharded[string, int](100, StringHasher)
	if c == nil {
		t.Fatal("NewSharded returned nil")
	}
	if c.Capacity() != 100 {
		t.Errorf("expected capacity 100, got %d", c.Capacity())
	}
	if c.TotalCapacity() != 100*DefaultShardCount {
		t.Errorf("expected total capacity %d, got %d", 100*DefaultShardCount, c.TotalCapacity())
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestShardedCacheGetSet(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	// Set a value
	c.Set("key1", 42)

	// Get existing key
	val, ok := c.Get("key1")
	if !ok {
		t.Error("expected key1 to exist")
	}
	if val != 42 {
		t.Errorf("expected 42, got %d", val)
	}

	// Get non-existing key
	_, ok = c.Get("nonexistent")
	if ok {
		t.Error("expected nonexistent key to not exist")
	}
}

func TestShardedCacheGetOrCreate(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	createCalled := 0

	// First call should create
	val := c.GetOrCreate("key1", func() int {
		createCalled++
		return 100
	})
	if val != 100 {
		t.Errorf("expected 100, got %d", val)
	}
	if createCalled != 1 {
		t.Errorf("expected create called once, got %d", createCalled)
	}

	// Second call should return cached
	val = c.GetOrCreate("key1", func() int {
		createCalled++
		return 200
	})
	if val != 100 {
		t.Errorf("expected 100 (cached), got %d", val)
	}
	if createCalled != 1 {
		t.Errorf("expected create still called once, got %d", createCalled)
	}
}

func TestShardedCacheDelete(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 42)

	// Delete existing
	if !c.Delete("key1") {
		t.Error("expected Delete to return true for existing key")
	}

	// Verify deleted
	_, ok := c.Get("key1")
	if ok {
		t.Error("expected key1 to be deleted")
	}

	// Delete non-existing
	if c.Delete("nonexistent") {
		t.Error("expected Delete to return false for non-existing key")
	}
}

func TestShardedCacheClear(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 1)
	c.Set("key2", 2)
	c.Set("key3", 3)

	if c.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", c.Len())
	}

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected 0 entries after clear, got %d", c.Len())
	}
}

func TestShardedCacheEviction(t *testing.T) {
	c := NewSharded[int, int](4, IntHasher)

	// Fill beyond capacity (per shard)
	// With 16 shards and capacity 4 per shard, we need many entries
	for i := 0; i < 100; i++ {
		c.Set(i, i)
	}

	stats := c.Stats()
	if stats.Evictions == 0 {
		t.Error("expected evictions after exceeding total capacity")
	}
	if stats.Len > c.TotalCapacity() {
		t.Errorf("Len = %d exceeds total capacity %d", stats.Len, c.TotalCapacity())
	}
}

func TestShardedCacheEvictsLeastRecentlyUsed(t *testing.T) {
	// Identity hash: keys 0, 16 and 32 all land in shard 0.
	c := NewSharded[uint64, string](2, Uint64Hasher)

	c.Set(0, "a")
	c.Set(16, "b")
	c.Get(0) // 0 becomes most recently used
	c.Set(32, "c")

	if _, ok := c.Get(16); ok {
		t.Error("expected key 16 to be evicted")
	}
	if v, ok := c.Get(0); !ok || v != "a" {
		t.Errorf("Get(0) = %q, %v, want \"a\", true", v, ok)
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestShardedCacheStats(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 1)
	c.Set("key2", 2)

	// Generate hits and misses
	c.Get("key1")        // hit
	c.Get("key1")        // hit
	c.Get("nonexistent") // miss

	stats := c.Stats()
	if stats.Len != 2 {
		t.Errorf("expected Len=2, got %d", stats.Len)
	}
	if stats.Hits != 2 {
		t.Errorf("expected Hits=2, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected Misses=1, got %d", stats.Misses)
	}
}

func TestShardedCacheResetStats(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 1)
	c.Get("key1")
	c.Get("nonexistent")

	c.ResetStats()

	stats := c.Stats()
	if stats.Hits != 0 || stats.Misses != 0 || stats.Evictions != 0 {
		t.Errorf("expected all stats to be 0 after reset, got hits=%d misses=%d evictions=%d",
			stats.Hits, stats.Misses, stats.Evictions)
	}
}

func TestShardedCacheShardLen(t *testing.T) {
	c := NewSharded[int, int](10, IntHasher)

	// Add entries
	for i := 0; i < 100; i++ {
		c.Set(i, i)
	}

	lens := c.ShardLen()
	total := 0
	for _, l := range lens {
		total += l
	}

	if total != c.Len() {
		t.Errorf("shard lengths sum %d != Len() %d", total, c.Len())
	}
}

func TestShardedCacheConcurrent(t *testing.T) {
	c := NewSharded[int, int](100, IntHasher)
	var wg sync.WaitGroup

	// Concurrent writes from multiple goroutines
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(n*100+j, n*100+j)
			}
		}(i)
	}
	wg.Wait()

	// Concurrent reads
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get(n*100 + j)
			}
		}(i)
	}
	wg.Wait()

	// Cache should have entries
	if c.Len() == 0 {
		t.Error("expected non-empty cache after concurrent operations")
	}
}

func TestHashers(t *testing.T) {
	// Test StringHasher
	h1 := StringHasher("hello")
	h2 := StringHasher("hello")
	h3 := StringHasher("world")

	if h1 != h2 {
		t.Error("StringHasher not deterministic")
	}
	if h1 == h3 {
		t.Error("StringHasher collision for different strings")
	}

	// Test IntHasher
	h4 := IntHasher(42)
	h5 := IntHasher(42)
	h6 := IntHasher(43)

	if h4 != h5 {
		t.Error("IntHasher not deterministic")
	}
	if h4 == h6 {
		t.Error("IntHasher collision for different ints")
	}

	// Test Uint64Hasher
	h7 := Uint64Hasher(12345)
	if h7 != 12345 {
		t.Errorf("Uint64Hasher expected identity, got %d", h7)
	}

	// Test Uint64sHasher
	if Uint64sHasher(1, 2, 3) == Uint64sHasher(3, 2, 1) {
		t.Error("Uint64sHasher ignores word order")
	}
	if Uint64sHasher(7, 8) != Uint64sHasher(7, 8) {
		t.Error("Uint64sHasher not deterministic")
	}
}
