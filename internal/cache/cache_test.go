package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opensource-finance/bce/internal/domain"
)

func TestLRUCache(t *testing.T) {
	cache := NewLRUCache(100)
	ctx := context.Background()
	tenantID := "tenant-001"

	t.Run("SetAndGet", func(t *testing.T) {
		if err := cache.Set(ctx, tenantID, "key1", []byte("value1"), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		val, err := cache.Get(ctx, tenantID, "key1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(val) != "value1" {
			t.Errorf("expected 'value1', got '%s'", string(val))
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		val, err := cache.Get(ctx, tenantID, "nonexistent")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if val != nil {
			t.Errorf("expected nil for cache miss, got: %v", val)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = cache.Set(ctx, tenantID, "key2", []byte("value2"), time.Minute)

		if err := cache.Delete(ctx, tenantID, "key2"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		val, _ := cache.Get(ctx, tenantID, "key2")
		if val != nil {
			t.Error("expected nil after delete")
		}
	})

	t.Run("TTLExpiration", func(t *testing.T) {
		_ = cache.Set(ctx, tenantID, "expiring", []byte("temp"), 10*time.Millisecond)

		val, _ := cache.Get(ctx, tenantID, "expiring")
		if val == nil {
			t.Error("expected value before expiration")
		}

		time.Sleep(20 * time.Millisecond)

		val, _ = cache.Get(ctx, tenantID, "expiring")
		if val != nil {
			t.Error("expected nil after expiration")
		}
	})

	t.Run("ZeroTTLNeverExpires", func(t *testing.T) {
		_ = cache.Set(ctx, tenantID, "forever", []byte("x"), 0)
		time.Sleep(5 * time.Millisecond)

		val, _ := cache.Get(ctx, tenantID, "forever")
		if val == nil {
			t.Error("expected value with zero TTL to persist")
		}
	})

	t.Run("LRUEviction", func(t *testing.T) {
		smallCache := NewLRUCache(3)

		_ = smallCache.Set(ctx, tenantID, "a", []byte("1"), time.Minute)
		_ = smallCache.Set(ctx, tenantID, "b", []byte("2"), time.Minute)
		_ = smallCache.Set(ctx, tenantID, "c", []byte("3"), time.Minute)

		// 'a' becomes most recently used, so 'b' is evicted next.
		_, _ = smallCache.Get(ctx, tenantID, "a")
		_ = smallCache.Set(ctx, tenantID, "d", []byte("4"), time.Minute)

		val, _ := smallCache.Get(ctx, tenantID, "b")
		if val != nil {
			t.Error("expected 'b' to be evicted")
		}

		val, _ = smallCache.Get(ctx, tenantID, "a")
		if val == nil {
			t.Error("expected 'a' to still exist")
		}
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		_ = cache.Set(ctx, "tenant-001", "shared-key", []byte("tenant1-value"), time.Minute)
		_ = cache.Set(ctx, "tenant-002", "shared-key", []byte("tenant2-value"), time.Minute)

		val1, _ := cache.Get(ctx, "tenant-001", "shared-key")
		val2, _ := cache.Get(ctx, "tenant-002", "shared-key")

		if string(val1) != "tenant1-value" {
			t.Errorf("expected 'tenant1-value', got '%s'", string(val1))
		}
		if string(val2) != "tenant2-value" {
			t.Errorf("expected 'tenant2-value', got '%s'", string(val2))
		}
	})

	t.Run("RequiresTenantID", func(t *testing.T) {
		err := cache.Set(ctx, "", "key", []byte("value"), time.Minute)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got: %v", err)
		}

		_, err = cache.Get(ctx, "", "key")
		if err == nil {
			t.Error("expected error for empty tenantID")
		}
	})

	t.Run("ExceptionItem", func(t *testing.T) {
		item := &domain.ExceptionItem{
			ItemNo:  3344,
			Carrier: "LH",
			Sequences: []domain.ExceptionSequence{
				{ItemNo: 3344, SeqNo: 100, Segments: []domain.ExceptionSegment{
					{SegNo: 1, RestrictionTag: domain.TagPermitted, BookingCode1: "M"},
				}},
			},
		}

		if err := cache.SetExceptionItem(ctx, tenantID, item, time.Minute); err != nil {
			t.Fatalf("SetExceptionItem failed: %v", err)
		}

		got, err := cache.GetExceptionItem(ctx, tenantID, 3344)
		if err != nil {
			t.Fatalf("GetExceptionItem failed: %v", err)
		}
		if got == nil || len(got.Sequences) != 1 {
			t.Fatalf("unexpected cached item: %+v", got)
		}
		if got.Sequences[0].Segments[0].BookingCode1 != "M" {
			t.Errorf("expected booking code M, got %s", got.Sequences[0].Segments[0].BookingCode1)
		}

		miss, err := cache.GetExceptionItem(ctx, tenantID, 1)
		if err != nil || miss != nil {
			t.Errorf("expected nil, nil on miss, got %v, %v", miss, err)
		}
	})

	t.Run("ExceptionItemNeedsNumber", func(t *testing.T) {
		err := cache.SetExceptionItem(ctx, tenantID, &domain.ExceptionItem{}, time.Minute)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got: %v", err)
		}
	})

	t.Run("CorruptItem", func(t *testing.T) {
		_ = cache.Set(ctx, tenantID, ItemKey(77), []byte("{not json"), time.Minute)
		if _, err := cache.GetExceptionItem(ctx, tenantID, 77); err == nil {
			t.Error("expected decode error for corrupt entry")
		}
	})

	t.Run("Stats", func(t *testing.T) {
		statsCache := NewLRUCache(50)
		_ = statsCache.Set(ctx, tenantID, "k1", []byte("v1"), time.Minute)
		_ = statsCache.Set(ctx, tenantID, "k2", []byte("v2"), time.Minute)
		_, _ = statsCache.Get(ctx, tenantID, "k1")
		_, _ = statsCache.Get(ctx, tenantID, "missing")

		stats := statsCache.Stats()
		if stats.Size != 2 {
			t.Errorf("expected size 2, got %d", stats.Size)
		}
		if stats.Capacity != 50 {
			t.Errorf("expected capacity 50, got %d", stats.Capacity)
		}
		if stats.Hits != 1 || stats.Misses != 1 {
			t.Errorf("expected 1 hit and 1 miss, got %d/%d", stats.Hits, stats.Misses)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := cache.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("Close", func(t *testing.T) {
		testCache := NewLRUCache(10)
		_ = testCache.Set(ctx, tenantID, "k", []byte("v"), time.Minute)

		if err := testCache.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}

		val, _ := testCache.Get(ctx, tenantID, "k")
		if val != nil {
			t.Error("expected cache to be cleared after close")
		}
	})
}

func TestNewCache(t *testing.T) {
	t.Run("MemoryType", func(t *testing.T) {
		cache, err := New(domain.CacheConfig{Type: "memory", LocalMaxSize: 100})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer cache.Close()

		if _, ok := cache.(*LRUCache); !ok {
			t.Error("expected LRUCache for memory type")
		}
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		if _, err := New(domain.CacheConfig{Type: "memcached"}); err == nil {
			t.Error("expected error for unsupported type")
		}
	})
}

func TestTwoPhaseLocalTTL(t *testing.T) {
	c := &TwoPhaseCache{l1TTL: time.Minute}

	tests := []struct {
		in, want time.Duration
	}{
		{0, time.Minute},
		{10 * time.Second, 10 * time.Second},
		{time.Hour, time.Minute},
	}
	for _, tt := range tests {
		if got := c.localTTL(tt.in); got != tt.want {
			t.Errorf("localTTL(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
