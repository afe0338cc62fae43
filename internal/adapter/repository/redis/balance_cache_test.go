package redis

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBalanceCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewBalanceCache(client, time.Minute)
	ctx := context.Background()

	if err := cache.Set(ctx, 0, decimal.RequireFromString("100.00")); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	balance, ok, err := cache.Get(ctx, 0)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}

	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", balance)
	}

	if got, _ := mr.Get("balance:0"); got != "100" {
		t.Fatalf("expected stored value 100, got %q", got)
	}

	if ttl := mr.TTL("balance:0"); ttl != time.Minute {
		t.Fatalf("expected ttl of 1m, got %s", ttl)
	}
}

func TestBalanceCacheMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewBalanceCache(client, 0)

	balance, ok, err := cache.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("miss should not be an error: %v", err)
	}
	if ok || !balance.IsZero() {
		t.Fatalf("expected miss, got ok=%v balance=%s", ok, balance)
	}
}

func TestBalanceCacheExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewBalanceCache(client, 5*time.Second)
	ctx := context.Background()

	if err := cache.Set(ctx, 1, decimal.RequireFromString("0.00")); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(6 * time.Second)

	if _, ok, err := cache.Get(ctx, 1); err != nil || ok {
		t.Fatalf("expected expired entry to miss, got ok=%v err=%v", ok, err)
	}
}

func TestBalanceCacheInvalidate(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewBalanceCache(client, time.Minute)
	ctx := context.Background()

	for _, id := range []int64{0, 1, 2} {
		if err := cache.Set(ctx, id, decimal.NewFromInt(id)); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	if err := cache.Invalidate(ctx, 0, 1); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	if mr.Exists("balance:0") || mr.Exists("balance:1") {
		t.Fatalf("expected invalidated keys to be gone")
	}
	if !mr.Exists("balance:2") {
		t.Fatalf("expected untouched key to remain")
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("empty invalidate failed: %v", err)
	}
}

func TestBalanceCacheCorruptEntry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	if err := mr.Set("balance:7", "not-a-number"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	cache := NewBalanceCache(client, time.Minute)

	if _, ok, err := cache.Get(context.Background(), 7); err == nil || ok {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}

	if mr.Exists("balance:7") {
		t.Fatalf("expected corrupt entry to be removed")
	}
}

func TestBalanceCacheServerDown(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	cache := NewBalanceCache(client, time.Minute)
	mr.Close()

	if _, _, err := cache.Get(context.Background(), 0); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
	if err := cache.Set(context.Background(), 0, decimal.Zero); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}
