package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	want := cachedValue{Name: "prices", Count: 3}
	if err := mc.Set(ctx, "k", want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got cachedValue
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestMemoryCacheStringDest(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	if err := mc.Set(ctx, "s", "hello", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got string
	if err := mc.Get(ctx, "s", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "hello" {
		t.Fatalf("expected hello, got %s", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	var got cachedValue
	if err := mc.Get(context.Background(), "absent", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	var got string
	if err := mc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry miss, got %v", err)
	}
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	for _, k := range []string{"prices:600519.SH", "prices:000858.SZ", "news:600519.SH"} {
		if err := mc.Set(ctx, k, "v", time.Minute); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if err := mc.DeleteByPattern(ctx, "prices:*"); err != nil {
		t.Fatalf("delete by pattern: %v", err)
	}
	var got string
	if err := mc.Get(ctx, "prices:600519.SH", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected prices entries gone, got %v", err)
	}
	if err := mc.Get(ctx, "news:600519.SH", &got); err != nil {
		t.Fatalf("news entry should survive: %v", err)
	}
}
