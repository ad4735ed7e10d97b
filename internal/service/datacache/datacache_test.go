package datacache

import (
	"context"
	"errors"
	"testing"
	"time"

	"AShareLab/pkg/cache"
)

func fixedTTL(d time.Duration) TTLFunc {
	return func(string) time.Duration { return d }
}

type payload struct {
	Value string `json:"value"`
}

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	k := New(cache.NewMemoryCache(), fixedTTL(time.Minute), nil)
	sig := Signature{Entity: "600519.SH", Category: "prices", Start: "20240101", End: "20240201"}

	calls := 0
	fetch := func(context.Context) (payload, error) {
		calls++
		return payload{Value: "v1"}, nil
	}

	ctx := context.Background()
	got, err := GetOrFetch(ctx, k, sig, false, fetch)
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if got.Value != "v1" {
		t.Fatalf("expected v1, got %s", got.Value)
	}

	got, err = GetOrFetch(ctx, k, sig, false, fetch)
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if got.Value != "v1" {
		t.Fatalf("expected cached v1, got %s", got.Value)
	}
	if calls != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}
}

func TestGetOrFetchForceOverwrites(t *testing.T) {
	k := New(cache.NewMemoryCache(), fixedTTL(time.Minute), nil)
	sig := Signature{Entity: "600519.SH", Category: "prices"}

	ctx := context.Background()
	if _, err := GetOrFetch(ctx, k, sig, false, func(context.Context) (payload, error) {
		return payload{Value: "old"}, nil
	}); err != nil {
		t.Fatalf("seed fetch failed: %v", err)
	}

	got, err := GetOrFetch(ctx, k, sig, true, func(context.Context) (payload, error) {
		return payload{Value: "new"}, nil
	})
	if err != nil {
		t.Fatalf("forced fetch failed: %v", err)
	}
	if got.Value != "new" {
		t.Fatalf("force should bypass the cache, got %s", got.Value)
	}

	got, err = GetOrFetch(ctx, k, sig, false, func(context.Context) (payload, error) {
		t.Fatal("upstream should not be called after forced refresh")
		return payload{}, nil
	})
	if err != nil {
		t.Fatalf("read-back failed: %v", err)
	}
	if got.Value != "new" {
		t.Fatalf("forced refresh should overwrite the entry, got %s", got.Value)
	}
}

func TestGetOrFetchErrorNotCached(t *testing.T) {
	k := New(cache.NewMemoryCache(), fixedTTL(time.Minute), nil)
	sig := Signature{Entity: "600519.SH", Category: "news"}
	upstream := errors.New("upstream down")

	ctx := context.Background()
	if _, err := GetOrFetch(ctx, k, sig, false, func(context.Context) (payload, error) {
		return payload{}, upstream
	}); !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	got, err := GetOrFetch(ctx, k, sig, false, func(context.Context) (payload, error) {
		return payload{Value: "recovered"}, nil
	})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got.Value != "recovered" {
		t.Fatalf("failed fetch must not poison the cache, got %s", got.Value)
	}
}

func TestGetOrFetchExpiredEntryRefetches(t *testing.T) {
	k := New(cache.NewMemoryCache(), fixedTTL(0), nil)
	sig := Signature{Entity: "000001.SZ", Category: "prices"}

	calls := 0
	fetch := func(context.Context) (payload, error) {
		calls++
		return payload{Value: "v"}, nil
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := GetOrFetch(ctx, k, sig, false, fetch); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}
	if calls != 2 {
		t.Fatalf("zero TTL must refetch every time, got %d calls", calls)
	}
}

func TestSignatureKey(t *testing.T) {
	sig := Signature{Entity: "600519.SH", Category: "prices", Start: "20240101", End: "20240201"}
	if sig.Key() != "prices:600519.SH:20240101:20240201" {
		t.Fatalf("unexpected key: %s", sig.Key())
	}
}
