package datacache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domrepo "AShareLab/internal/domain/repository"
	"AShareLab/pkg/cache"
)

// Signature identifies one cached query: entity, data category, and date
// range. Force-refresh is a call argument, not part of the key, so a forced
// fetch overwrites the same entry.
type Signature struct {
	Entity   string
	Category string
	Start    string
	End      string
}

// Key renders a stable cache key for the signature.
func (s Signature) Key() string {
	return fmt.Sprintf("%s:%s:%s:%s", s.Category, s.Entity, s.Start, s.End)
}

// envelope wraps a payload with its fetch time so freshness can be judged
// against the category TTL.
type envelope struct {
	Payload    json.RawMessage `json:"payload"`
	FetchedAt  time.Time       `json:"fetched_at"`
	TTLSeconds int64           `json:"ttl_seconds"`
}

// TTLFunc returns the TTL for a data category.
type TTLFunc func(category string) time.Duration

// Keeper fronts the shared cache for all fetch clients. It is the only
// shared mutable resource between concurrent pipelines; writes to the same
// signature are last-writer-wins. Concurrent misses on one signature are
// not coalesced: both callers hit the upstream and the later write wins.
type Keeper struct {
	store   cache.Service
	ttlFor  TTLFunc
	metrics domrepo.Metrics
}

// New creates a keeper over a cache backend.
func New(store cache.Service, ttlFor TTLFunc, metrics domrepo.Metrics) *Keeper {
	return &Keeper{store: store, ttlFor: ttlFor, metrics: metrics}
}

// Clear drops every entry.
func (k *Keeper) Clear(ctx context.Context) error {
	return k.store.DeleteByPattern(ctx, "*")
}

// Invalidate drops one signature.
func (k *Keeper) Invalidate(ctx context.Context, sig Signature) error {
	return k.store.Delete(ctx, sig.Key())
}

// GetOrFetch returns the cached payload for sig when fresh, otherwise calls
// fetch and stores the result. force bypasses freshness and overwrites the
// entry. A fetch error is propagated without caching anything.
func GetOrFetch[T any](ctx context.Context, k *Keeper, sig Signature, force bool, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if !force {
		var env envelope
		err := k.store.Get(ctx, sig.Key(), &env)
		if err == nil && time.Since(env.FetchedAt) < time.Duration(env.TTLSeconds)*time.Second {
			var out T
			if err := json.Unmarshal(env.Payload, &out); err == nil {
				k.record(sig.Category, "hit")
				return out, nil
			}
			// Unreadable payload counts as a miss.
		} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			// Backend trouble: fall through to the upstream fetch.
		}
	}

	out, err := fetch(ctx)
	if err != nil {
		k.record(sig.Category, "error")
		return zero, err
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return zero, fmt.Errorf("datacache: marshal %s: %w", sig.Key(), err)
	}
	ttl := k.ttlFor(sig.Category)
	env := envelope{Payload: payload, FetchedAt: time.Now(), TTLSeconds: int64(ttl / time.Second)}
	if err := k.store.Set(ctx, sig.Key(), env, ttl); err != nil {
		// Serving the fresh value matters more than persisting it.
		k.record(sig.Category, "store_error")
	} else if force {
		k.record(sig.Category, "refresh")
	} else {
		k.record(sig.Category, "miss")
	}
	return out, nil
}

func (k *Keeper) record(category, outcome string) {
	if k.metrics != nil {
		k.metrics.RecordCache(category, outcome)
	}
}
