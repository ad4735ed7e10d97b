package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQuotaExhausted is returned when a token could not be obtained within
// the allowed wait. Callers may retry with backoff.
var ErrQuotaExhausted = errors.New("ratelimit: quota exhausted")

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

type Limiter struct {
	mu sync.Mutex
	m  map[string]*bucket
}

func New() *Limiter { return &Limiter{m: make(map[string]*bucket)} }

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()
	l.mu.Lock()
	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}
	// refill
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens -= 1
		l.mu.Unlock()
		return true
	}
	l.mu.Unlock()
	return false
}

// Wait blocks until a token is available for key, the context is cancelled,
// or maxWait elapses. With no token inside maxWait it returns
// ErrQuotaExhausted so the caller can surface a retriable error instead of
// silently exceeding the quota.
func (l *Limiter) Wait(ctx context.Context, key string, capacity, refillPerSec float64, maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	for {
		if l.Allow(key, capacity, refillPerSec) {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrQuotaExhausted
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
