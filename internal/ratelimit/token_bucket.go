package ratelimit

import (
	"sync"
	"time"
)

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	capacity   float64
	refillRate float64 // tokens per second
	window     time.Duration
}

func newTokenBucket(rate Rate, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(rate.Limit),
		lastRefill: now,
		capacity:   float64(rate.Limit),
		refillRate: rate.refillPerSecond(),
		window:     rate.Window,
	}
}

// consume refills for the time elapsed since the last call, then takes n tokens if there are enough.
func (tb *tokenBucket) consume(n float64, now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
		tb.lastRefill = now
	}

	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}
	return false
}

func (tb *tokenBucket) idleSince(now time.Time) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return now.Sub(tb.lastRefill)
}
