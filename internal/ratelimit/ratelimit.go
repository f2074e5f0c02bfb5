// Package ratelimit throttles callers with token buckets kept in process or in Redis.
package ratelimit

import (
	"context"
	"time"
)

// Rate allows Limit requests per Window, refilled continuously.
type Rate struct {
	Limit  int
	Window time.Duration
}

func PerMinute(limit int) Rate {
	return Rate{Limit: limit, Window: time.Minute}
}

func (r Rate) refillPerSecond() float64 {
	return float64(r.Limit) / r.Window.Seconds()
}

// Limiter reports whether the caller identified by key may proceed, consuming a token if so.
type Limiter interface {
	Allow(ctx context.Context, key string, rate Rate) (bool, error)
}
