package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryLimiter keeps one bucket per key in process. Limits are per instance.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	now     func() time.Time

	cleanup     *time.Ticker
	stopCleanup chan struct{}
}

// NewMemoryLimiter starts a goroutine that drops buckets idle for twice their window. Call Stop to end it.
func NewMemoryLimiter() *MemoryLimiter {
	l := &MemoryLimiter{
		buckets:     map[string]*tokenBucket{},
		now:         time.Now,
		cleanup:     time.NewTicker(5 * time.Minute),
		stopCleanup: make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *MemoryLimiter) Stop() {
	l.cleanup.Stop()
	close(l.stopCleanup)
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, rate Rate) (bool, error) {
	if rate.Limit <= 0 || rate.Window <= 0 {
		return false, fmt.Errorf("invalid rate %d per %s", rate.Limit, rate.Window)
	}

	now := l.now()
	bucketKey := fmt.Sprintf("%s:%s", key, rate.Window)

	l.mu.Lock()
	bucket, ok := l.buckets[bucketKey]
	if !ok {
		bucket = newTokenBucket(rate, now)
		l.buckets[bucketKey] = bucket
	}
	l.mu.Unlock()

	return bucket.consume(1, now), nil
}

func (l *MemoryLimiter) sweep() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, bucket := range l.buckets {
		if bucket.idleSince(now) > bucket.window*2 {
			delete(l.buckets, key)
		}
	}
}

func (l *MemoryLimiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanup.C:
			l.sweep()
		case <-l.stopCleanup:
			return
		}
	}
}
