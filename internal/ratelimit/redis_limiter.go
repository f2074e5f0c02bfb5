package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and consumes atomically. Buckets are hashes that expire a little after their window.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local refillRate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local windowSeconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'lastRefill')
	local tokens = tonumber(state[1])
	local lastRefill = tonumber(state[2])
	if tokens == nil then
		tokens = capacity
	end
	if lastRefill == nil then
		lastRefill = now
	end

	local elapsed = (now - lastRefill) / 1000000000
	if elapsed > 0 then
		tokens = math.min(capacity, tokens + elapsed * refillRate)
	end

	local allowed = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'tokens', tostring(tokens), 'lastRefill', tostring(now))
	redis.call('EXPIRE', key, math.ceil(windowSeconds * 1.1))
	return allowed
`)

// RedisLimiter shares buckets between API instances.
type RedisLimiter struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisLimiter(client *redis.Client, keyPrefix string) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = "rate_limit:"
	}
	return &RedisLimiter{client: client, keyPrefix: keyPrefix}
}

// NewRedisClient connects to addr and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisLimiter) Allow(ctx context.Context, key string, rate Rate) (bool, error) {
	if rate.Limit <= 0 || rate.Window <= 0 {
		return false, fmt.Errorf("invalid rate %d per %s", rate.Limit, rate.Window)
	}

	bucketKey := fmt.Sprintf("%s%s:%s", r.keyPrefix, key, rate.Window)
	res, err := tokenBucketScript.Run(ctx, r.client, []string{bucketKey},
		rate.Limit,
		rate.refillPerSecond(),
		time.Now().UnixNano(),
		rate.Window.Seconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("redis rate limit check failed: %w", err)
	}
	return res == 1, nil
}

func (r *RedisLimiter) Close() error {
	return r.client.Close()
}
