package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// TokenBucket is a token bucket shared by every API instance through Redis.
// Buckets start full and refill continuously.
type TokenBucket struct {
	client   redis.Scripter
	prefix   string
	capacity int
	refill   float64 // tokens per second
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenBucket(client redis.Scripter, capacity int, refillPerSecond float64) *TokenBucket {
	ttl := time.Hour
	if refillPerSecond > 0 {
		// long enough for an idle bucket to fill back up
		ttl = time.Duration(float64(capacity)/refillPerSecond*float64(time.Second)) + time.Minute
	}
	return &TokenBucket{
		client:   client,
		prefix:   "postgen:ratelimit:",
		capacity: capacity,
		refill:   refillPerSecond,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Allow consumes a single token for key if one is available.
func (b *TokenBucket) Allow(ctx context.Context, key string) (bool, error) {
	now := b.now().UnixMilli()
	res, err := bucketScript.Run(ctx, b.client, []string{b.prefix + key}, b.capacity, b.refill, now, b.ttl.Milliseconds()).Result()
	if err != nil {
		return false, err
	}
	arr, ok := res.([]interface{})
	if !ok || len(arr) < 1 {
		return false, fmt.Errorf("unexpected rate limit reply %v", res)
	}
	allowed, ok := arr[0].(int64)
	if !ok {
		return false, fmt.Errorf("unexpected rate limit reply %v", res)
	}
	return allowed == 1, nil
}

var bucketScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local data = redis.call('HMGET', key, 'tokens', 'last_ms')
local tokens = tonumber(data[1])
local last = tonumber(data[2])
if tokens == nil then tokens = capacity end
if last == nil then last = now end

local delta = math.max(0, now - last)
tokens = math.min(capacity, tokens + delta / 1000 * refill)

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call('HMSET', key, 'tokens', tokens, 'last_ms', now)
if ttl > 0 then redis.call('PEXPIRE', key, ttl) end
return {allowed, tokens}
`)
