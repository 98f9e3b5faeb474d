package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:tb:"

// Token Bucket algorithm implemented in Lua for atomicity.
// Data structure: {last_refill, tokens}
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local capacity = tonumber(ARGV[2])  -- max tokens in bucket
	local now = tonumber(ARGV[3])       -- current timestamp in seconds
	local ttl = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
	redis.call('EXPIRE', key, ttl)
	return allowed
`)

// RedisLimiter is a distributed token bucket limiter.
type RedisLimiter struct {
	client *redis.Client
	config Config
	now    func() time.Time
}

// NewRedisLimiter creates a new Redis backed limiter.
func NewRedisLimiter(client *redis.Client, config Config) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		config: config,
		now:    time.Now,
	}
}

// Allow consumes one token from the bucket identified by key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(l.now().UnixMicro()) / 1e6

	allowed, err := tokenBucketScript.Run(ctx, l.client, []string{redisKeyPrefix + key},
		l.config.RequestsPerSecond,
		l.config.Burst,
		now,
		l.bucketTTL(),
	).Int64()
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// bucketTTL is long enough for an empty bucket to refill completely.
func (l *RedisLimiter) bucketTTL() int {
	ttl := 60
	if l.config.RequestsPerSecond > 0 {
		if refill := int(float64(l.config.Burst)/l.config.RequestsPerSecond) + 1; refill > ttl {
			ttl = refill
		}
	}
	return ttl
}
