// Package ratelimit provides token bucket limiters keyed by client identity.
// RedisLimiter shares buckets across instances; LocalLimiter keeps them in
// process memory and is used when Redis is not configured.
package ratelimit

import "context"

// Config holds configuration for the rate limiters.
type Config struct {
	RequestsPerSecond float64 // Refill rate of each bucket
	Burst             int     // Bucket capacity
	Enabled           bool
}

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
