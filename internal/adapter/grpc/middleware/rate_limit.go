package middleware

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"user-service/internal/adapter/ratelimit"
)

// RateLimiter applies a ratelimit.Limiter to gRPC unary calls.
type RateLimiter struct {
	limiter ratelimit.Limiter
	config  ratelimit.Config
	log     *zap.Logger
}

// NewRateLimiter creates a new rate limiter interceptor.
func NewRateLimiter(limiter ratelimit.Limiter, config ratelimit.Config, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		config:  config,
		log:     log,
	}
}

// UnaryInterceptor returns a gRPC unary interceptor for rate limiting.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if !rl.config.Enabled || rl.limiter == nil {
			return handler(ctx, req)
		}

		clientIP := clientIP(ctx)
		key := fmt.Sprintf("%s:%s", info.FullMethod, clientIP)

		allowed, err := rl.limiter.Allow(ctx, key)
		if err != nil {
			// fail open
			rl.log.Warn("rate limiter error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Error(err),
			)
			return handler(ctx, req)
		}

		if !allowed {
			rl.log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Float64("limit", rl.config.RequestsPerSecond),
			)
			return nil, status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded: %.2f requests/second (burst capacity: %d)",
				rl.config.RequestsPerSecond, rl.config.Burst)
		}

		return handler(ctx, req)
	}
}

// clientIP extracts the client IP address from the gRPC context.
func clientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			return xff[0]
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 {
			return xri[0]
		}
	}

	if p, ok := peer.FromContext(ctx); ok {
		return p.Addr.String()
	}

	return "unknown"
}
