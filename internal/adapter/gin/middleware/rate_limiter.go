package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-service/internal/adapter/gin/response"
	"user-service/internal/adapter/ratelimit"
	"user-service/pkg/logger"
)

// TooManyRequestsMessage is the error text of a throttled request.
const TooManyRequestsMessage = "ThrottlerException: Too Many Requests"

// RateLimiterOptions configures the RateLimiter middleware.
type RateLimiterOptions struct {
	Config ratelimit.Config
	// Skip exempts requests, e.g. health checks.
	Skip func(c *gin.Context) bool
	// OnLimited is called with the route of every rejected request.
	OnLimited func(route string)
}

// RateLimiter throttles requests per client IP and route with a token bucket.
// Limiter errors let the request through.
func RateLimiter(limiter ratelimit.Limiter, opts RateLimiterOptions, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !opts.Config.Enabled || (opts.Skip != nil && opts.Skip(c)) {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := fmt.Sprintf("%s:%s:%s", c.Request.Method, route, c.ClientIP())

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.WithContext(c.Request.Context(), log).Warn("rate limiter error, allowing request",
				zap.String("key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			if opts.OnLimited != nil {
				opts.OnLimited(route)
			}
			c.Header("Retry-After", "1")
			response.Error(c, http.StatusTooManyRequests, TooManyRequestsMessage, nil)
			return
		}

		c.Next()
	}
}
