package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"user-service/pkg/logger"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// CtxRequestID is the gin context key holding the request id.
const CtxRequestID = "request_id"

// RequestID reuses the caller's X-Request-Id or generates one, echoes it in
// the response and stores it on both the gin and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Writer.Header().Set(RequestIDHeader, id)
		c.Set(CtxRequestID, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}
