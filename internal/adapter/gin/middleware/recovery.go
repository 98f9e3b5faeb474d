package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-service/internal/adapter/gin/response"
	"user-service/pkg/logger"
)

// Recovery turns a panic in a later handler into a 500 error envelope.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithContext(c.Request.Context(), log).Error("panic recovered",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				response.Error(c, http.StatusInternalServerError, response.InternalErrorMessage, nil)
			}
		}()
		c.Next()
	}
}
