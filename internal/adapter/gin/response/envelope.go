// Package response renders the success and error envelopes every endpoint returns.
package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-service/internal/domain/user"
	pkgerrors "user-service/pkg/errors"
	"user-service/pkg/logger"
)

// InternalErrorMessage replaces the details of server side failures.
const InternalErrorMessage = "Internal server error"

// Body is the success envelope.
type Body struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    any  `json:"meta,omitempty"`
}

// ErrorBody is the error envelope.
type ErrorBody struct {
	Success    bool                `json:"success"`
	Error      string              `json:"error"`
	StatusCode int                 `json:"statusCode"`
	Timestamp  string              `json:"timestamp"`
	Path       string              `json:"path"`
	Details    map[string][]string `json:"details,omitempty"`
}

// OK writes data in a success envelope.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Body{Success: true, Data: data})
}

// Paginated writes a page of items with its pagination metadata.
func Paginated(c *gin.Context, data any, meta any) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data, Meta: meta})
}

// Error writes an error envelope with the given status and message.
func Error(c *gin.Context, status int, message string, details []string) {
	body := ErrorBody{
		Success:    false,
		Error:      message,
		StatusCode: status,
		Timestamp:  domain.FormatTimestamp(time.Now()),
		Path:       c.Request.URL.RequestURI(),
	}
	if len(details) > 1 {
		body.Details = map[string][]string{"validation": details}
	}
	c.AbortWithStatusJSON(status, body)
}

// FromError maps err onto an error envelope and logs it: 5xx at error, 4xx at warn.
// Internal error details are never sent to the client.
func FromError(c *gin.Context, log *zap.Logger, err error) {
	status := pkgerrors.HTTPStatus(err)
	l := logger.WithContext(c.Request.Context(), log).With(
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.RequestURI()),
		zap.Int("status", status),
	)

	if status >= http.StatusInternalServerError {
		l.Error("request failed", zap.Error(err))
		Error(c, status, InternalErrorMessage, nil)
		return
	}
	l.Warn("request rejected", zap.Error(err))

	var verr *pkgerrors.ValidationError
	if errors.As(err, &verr) {
		Error(c, status, verr.Message, verr.Details)
		return
	}
	Error(c, status, err.Error(), nil)
}
