package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"user-service/internal/adapter/gin/response"
)

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status      string  `json:"status"`
	Timestamp   int64   `json:"timestamp"` // milliseconds since the Unix epoch
	Uptime      float64 `json:"uptime"`    // seconds since start
	Environment string  `json:"environment"`
}

// HealthHandler reports liveness.
type HealthHandler struct {
	environment string
	started     time.Time
	now         func() time.Time
}

// NewHealthHandler creates a HealthHandler; uptime is measured from started.
func NewHealthHandler(environment string, started time.Time) *HealthHandler {
	if environment == "" {
		environment = "development"
	}
	return &HealthHandler{environment: environment, started: started, now: time.Now}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	now := h.now()
	response.OK(c, http.StatusOK, HealthResponse{
		Status:      "ok",
		Timestamp:   now.UnixMilli(),
		Uptime:      now.Sub(h.started).Seconds(),
		Environment: h.environment,
	})
}
