package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"user-service/internal/adapter/ratelimit"
	"user-service/pkg/logger"
)

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func do(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(zaptest.NewLogger(t)))
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "/panic", body["path"])
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())
	var fromCtx, fromGin string
	r.GET("/", func(c *gin.Context) {
		fromCtx = logger.GetRequestID(c.Request.Context())
		fromGin = c.GetString(CtxRequestID)
	})

	w := do(r, http.MethodGet, "/", nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, fromCtx)
	assert.Equal(t, generated, fromGin)

	w = do(r, http.MethodGet, "/", http.Header{RequestIDHeader: {"caller-id"}})
	assert.Equal(t, "caller-id", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "caller-id", fromCtx)
}

func TestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newEngine(RequestID(), Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	do(r, http.MethodGet, "/ok", nil)
	do(r, http.MethodGet, "/bad", nil)
	do(r, http.MethodGet, "/fail", nil)
	do(r, http.MethodGet, "/nowhere", nil)

	entries := logs.TakeAll()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "unmatched", entries[3].ContextMap()["route"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
	assert.Equal(t, "/ok", entries[0].ContextMap()["route"])
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(SecurityHeaders("/docs"))
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/docs/index.html", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, defaultCSP, w.Header().Get("Content-Security-Policy"))

	w = do(r, http.MethodGet, "/docs/index.html", nil)
	assert.Equal(t, docsCSP, w.Header().Get("Content-Security-Policy"))
}

func TestRateLimiter(t *testing.T) {
	cfg := ratelimit.Config{RequestsPerSecond: 1, Burst: 1, Enabled: true}

	t.Run("rejects with 429 envelope", func(t *testing.T) {
		limiter := &stubLimiter{allowed: false}
		var limited []string
		r := newEngine(RateLimiter(limiter, RateLimiterOptions{
			Config:    cfg,
			OnLimited: func(route string) { limited = append(limited, route) },
		}, zaptest.NewLogger(t)))
		r.GET("/api/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := do(r, http.MethodGet, "/api/users/1", nil)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), TooManyRequestsMessage)
		assert.Equal(t, []string{"/api/users/:id"}, limited)
		require.Len(t, limiter.keys, 1)
		assert.Equal(t, "GET:/api/users/:id:192.0.2.1", limiter.keys[0])
	})

	t.Run("skip bypasses limiter", func(t *testing.T) {
		limiter := &stubLimiter{allowed: false}
		r := newEngine(RateLimiter(limiter, RateLimiterOptions{
			Config: cfg,
			Skip:   func(c *gin.Context) bool { return c.FullPath() == "/api/health" },
		}, zaptest.NewLogger(t)))
		r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/health", nil).Code)
		assert.Empty(t, limiter.keys)
	})

	t.Run("fails open", func(t *testing.T) {
		limiter := &stubLimiter{err: errors.New("redis down")}
		r := newEngine(RateLimiter(limiter, RateLimiterOptions{Config: cfg}, zaptest.NewLogger(t)))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
	})

	t.Run("disabled", func(t *testing.T) {
		limiter := &stubLimiter{allowed: false}
		r := newEngine(RateLimiter(limiter, RateLimiterOptions{}, zaptest.NewLogger(t)))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
	})

	t.Run("local limiter burst", func(t *testing.T) {
		local := ratelimit.NewLocalLimiter(ratelimit.Config{RequestsPerSecond: 0.001, Burst: 2, Enabled: true})
		defer local.Close()
		r := newEngine(RateLimiter(local, RateLimiterOptions{Config: ratelimit.Config{Enabled: true}}, zaptest.NewLogger(t)))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
		assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/x", nil).Code)
	})
}
