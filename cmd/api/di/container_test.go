package di

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-service/internal/adapter/ratelimit"
	"user-service/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:                   "user-service",
			Env:                    "test",
			Host:                   "127.0.0.1",
			HTTPPort:               "3000",
			Prefix:                 "api",
			GRPCEnabled:            true,
			GRPCPort:               "50051",
			ShutdownTimeoutSeconds: 5,
		},
		Storage: config.StorageConfig{Driver: config.StorageMemory, SQLiteDSN: ":memory:"},
		RateLimit: config.RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 100,
			BurstCapacity:     100,
		},
		Telemetry: config.TelemetryConfig{MetricsEnabled: true},
		Logger:    config.LoggerConfig{Level: "debug", ServiceName: "user-service"},
	}
}

func createUser(t *testing.T, c *Container) string {
	body, err := json.Marshal(map[string]string{"name": "Alice", "email": "alice@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	return created.Data.ID
}

func TestNewContainer_Memory(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(), zaptest.NewLogger(t), false)
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	assert.Nil(t, c.DB)
	assert.Nil(t, c.RedisClient)
	assert.NotNil(t, c.Prom)
	assert.IsType(t, &ratelimit.LocalLimiter{}, c.Limiter)

	createUser(t, c)

	w := httptest.NewRecorder()
	c.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user_service_store_op_duration_seconds")
}

func TestNewContainer_SQLite(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = config.StorageSQLite

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t), false)
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	require.NotNil(t, c.DB)
	createUser(t, c)

	var count int64
	require.NoError(t, c.DB.Table("users").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewContainer_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Redis = config.RedisConfig{
		Enabled:  true,
		Host:     mr.Host(),
		Port:     mr.Port(),
		PoolSize: 2,
		CacheTTL: 60,
	}

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t), false)
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	require.NotNil(t, c.RedisClient)
	assert.IsType(t, &ratelimit.RedisLimiter{}, c.Limiter)

	createUser(t, c)
	assert.NotEmpty(t, mr.Keys())
}

func TestNewContainer_RestartIgnoresPreviousCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Redis = config.RedisConfig{
		Enabled:  true,
		Host:     mr.Host(),
		Port:     mr.Port(),
		PoolSize: 2,
		CacheTTL: 60,
	}

	first, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t), false)
	require.NoError(t, err)
	id := createUser(t, first)

	w := httptest.NewRecorder()
	first.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, mr.Keys())
	require.NoError(t, first.Close())

	second, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t), false)
	require.NoError(t, err)
	defer func() { assert.NoError(t, second.Close()) }()
	assert.NotEqual(t, first.InstanceID, second.InstanceID)

	w = httptest.NewRecorder()
	second.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	second.Router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/users/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	second.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Meta.Total)
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = "postgres"

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}

func TestNewContainer_RedisUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.Redis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: "1", CacheTTL: 60}

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Redis")
}
