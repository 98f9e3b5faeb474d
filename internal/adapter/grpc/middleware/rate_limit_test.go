package middleware

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"user-service/internal/adapter/ratelimit"
)

const healthCheck = "/grpc.health.v1.Health/Check"

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func mockHandler(ctx context.Context, req any) (any, error) {
	return "success", nil
}

func peerContext(t *testing.T, hostport string) context.Context {
	addr, err := net.ResolveTCPAddr("tcp", hostport)
	require.NoError(t, err)
	return peer.NewContext(context.Background(), &peer.Peer{Addr: addr})
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimiter_ExceedLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	config := ratelimit.Config{RequestsPerSecond: 0.01, Burst: 5, Enabled: true}
	rl := NewRateLimiter(ratelimit.NewRedisLimiter(client, config), config, zaptest.NewLogger(t))
	interceptor := rl.UnaryInterceptor()

	ctx := peerContext(t, "127.0.0.1:12345")
	info := &grpc.UnaryServerInfo{FullMethod: healthCheck}

	for i := 0; i < 5; i++ {
		resp, err := interceptor(ctx, nil, info, mockHandler)
		require.NoError(t, err)
		assert.Equal(t, "success", resp)
	}

	resp, err := interceptor(ctx, nil, info, mockHandler)
	require.Error(t, err)
	assert.Nil(t, resp)

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.ResourceExhausted, st.Code())
	assert.Contains(t, st.Message(), "rate limit exceeded")
}

func TestRateLimiter_Disabled(t *testing.T) {
	config := ratelimit.Config{RequestsPerSecond: 0.01, Burst: 1, Enabled: false}
	local := ratelimit.NewLocalLimiter(config)
	defer local.Close()
	interceptor := NewRateLimiter(local, config, zaptest.NewLogger(t)).UnaryInterceptor()

	ctx := peerContext(t, "127.0.0.1:12345")
	info := &grpc.UnaryServerInfo{FullMethod: healthCheck}

	for i := 0; i < 10; i++ {
		_, err := interceptor(ctx, nil, info, mockHandler)
		require.NoError(t, err)
	}
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	config := ratelimit.Config{RequestsPerSecond: 0.01, Burst: 2, Enabled: true}
	local := ratelimit.NewLocalLimiter(config)
	defer local.Close()
	interceptor := NewRateLimiter(local, config, zaptest.NewLogger(t)).UnaryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: healthCheck}

	ctx1 := peerContext(t, "192.168.1.1:12345")
	for i := 0; i < 2; i++ {
		_, err := interceptor(ctx1, nil, info, mockHandler)
		require.NoError(t, err)
	}
	_, err := interceptor(ctx1, nil, info, mockHandler)
	require.Error(t, err)

	ctx2 := peerContext(t, "192.168.1.2:12345")
	resp, err := interceptor(ctx2, nil, info, mockHandler)
	require.NoError(t, err)
	assert.Equal(t, "success", resp)
}

func TestRateLimiter_XForwardedFor(t *testing.T) {
	client, mr := setupTestRedis(t)
	config := ratelimit.Config{RequestsPerSecond: 5, Burst: 10, Enabled: true}
	interceptor := NewRateLimiter(ratelimit.NewRedisLimiter(client, config), config, zaptest.NewLogger(t)).UnaryInterceptor()

	md := metadata.Pairs("x-forwarded-for", "203.0.113.1")
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: healthCheck}

	_, err := interceptor(ctx, nil, info, mockHandler)
	require.NoError(t, err)
	assert.True(t, mr.Exists("ratelimit:tb:"+healthCheck+":203.0.113.1"))
}

func TestRateLimiter_FailOpen(t *testing.T) {
	config := ratelimit.Config{RequestsPerSecond: 1, Burst: 1, Enabled: true}
	interceptor := NewRateLimiter(failingLimiter{}, config, zaptest.NewLogger(t)).UnaryInterceptor()

	resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: healthCheck}, mockHandler)
	require.NoError(t, err)
	assert.Equal(t, "success", resp)
}

func TestClientIP_Unknown(t *testing.T) {
	assert.Equal(t, "unknown", clientIP(context.Background()))
}
