package redis

import (
	"context"
	"net"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	client, err := NewClient(context.Background(), Config{Host: host, Port: port, PoolSize: 2}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	mr.Close()

	_, err = NewClient(context.Background(), Config{Host: host, Port: port}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, "localhost:6379", Config{Host: "localhost", Port: "6379"}.Addr())
}
