package redis_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonotes/pkg/db/redis"
)

func configFor(t *testing.T, addr string) *redis.Config {
	t.Helper()
	host, portStr, _ := strings.Cut(addr, ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := redis.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	return cfg
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)

	client, err := redis.NewClient(ctx, configFor(t, s.Addr()))
	require.NoError(t, err)

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))
	got, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	s.FastForward(2 * time.Minute)
	_, err = client.Get(ctx, "k")
	assert.ErrorIs(t, err, redis.ErrNil)

	require.NoError(t, client.Set(ctx, "a", "1", 0))
	require.NoError(t, client.Delete(ctx, "a", "missing"))
	assert.False(t, s.Exists("a"))

	n, err := client.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = client.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, client.Ping(ctx))
	require.NoError(t, client.Close(ctx))
	require.NoError(t, client.Close(ctx), "closing twice is harmless")
}

func TestNewClient_ConnectionFailure(t *testing.T) {
	cfg := redis.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.Timeout = 100 * time.Millisecond

	client, err := redis.NewClient(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), redis.ErrConnect)
}
