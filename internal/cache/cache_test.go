package cache

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func exerciseClient(t *testing.T, c Client) {
	t.Helper()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	require.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "refresh:1", "a", time.Minute))
	v, err := c.Get(ctx, "refresh:1")
	require.NoError(t, err)
	require.Equal(t, "a", v)

	// overwrite replaces the value
	require.NoError(t, c.Set(ctx, "refresh:1", "b", time.Minute))
	v, err = c.Get(ctx, "refresh:1")
	require.NoError(t, err)
	require.Equal(t, "b", v)

	ok, err := c.Exists(ctx, "refresh:1")
	require.NoError(t, err)
	require.True(t, ok)

	ttl, err := c.TTL(ctx, "refresh:1")
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, c.Delete(ctx, "refresh:1"))
	require.NoError(t, c.Delete(ctx, "refresh:1"))
	ok, err = c.Exists(ctx, "refresh:1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Ping(ctx))
}

func TestMemoryClient(t *testing.T) {
	c := NewMemory("test")
	defer c.Close()
	exerciseClient(t, c)
}

func TestMemoryClientExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")

	require.NoError(t, c.Set(ctx, "k", "v", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryClientCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewMemory("")
	require.Error(t, c.Set(ctx, "k", "v", time.Minute))
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(Config{Driver: "memcached"})
	require.Error(t, err)
}

func TestRedisClient(t *testing.T) {
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("TEST_REDIS_PORT"))

	c, err := NewRedis(Config{Host: host, Port: port, Prefix: "authgate-test"})
	require.NoError(t, err)
	defer c.Close()
	exerciseClient(t, c)
}
