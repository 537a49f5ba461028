package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cookie-auth/internal/config"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		AddressRedis: "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
	}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}

func TestLoginThrottle_BlocksAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupTestCache(t)
	throttle := NewLoginThrottle(cache, 3, time.Minute)

	for i := range 3 {
		blocked, err := throttle.Blocked(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.False(t, blocked, "attempt %d should not be blocked", i+1)
		require.NoError(t, throttle.Fail(ctx, "alice@example.com"))
	}

	blocked, err := throttle.Blocked(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = throttle.Blocked(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLoginThrottle_WindowExpires(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupTestCache(t)
	throttle := NewLoginThrottle(cache, 1, time.Minute)

	require.NoError(t, throttle.Fail(ctx, "alice@example.com"))
	assert.Equal(t, time.Minute, mr.TTL(throttleKey("alice@example.com")))

	// повторная ошибка не продлевает окно
	mr.FastForward(30 * time.Second)
	require.NoError(t, throttle.Fail(ctx, "alice@example.com"))
	assert.Equal(t, 30*time.Second, mr.TTL(throttleKey("alice@example.com")))

	blocked, err := throttle.Blocked(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, blocked)

	mr.FastForward(31 * time.Second)

	blocked, err = throttle.Blocked(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLoginThrottle_Reset(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupTestCache(t)
	throttle := NewLoginThrottle(cache, 1, time.Minute)

	require.NoError(t, throttle.Fail(ctx, "alice@example.com"))
	require.NoError(t, throttle.Reset(ctx, "alice@example.com"))

	assert.False(t, mr.Exists(throttleKey("alice@example.com")))
	blocked, err := throttle.Blocked(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLoginThrottle_RedisDown(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupTestCache(t)
	throttle := NewLoginThrottle(cache, 1, time.Minute)

	mr.Close()

	_, err := throttle.Blocked(ctx, "alice@example.com")
	assert.Error(t, err)
	assert.Error(t, throttle.Fail(ctx, "alice@example.com"))
	assert.Error(t, throttle.Reset(ctx, "alice@example.com"))
}
