// AngelaMos | 2026
// redis_test.go

package core

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestCooldownAcquire(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	cd := NewCooldown(client, "otp:cooldown:", time.Minute)

	ok, _, err := cd.Acquire(ctx, "+998901234567")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, remaining, err := cd.Acquire(ctx, "+998901234567")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, remaining, time.Duration(0))
	assert.LessOrEqual(t, remaining, time.Minute)

	ok, _, err = cd.Acquire(ctx, "+998907654321")
	require.NoError(t, err)
	assert.True(t, ok, "cooldowns are per identifier")

	mr.FastForward(time.Minute + time.Second)

	ok, _, err = cd.Acquire(ctx, "+998901234567")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCooldownKeyIsHashed(t *testing.T) {
	mr, client := newTestRedis(t)

	cd := NewCooldown(client, "otp:cooldown:", time.Minute)
	_, _, err := cd.Acquire(context.Background(), "user@example.com")
	require.NoError(t, err)

	assert.True(t, mr.Exists("otp:cooldown:"+HashIdentifier("user@example.com")))
	for _, key := range mr.Keys() {
		assert.NotContains(t, key, "example.com")
	}
}

func TestCooldownRelease(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	cd := NewCooldown(client, "otp:cooldown:", time.Minute)

	ok, _, err := cd.Acquire(ctx, "user@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, cd.Release(ctx, "user@example.com"))

	ok, _, err = cd.Acquire(ctx, "user@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCooldownDisabled(t *testing.T) {
	_, client := newTestRedis(t)

	cd := NewCooldown(client, "otp:cooldown:", 0)
	for range 3 {
		ok, _, err := cd.Acquire(context.Background(), "user@example.com")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
