package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCounterTest(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestHit(t *testing.T) {
	mr, rdb := setupCounterTest(t)
	ctx := context.Background()

	first, err := Hit(ctx, rdb, "rl:test", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count)
	assert.True(t, first.ResetIn > 0)

	second, err := Hit(ctx, rdb, "rl:test", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Count)

	mr.FastForward(2 * time.Minute)

	afterWindow, err := Hit(ctx, rdb, "rl:test", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, afterWindow.Count)
}

func TestHit_SeparateKeys(t *testing.T) {
	_, rdb := setupCounterTest(t)
	ctx := context.Background()

	_, err := Hit(ctx, rdb, "rl:a", time.Minute)
	require.NoError(t, err)
	b, err := Hit(ctx, rdb, "rl:b", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Count)
}
