package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listmatch/backend/internal/domain"
)

// newTestRedis connects to LISTMATCH_TEST_REDIS_URL or skips.
func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("LISTMATCH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LISTMATCH_TEST_REDIS_URL not set")
	}

	c, err := NewRedisCache(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewRedisCache(ctx, "redis://127.0.0.1:1/0")
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()
	key := "listmatch-test:" + uuid.NewString()
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, key, "4", time.Minute))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "4", got)

	exists, err := c.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, key))
	exists, err = c.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}
