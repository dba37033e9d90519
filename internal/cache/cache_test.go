package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "linkmarket:site:12:feed", SiteFeedKey(12))
	assert.Equal(t, "linkmarket:site:12:*", sitePattern(12))
}

func unreachable(t *testing.T) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedis(rdb, time.Minute)
}

func TestRedisFeed_FallsBackToLoader(t *testing.T) {
	c := unreachable(t)

	calls := 0
	body, hit, err := c.Feed(context.Background(), 3, func(context.Context) ([]byte, error) {
		calls++
		return []byte(`[]`), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []byte(`[]`), body)
	assert.Equal(t, 1, calls)
}

func TestRedisFeed_LoaderError(t *testing.T) {
	c := unreachable(t)
	loadErr := errors.New("db down")

	_, _, err := c.Feed(context.Background(), 3, func(context.Context) ([]byte, error) {
		return nil, loadErr
	})
	assert.ErrorIs(t, err, loadErr)
}

func TestRedisEvict_Unreachable(t *testing.T) {
	c := unreachable(t)
	assert.Error(t, c.Evict(context.Background(), 3))
	c.InvalidateSite(context.Background(), 3)
}

func TestNop(t *testing.T) {
	var n Nop
	n.InvalidateSite(context.Background(), 1)
	body, hit, err := n.Feed(context.Background(), 1, func(context.Context) ([]byte, error) {
		return []byte("x"), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []byte("x"), body)
}
