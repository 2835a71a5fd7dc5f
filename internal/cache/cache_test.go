package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl, true), mr
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	var got payload
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", payload{Name: "a", Count: 2}))
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "a", Count: 2}, got)

	mr.FastForward(2 * time.Minute)
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found, "entry should expire after ttl")
}

func TestCacheDelete(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, UserBadgesKey("u1"), []string{"x"}))
	require.NoError(t, c.Delete(ctx, UserBadgesKey("u1")))

	var got []string
	found, err := c.Get(ctx, UserBadgesKey("u1"), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	c := New(nil, time.Minute, true)
	assert.False(t, c.Enabled())

	require.NoError(t, c.Set(ctx, "k", 1))
	var v int
	found, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, c.Delete(ctx, "k"))
}

func TestCorruptedEntry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("k", "{not json"))

	var got payload
	_, err := c.Get(ctx, "k", &got)
	assert.Error(t, err)
}
