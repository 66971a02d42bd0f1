package rediscache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute, nil), mr
}

type report struct {
	Total string `json:"total"`
}

func TestFetchJSON_CacheaHastaElBump(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return report{Total: "100"}, nil
	}

	key, err := c.BuildKey(ctx, "margin", "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, "boulangerie:analytics:margin:2026-03-01:2026-03-31:v1", key)

	var got report
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	assert.Equal(t, "100", got.Total)
	assert.Equal(t, 1, calls, "la segunda lectura debe venir de Redis")

	require.NoError(t, c.Invalidate(ctx))
	key2, err := c.BuildKey(ctx, "margin", "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.NotEqual(t, key, key2)

	require.NoError(t, c.FetchJSON(ctx, key2, &got, loader))
	assert.Equal(t, 2, calls, "tras el bump se recalcula")
}

func TestFetchJSON_ErrorDelLoaderNoSeCachea(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	boom := errors.New("snapshot no disponible")

	err := c.FetchJSON(ctx, "k", &report{}, func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestFetchJSON_RedisCaidoSirveElLoader(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	mr.Close()

	var got report
	err := c.FetchJSON(ctx, "k", &got, func(context.Context) (any, error) { return report{Total: "7"}, nil })
	require.NoError(t, err)
	assert.Equal(t, "7", got.Total)
}

func TestCacheNil_DelegaEnElLoader(t *testing.T) {
	ctx := context.Background()
	var c *Cache

	key, err := c.BuildKey(ctx, "consumed", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "boulangerie:analytics:consumed:a:b", key)
	assert.NoError(t, c.Invalidate(ctx))

	var got report
	require.NoError(t, c.FetchJSON(ctx, key, &got, func(context.Context) (any, error) { return report{Total: "3"}, nil }))
	assert.Equal(t, "3", got.Total)
}

func TestListen_RecibeBumpDeOtraInstancia(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c, mr := newTestCache(t)

	other := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, nil)
	bumped := make(chan struct{}, 1)
	c.Listen(ctx, func() {
		select {
		case bumped <- struct{}{}:
		default:
		}
	})

	require.Eventually(t, func() bool {
		_ = other.Bump(ctx)
		select {
		case <-bumped:
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
}
