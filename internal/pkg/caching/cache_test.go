package caching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progress struct {
	Level  int
	Stages int
}

func TestUseCacheFillsOnMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	calls := 0
	load := func() (*progress, error) {
		calls++
		return &progress{Level: 2, Stages: 7}, nil
	}

	v, err := UseCache(ctx, c, "progress:u1:maple-addition", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Level)

	v, err = UseCache(ctx, c, "progress:u1:maple-addition", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 7, v.Stages)
	assert.Equal(t, 1, calls)
}

func TestUseCacheDoesNotStoreErrors(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	boom := errors.New("boom")

	_, err := UseCache(ctx, c, "k", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestUseCacheWithROWritesToPrimary(t *testing.T) {
	ctx := context.Background()
	ro := NewMemoryCache()
	rw := NewMemoryCache()

	v, err := UseCacheWithRO(ctx, ro, rw, "k", time.Minute, func() (string, error) { return "ottawa", nil })
	require.NoError(t, err)
	assert.Equal(t, "ottawa", v)

	var got string
	require.NoError(t, rw.Get(ctx, "k", &got))
	assert.Equal(t, "ottawa", got)
	assert.ErrorIs(t, ro.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	require.NoError(t, c.Set(ctx, "k", 5, time.Second))
	var v int
	require.NoError(t, c.Get(ctx, "k", &v))
	assert.Equal(t, 5, v)

	clock = clock.Add(2 * time.Second)
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))

	require.NoError(t, Invalidate(ctx, c, "a", "b", "missing"))

	var v int
	assert.ErrorIs(t, c.Get(ctx, "a", &v), ErrCacheMiss)
	assert.ErrorIs(t, c.Get(ctx, "b", &v), ErrCacheMiss)
}
