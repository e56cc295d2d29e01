package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/pkg/cache"
)

type cartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func TestMemoryStore_SetGetDel(t *testing.T) {
	cache.Use(cache.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "cart:user:1", []cartLine{{"p1", 2}}, time.Minute))

	var got []cartLine
	require.True(t, cache.Get(ctx, "cart:user:1", &got))
	assert.Equal(t, []cartLine{{"p1", 2}}, got)

	require.NoError(t, cache.Del(ctx, "cart:user:1"))
	assert.False(t, cache.Get(ctx, "cart:user:1", &got))
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := cache.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte(`1`), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestIncr(t *testing.T) {
	cache.Use(cache.NewMemoryStore())
	ctx := context.Background()

	n, err := cache.Incr(ctx, "catalog:version")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = cache.Incr(ctx, "catalog:version")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var v int64
	require.True(t, cache.Get(ctx, "catalog:version", &v))
	assert.Equal(t, int64(2), v)
}

func TestRemember(t *testing.T) {
	cache.Use(cache.NewMemoryStore())
	ctx := context.Background()
	calls := 0

	load := func() ([]string, error) {
		calls++
		return []string{"Electronics", "Shoes"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := cache.Remember(ctx, "facets", time.Minute, load)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}
	assert.Equal(t, 1, calls)

	_, err := cache.Remember(ctx, "broken", time.Minute, func() (int, error) {
		return 0, errors.New("db down")
	})
	assert.Error(t, err)
	var n int
	assert.False(t, cache.Get(ctx, "broken", &n))
}
