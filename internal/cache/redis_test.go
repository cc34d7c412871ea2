package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
}

func TestAsidePopulatesOnMiss(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetched := 0
	var got cachedUser
	err := Aside(ctx, UserKey(7), &got, UserTTL, func() error {
		fetched++
		got = cachedUser{ID: 7, Name: "ada"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetched)
	assert.Equal(t, "ada", got.Name)

	// Second read must be served from the cache.
	var again cachedUser
	err = Aside(ctx, UserKey(7), &again, UserTTL, func() error {
		fetched++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetched)
	assert.Equal(t, uint(7), again.ID)
}

func TestInvalidateUserRemovesKey(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(3), cachedUser{ID: 3}, time.Minute))
	InvalidateUser(ctx, 3)

	var got cachedUser
	found, err := GetJSON(ctx, UserKey(3), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAsideWithoutClientFallsThrough(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var got cachedUser
	err := Aside(ctx, UserKey(1), &got, UserTTL, func() error {
		got = cachedUser{ID: 1, Name: "direct"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", got.Name)
}
