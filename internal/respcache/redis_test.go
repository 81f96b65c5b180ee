package respcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maploader/internal/resource"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client, time.Hour)

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return store, mr
}

func TestRedisStoreSetAndGet(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	resp := resource.Response{
		Status:   resource.StatusSuccessful,
		Data:     []byte("tile-bytes"),
		Etag:     `"v1"`,
		Modified: time.Date(2026, 2, 23, 9, 30, 0, 0, time.UTC),
		Expires:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Set(ctx, "https://example.com/t", resp))

	got, ok, err := store.Get(ctx, "https://example.com/t")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, resp.Data, got.Data)
	assert.Equal(t, resp.Etag, got.Etag)
	assert.True(t, resp.Modified.Equal(got.Modified))
	assert.True(t, resp.Expires.Equal(got.Expires))
	assert.Equal(t, resource.StatusSuccessful, got.Status)
}

func TestRedisStoreMiss(t *testing.T) {
	store, _ := setupTestRedis(t)
	_, ok, err := store.Get(context.Background(), "https://example.com/absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "u", resource.Response{Data: []byte("x")}))
	mr.FastForward(2 * time.Hour)

	_, ok, err := store.Get(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "u", resource.Response{Data: []byte("x")}))
	require.NoError(t, store.Delete(ctx, "u"))

	_, ok, err := store.Get(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreCorruptEntry(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("resource:u", "not json"))
	_, _, err := store.Get(context.Background(), "u")
	assert.Error(t, err)
}
