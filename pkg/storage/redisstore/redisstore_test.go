package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/storage"
	"github.com/dmitrymomot/sessionkit/pkg/storage/redisstore"
	"github.com/dmitrymomot/sessionkit/pkg/storage/storagetest"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStoreContract(t *testing.T) {
	t.Parallel()
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		_, client := newClient(t)
		return redisstore.New(client, redisstore.WithPrefix("test:"))
	})
}

func TestStorePrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr, client := newClient(t)

	s := redisstore.New(client, redisstore.WithPrefix("sessionkit:"))
	require.NoError(t, s.SetItem(ctx, "auth", "value"))

	got, err := mr.Get("sessionkit:auth")
	require.NoError(t, err)
	assert.Equal(t, "value", got)
	assert.False(t, mr.Exists("auth"))
}

func TestStoreTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr, client := newClient(t)

	s := redisstore.New(client, redisstore.WithTTL(time.Minute))
	require.NoError(t, s.SetItem(ctx, "k", "v"))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreServerDown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr, client := newClient(t)
	s := redisstore.New(client)
	mr.Close()

	_, _, err := s.GetItem(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrReadFailed)
	assert.ErrorIs(t, s.SetItem(ctx, "k", "v"), storage.ErrWriteFailed)
	assert.ErrorIs(t, s.RemoveItem(ctx, "k"), storage.ErrRemoveFailed)
}
