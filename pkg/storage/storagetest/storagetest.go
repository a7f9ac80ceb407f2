// Package storagetest holds the behavioral contract every storage.Storage
// implementation must satisfy.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/storage"
)

// Run exercises newStorage against the Storage contract. newStorage is called
// once per subtest and must return an empty store.
func Run(t *testing.T, newStorage func(t *testing.T) storage.Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key is absent", func(t *testing.T) {
		s := newStorage(t)
		v, ok, err := s.GetItem(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.SetItem(ctx, "k", `{"v":1}`))
		v, ok, err := s.GetItem(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"v":1}`, v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.SetItem(ctx, "k", "first"))
		require.NoError(t, s.SetItem(ctx, "k", "second"))
		v, ok, err := s.GetItem(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "second", v)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.SetItem(ctx, "k", "value"))
		require.NoError(t, s.RemoveItem(ctx, "k"))
		require.NoError(t, s.RemoveItem(ctx, "k"))
		_, ok, err := s.GetItem(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.SetItem(ctx, "a", "1"))
		require.NoError(t, s.SetItem(ctx, "b", "2"))
		require.NoError(t, s.RemoveItem(ctx, "a"))
		v, ok, err := s.GetItem(ctx, "b")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "2", v)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		s := newStorage(t)
		_, _, err := s.GetItem(ctx, "")
		assert.ErrorIs(t, err, storage.ErrInvalidKey)
		assert.ErrorIs(t, s.SetItem(ctx, "", "v"), storage.ErrInvalidKey)
		assert.ErrorIs(t, s.RemoveItem(ctx, ""), storage.ErrInvalidKey)
	})

	t.Run("concurrent writers leave a complete value", func(t *testing.T) {
		s := newStorage(t)
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.SetItem(ctx, "k", fmt.Sprintf("value-%d", i)))
			}(i)
		}
		wg.Wait()
		v, ok, err := s.GetItem(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Regexp(t, `^value-[0-7]$`, v)
	})
}
