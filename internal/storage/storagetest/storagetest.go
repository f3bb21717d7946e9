// Package storagetest provides the contract tests every types.Backend
// implementation must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// Factory returns an unattached backend and the config to attach it with.
type Factory func(t *testing.T) (types.Backend, types.Config)

// Run exercises the Backend contract against backends produced by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Helper()

	t.Run("get missing key", func(t *testing.T) {
		b := attach(t, newBackend)
		v, ok, err := b.Get(context.Background(), "@Test:missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		b := attach(t, newBackend)
		ctx := context.Background()
		require.NoError(t, b.Set(ctx, "@Test:products", `[{"id":"1"}]`))

		v, ok, err := b.Get(ctx, "@Test:products")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":"1"}]`, v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		b := attach(t, newBackend)
		ctx := context.Background()
		require.NoError(t, b.Set(ctx, "k", "first"))
		require.NoError(t, b.Set(ctx, "k", "second"))

		v, ok, err := b.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "second", v)
	})

	t.Run("empty value is stored", func(t *testing.T) {
		b := attach(t, newBackend)
		ctx := context.Background()
		require.NoError(t, b.Set(ctx, "k", ""))

		v, ok, err := b.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("clear removes all keys", func(t *testing.T) {
		b := attach(t, newBackend)
		ctx := context.Background()
		require.NoError(t, b.Set(ctx, "a", "1"))
		require.NoError(t, b.Set(ctx, "b", "2"))
		require.NoError(t, b.Clear(ctx))

		for _, k := range []string{"a", "b"} {
			_, ok, err := b.Get(ctx, k)
			require.NoError(t, err)
			assert.False(t, ok, "key %q should be cleared", k)
		}
	})

	t.Run("double attach fails", func(t *testing.T) {
		b, cfg := newBackend(t)
		require.NoError(t, b.Attach(cfg))
		t.Cleanup(func() { b.Detach() })

		assert.ErrorIs(t, b.Attach(cfg), types.ErrAlreadyAttached)
	})

	t.Run("detach is idempotent and blocks operations", func(t *testing.T) {
		b, cfg := newBackend(t)
		require.NoError(t, b.Attach(cfg))
		require.NoError(t, b.Detach())
		require.NoError(t, b.Detach())

		ctx := context.Background()
		_, _, err := b.Get(ctx, "k")
		assert.ErrorIs(t, err, types.ErrDetached)
		assert.ErrorIs(t, b.Set(ctx, "k", "v"), types.ErrDetached)
		assert.ErrorIs(t, b.Clear(ctx), types.ErrDetached)
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		b, _ := newBackend(t)
		assert.ErrorIs(t, b.Attach(types.Config{}), types.ErrBackendEmpty)
	})
}

func attach(t *testing.T, newBackend Factory) types.Backend {
	t.Helper()
	b, cfg := newBackend(t)
	require.NoError(t, b.Attach(cfg))
	t.Cleanup(func() { b.Detach() })
	return b
}
