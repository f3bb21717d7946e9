package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/gomarket/internal/storage/storagetest"
	"github.com/mesh-intelligence/gomarket/pkg/types"
)

func TestBackendContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) (types.Backend, types.Config) {
		return NewBackend(), types.Config{Backend: types.BackendMemory}
	})
}

func TestBackend_DetachDropsValues(t *testing.T) {
	b := NewBackend()
	cfg := types.Config{Backend: types.BackendMemory}
	ctx := context.Background()

	require.NoError(t, b.Attach(cfg))
	require.NoError(t, b.Set(ctx, "k", "v"))
	require.NoError(t, b.Detach())
	require.NoError(t, b.Attach(cfg))
	defer b.Detach()

	_, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackend_CanceledContext(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendMemory}))
	defer b.Detach()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.Set(ctx, "k", "v"), context.Canceled)
}
