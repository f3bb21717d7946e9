package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/gomarket/internal/storage/storagetest"
	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// envTestAddr names a disposable Redis server for the contract tests.
const envTestAddr = "GOMARKET_TEST_REDIS_ADDR"

func testConfig(t *testing.T) types.Config {
	t.Helper()
	addr := os.Getenv(envTestAddr)
	if addr == "" {
		t.Skipf("%s not set", envTestAddr)
	}
	return types.Config{
		Backend: types.BackendRedis,
		Redis: types.RedisConfig{
			Addr:   addr,
			Prefix: fmt.Sprintf("gomarket-test:%s:%d:", t.Name(), time.Now().UnixNano()),
		},
	}
}

func TestBackendContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) (types.Backend, types.Config) {
		return NewBackend(), testConfig(t)
	})
}

func TestClear_LeavesOtherPrefixes(t *testing.T) {
	cfg := testConfig(t)
	other := cfg
	other.Redis.Prefix = cfg.Redis.Prefix + "other:"
	ctx := context.Background()

	mine := NewBackend()
	require.NoError(t, mine.Attach(cfg))
	defer mine.Detach()
	theirs := NewBackend()
	require.NoError(t, theirs.Attach(other))
	defer theirs.Detach()

	require.NoError(t, theirs.Set(ctx, "k", "kept"))
	require.NoError(t, mine.Set(ctx, "j", "dropped"))
	// Clear on the shorter prefix also matches the longer one, so clear
	// the longer prefix and check the shorter survives.
	require.NoError(t, theirs.Clear(ctx))

	v, ok, err := mine.Get(ctx, "j")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dropped", v)
}

func TestAttach_UnreachableServer(t *testing.T) {
	b := NewBackend()
	var slept []time.Duration
	b.sleep = func(d time.Duration) { slept = append(slept, d) }

	err := b.Attach(types.Config{
		Backend: types.BackendRedis,
		Redis:   types.RedisConfig{Addr: "127.0.0.1:1"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
	assert.Len(t, slept, pingAttempts-1)
	_, _, err = b.Get(context.Background(), "k")
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestAttach_InvalidConfig(t *testing.T) {
	err := NewBackend().Attach(types.Config{Backend: types.BackendRedis})
	assert.ErrorIs(t, err, types.ErrRedisAddrEmpty)
}

func TestMatchPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"gomarket:", "gomarket:*"},
		{"shop*:", `shop\*:*`},
		{"a?b", `a\?b*`},
		{"[tenant]:", `\[tenant\]:*`},
		{`back\slash:`, `back\\slash:*`},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.want, matchPrefix(tt.prefix))
		})
	}
}

func TestClear_GlobPrefixStaysInNamespace(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Prefix = cfg.Redis.Prefix + "shop*:"
	sibling := testConfig(t)
	sibling.Redis.Prefix = cfg.Redis.Prefix[:len(cfg.Redis.Prefix)-len("*:")] + "X:"
	ctx := context.Background()

	mine := NewBackend()
	require.NoError(t, mine.Attach(cfg))
	defer mine.Detach()
	theirs := NewBackend()
	require.NoError(t, theirs.Attach(sibling))
	defer theirs.Detach()

	require.NoError(t, theirs.Set(ctx, "k", "kept"))
	require.NoError(t, mine.Set(ctx, "k", "dropped"))
	require.NoError(t, mine.Clear(ctx))

	_, ok, err := mine.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := theirs.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kept", v)
}
