package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/gomarket/internal/paths"
	"github.com/mesh-intelligence/gomarket/pkg/types"
)

func writeConfigYAML(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
}

func TestStoreConfig_DataDirPrecedence(t *testing.T) {
	fromYAML := filepath.Join(t.TempDir(), "from-yaml")
	fromEnv := filepath.Join(t.TempDir(), "from-env")
	fromFlag := filepath.Join(t.TempDir(), "from-flag")

	tests := []struct {
		name string
		yaml string
		env  string
		flag string
		want string
	}{
		{"config.yaml wins over env", "data_dir: " + fromYAML + "\n", fromEnv, "", fromYAML},
		{"env used when config.yaml has no data_dir", "backend: file\n", fromEnv, "", fromEnv},
		{"flag wins over config.yaml and env", "data_dir: " + fromYAML + "\n", fromEnv, fromFlag, fromFlag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configDir := t.TempDir()
			writeConfigYAML(t, configDir, tt.yaml)
			t.Setenv(paths.EnvDataDir, tt.env)
			t.Setenv("GOMARKET_BACKEND", "")

			v, err := loadConfig(configDir)
			require.NoError(t, err)
			cfg, err := storeConfig(v, rootFlags{dataDir: tt.flag})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.DataDir)
		})
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	configDir := t.TempDir()
	writeConfigYAML(t, configDir, "backend: file\nstorage_key: from-yaml\nredis:\n  addr: yaml:6379\n")
	t.Setenv("GOMARKET_BACKEND", types.BackendRedis)
	t.Setenv("GOMARKET_STORAGE_KEY", "from-env")
	t.Setenv("GOMARKET_REDIS_ADDR", "env:6379")

	v, err := loadConfig(configDir)
	require.NoError(t, err)
	cfg, err := storeConfig(v, rootFlags{})
	require.NoError(t, err)

	assert.Equal(t, types.BackendRedis, cfg.Backend)
	assert.Equal(t, "from-env", cfg.StorageKey)
	assert.Equal(t, "env:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.DataDir)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GOMARKET_BACKEND", "")
	t.Setenv("GOMARKET_STORAGE_KEY", "")
	v, err := loadConfig(t.TempDir())
	require.NoError(t, err)

	cfg, err := storeConfig(v, rootFlags{dataDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, types.BackendFile, cfg.Backend)
	assert.Equal(t, types.DefaultStorageKey, cfg.StorageKey)
	assert.False(t, cfg.ClearOnLoad)
	assert.Equal(t, types.DefaultRedisPrefix, cfg.Redis.Prefix)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	configDir := t.TempDir()
	writeConfigYAML(t, configDir, "backend: [unterminated\n")
	_, err := loadConfig(configDir)
	assert.Error(t, err)
}
