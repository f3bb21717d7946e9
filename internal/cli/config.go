// Config loading for the gomarket CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/gomarket/internal/paths"
	"github.com/mesh-intelligence/gomarket/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "GOMARKET"
)

// Config keys.
const (
	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyStorageKey    = "storage_key"
	cfgKeyClearOnLoad   = "clear_on_load"
	cfgKeyRedisAddr     = "redis.addr"
	cfgKeyRedisDB       = "redis.db"
	cfgKeyRedisPassword = "redis.password"
	cfgKeyRedisPrefix   = "redis.prefix"
	cfgKeyLogLevel      = "log.level"
	cfgKeyLogFormat     = "log.format"
)

// envKeys are the config keys overridable from the environment. data_dir is
// absent: paths.ResolveDataDir reads GOMARKET_DATA_DIR below config.yaml.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyStorageKey,
	cfgKeyClearOnLoad,
	cfgKeyRedisAddr,
	cfgKeyRedisDB,
	cfgKeyRedisPassword,
	cfgKeyRedisPrefix,
	cfgKeyLogLevel,
	cfgKeyLogFormat,
}

// Defaults applied before config.yaml and the environment.
const (
	defaultBackend   = types.BackendFile
	defaultLogLevel  = "warn"
	defaultLogFormat = "text"
)

// configFile holds the structure written to config.yaml by init.
type configFile struct {
	Backend     string          `yaml:"backend"`
	DataDir     string          `yaml:"data_dir,omitempty"`
	StorageKey  string          `yaml:"storage_key"`
	ClearOnLoad bool            `yaml:"clear_on_load"`
	Redis       *redisConfig    `yaml:"redis,omitempty"`
	Log         logConfigValues `yaml:"log"`
}

type redisConfig struct {
	Addr   string `yaml:"addr"`
	DB     int    `yaml:"db"`
	Prefix string `yaml:"prefix"`
}

type logConfigValues struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// loadConfig reads config.yaml from configDir using Viper. Environment
// variables named GOMARKET_ plus the upper-cased key override file values
// (redis.addr becomes GOMARKET_REDIS_ADDR) for every key in envKeys. A
// missing config.yaml or config directory is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyStorageKey, types.DefaultStorageKey)
	v.SetDefault(cfgKeyClearOnLoad, false)
	v.SetDefault(cfgKeyRedisPrefix, types.DefaultRedisPrefix)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, defaultLogFormat)

	for _, key := range envKeys {
		if err := v.BindEnv(key, envName(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// storeConfig builds the backend and cart config from Viper values and the
// global flags. Flags win over the environment, which wins over config.yaml,
// except for the data directory, where config.yaml wins over
// GOMARKET_DATA_DIR.
func storeConfig(v *viper.Viper, flags rootFlags) (types.Config, error) {
	backend := v.GetString(cfgKeyBackend)
	if flags.backend != "" {
		backend = flags.backend
	}

	var dataDir string
	if backend == types.BackendFile || backend == types.BackendSQLite {
		dir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
		if err != nil {
			return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
		dataDir = dir
	}

	cfg := types.Config{
		Backend:     backend,
		DataDir:     dataDir,
		StorageKey:  v.GetString(cfgKeyStorageKey),
		ClearOnLoad: v.GetBool(cfgKeyClearOnLoad),
		Redis: types.RedisConfig{
			Addr:     v.GetString(cfgKeyRedisAddr),
			DB:       v.GetInt(cfgKeyRedisDB),
			Password: v.GetString(cfgKeyRedisPassword),
			Prefix:   v.GetString(cfgKeyRedisPrefix),
		},
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. It reports whether the file was written.
func writeConfigIfMissing(configDir string, cfg types.Config) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	out := configFile{
		Backend:     cfg.Backend,
		DataDir:     cfg.DataDir,
		StorageKey:  cfg.Key(),
		ClearOnLoad: cfg.ClearOnLoad,
		Log:         logConfigValues{Level: defaultLogLevel, Format: defaultLogFormat},
	}
	if cfg.Backend == types.BackendRedis {
		out.Redis = &redisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB, Prefix: cfg.Redis.KeyPrefix()}
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# gomarket CLI configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
