package types

import (
	"errors"
	"strings"
)

// Config holds backend selection and parameters for Backend.Attach and the
// cart store built on top of it.
type Config struct {
	Backend     string      `json:"backend" yaml:"backend"`
	DataDir     string      `json:"data_dir" yaml:"data_dir"`
	StorageKey  string      `json:"storage_key" yaml:"storage_key"`
	ClearOnLoad bool        `json:"clear_on_load" yaml:"clear_on_load"`
	Redis       RedisConfig `json:"redis" yaml:"redis"`
}

// RedisConfig holds parameters for the redis backend.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	DB       int    `json:"db" yaml:"db"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	// Prefix namespaces every key written by the backend. Clear removes
	// only keys under this prefix.
	Prefix string `json:"prefix" yaml:"prefix"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// DefaultRedisPrefix namespaces keys when RedisConfig.Prefix is empty.
const DefaultRedisPrefix = "gomarket:"

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrRedisAddrEmpty   = errors.New("redis backend requires an address")
	ErrRedisDBInvalid   = errors.New("redis db must not be negative")
	ErrStorageKeyFormat = errors.New("storage key must not contain whitespace only")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendFile:   true,
	BackendSQLite: true,
	BackendRedis:  true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.StorageKey != "" && strings.TrimSpace(c.StorageKey) == "" {
		return ErrStorageKeyFormat
	}
	if c.Backend == BackendRedis {
		if c.Redis.Addr == "" {
			return ErrRedisAddrEmpty
		}
		if c.Redis.DB < 0 {
			return ErrRedisDBInvalid
		}
	}
	return nil
}

// Key returns the storage key for the cart blob, falling back to
// DefaultStorageKey.
func (c Config) Key() string {
	if c.StorageKey == "" {
		return DefaultStorageKey
	}
	return c.StorageKey
}

// KeyPrefix returns the redis key prefix, falling back to DefaultRedisPrefix.
func (r RedisConfig) KeyPrefix() string {
	if r.Prefix == "" {
		return DefaultRedisPrefix
	}
	return r.Prefix
}
