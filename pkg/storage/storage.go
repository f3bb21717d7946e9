// Package storage provides the public factory for cart storage backends.
// This package exposes backend construction while keeping the
// implementations internal.
package storage

import (
	"fmt"

	"github.com/mesh-intelligence/gomarket/internal/redis"
	"github.com/mesh-intelligence/gomarket/internal/sqlite"
	"github.com/mesh-intelligence/gomarket/internal/storage/file"
	"github.com/mesh-intelligence/gomarket/internal/storage/memory"
	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// NewBackend creates the backend registered under name.
// The backend is not attached; call Attach with a Config to initialize.
// Returns ErrBackendUnknown for unrecognized names.
//
// Example:
//
//	backend, err := storage.NewBackend(types.BackendSQLite)
//	err = backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".gomarket-db",
//	})
//	defer backend.Detach()
func NewBackend(name string) (types.Backend, error) {
	switch name {
	case types.BackendMemory:
		return memory.NewBackend(), nil
	case types.BackendFile:
		return file.NewBackend(), nil
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case types.BackendRedis:
		return redis.NewBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, name)
	}
}

// Attach creates the backend named by config.Backend and attaches it.
// The caller must Detach the returned backend.
func Attach(config types.Config) (types.Backend, error) {
	backend, err := NewBackend(config.Backend)
	if err != nil {
		return nil, err
	}
	if err := backend.Attach(config); err != nil {
		return nil, fmt.Errorf("attach %s backend: %w", config.Backend, err)
	}
	return backend, nil
}
