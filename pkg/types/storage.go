package types

import (
	"context"
	"errors"
)

// Storage is the key-value persistence collaborator the cart writes to.
// Values are opaque strings; the cart stores one serialized blob under a
// single namespaced key.
type Storage interface {
	// Get returns the value stored under key. ok is false when no value
	// is stored; that is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Clear removes every key owned by this storage.
	Clear(ctx context.Context) error
}

// Backend is a Storage with an attach/detach lifecycle.
// Callers attach to a backend, use it as Storage, and detach when done.
type Backend interface {
	Storage

	// Attach connects the backend to the storage described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, Storage operations return ErrDetached.
	Detach() error
}

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// ErrStorageIO wraps failures reported by the underlying store.
var ErrStorageIO = errors.New("storage i/o error")
