// Package memory implements an in-process Backend. Values live for the
// lifetime of the Backend and are dropped on Detach.
package memory

import (
	"context"
	"sync"

	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// Backend implements types.Backend with a mutex-guarded map.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	values   map[string]string
}

// NewBackend creates a memory backend. The backend is not attached; call
// Attach before use.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach prepares an empty store. Config fields other than Backend are
// ignored. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	b.values = make(map[string]string)
	b.attached = true
	return nil
}

// Detach drops all values. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attached = false
	b.values = nil
	return nil
}

// Get returns the value stored under key.
func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", false, types.ErrDetached
	}
	v, ok := b.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (b *Backend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	b.values[key] = value
	return nil
}

// Clear removes every value.
func (b *Backend) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	b.values = make(map[string]string)
	return nil
}
