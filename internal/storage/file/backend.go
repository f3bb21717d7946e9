// Package file implements a Backend persisted to a JSONL file in DataDir.
// The file is the source of truth; it is read on Attach and rewritten
// atomically on every Set and Clear.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// FileName is the JSONL file created in DataDir.
const FileName = "storage.jsonl"

// Backend implements types.Backend on a JSONL file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	path     string
	values   map[string]string
}

// NewBackend creates a file backend. The backend is not attached; call
// Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach creates DataDir and the JSONL file if they do not exist, then loads
// the file. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dataDir, FileName)
	if err := initFile(path); err != nil {
		return err
	}
	values, err := readJSONL(path)
	if err != nil {
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.path = path
	b.values = values
	b.attached = true
	return nil
}

// Detach releases the in-memory copy. Idempotent. Every write has already
// reached the file, so there is nothing to flush.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attached = false
	b.path = ""
	b.values = nil
	return nil
}

// Path returns the JSONL file path, or "" when detached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
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

// Set stores value under key and rewrites the file. On write failure the
// in-memory copy is left as it was.
func (b *Backend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}

	next := make(map[string]string, len(b.values)+1)
	for k, v := range b.values {
		next[k] = v
	}
	next[key] = value
	if err := writeJSONL(b.path, toRecords(next)); err != nil {
		return err
	}
	b.values = next
	return nil
}

// Clear truncates the file to zero records.
func (b *Backend) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	if err := writeJSONL(b.path, nil); err != nil {
		return err
	}
	b.values = make(map[string]string)
	return nil
}

// initFile creates an empty file at path if it does not exist.
func initFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return f.Close()
}

// toRecords orders records by key so rewrites are deterministic.
func toRecords(values map[string]string) []record {
	records := make([]record, 0, len(values))
	for k, v := range values {
		records = append(records, record{Key: k, Value: v})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records
}
