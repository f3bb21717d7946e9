// Tests for SQLite backend implementation.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/gomarket/internal/storage/storagetest"
	"github.com/mesh-intelligence/gomarket/pkg/types"
)

func TestBackendContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) (types.Backend, types.Config) {
		return NewBackend(), types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}
	})
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	err := b.Attach(config)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	// Verify database file created
	dbPath := filepath.Join(tmpDir, DBFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("gomarket.db not created")
	}

	// Verify double attach fails
	err = b.Attach(config)
	if err != types.ErrAlreadyAttached {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}

	// Clean up
	b.Detach()
}

func TestBackend_ValuesSurviveReattach(t *testing.T) {
	tmpDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}
	ctx := context.Background()

	b := NewBackend()
	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := b.Set(ctx, types.DefaultStorageKey, `[{"id":"1","quantity":1}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	b = NewBackend()
	if err := b.Attach(config); err != nil {
		t.Fatalf("second Attach failed: %v", err)
	}
	defer b.Detach()

	v, ok, err := b.Get(ctx, types.DefaultStorageKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || v != `[{"id":"1","quantity":1}]` {
		t.Errorf("Get = (%q, %v), want persisted blob", v, ok)
	}
}

func TestBackend_SetUpsertsSingleRow(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	b := NewBackend()
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	for _, v := range []string{"1", "2", "3"} {
		if err := b.Set(ctx, "k", v); err != nil {
			t.Fatalf("Set(%q) failed: %v", v, err)
		}
	}
	b.Detach()

	db, err := sql.Open("sqlite", filepath.Join(tmpDir, DBFileName))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var count int
	var value string
	if err := db.QueryRow("SELECT COUNT(*), MAX(value) FROM kv WHERE key = 'k'").Scan(&count, &value); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 1 || value != "3" {
		t.Errorf("got %d rows with value %q, want 1 row with value \"3\"", count, value)
	}
}

func TestBackend_CanceledContext(t *testing.T) {
	b := NewBackend()
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Set(ctx, "k", "v"); err == nil {
		t.Error("expected error for canceled context")
	}
}
