// Package testutil provides shared test helpers for setting up stores
// and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/opdeck/opdeck/internal/index"
	"github.com/opdeck/opdeck/internal/storage"
)

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "opdeck-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a store over a temporary data directory.
func TestStore(t *testing.T) (string, *storage.Store) {
	t.Helper()
	dir := t.TempDir()
	provider, err := storage.NewFS(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.New(provider, Logger())
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// MemStore creates a store over the in-memory provider, with an
// optional byte quota (0 means unlimited).
func MemStore(t *testing.T, quota int64) (*storage.Memory, *storage.Store) {
	t.Helper()
	provider := storage.NewMemory(quota)
	store, err := storage.New(provider, Logger())
	if err != nil {
		t.Fatal(err)
	}
	return provider, store
}
