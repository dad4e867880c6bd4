package mirror

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/opdeck/opdeck/internal/apperr"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

func testMirror(t *testing.T, opts ...Option[models.Task]) (*storage.Memory, *Mirror[models.Task]) {
	t.Helper()
	provider := storage.NewMemory(0)
	store, err := storage.New(provider, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	col := storage.NewCollection[models.Task](store, models.CollectionTasks)
	return provider, New(col, nil, opts...)
}

func TestInitAdoptsSeedOnce(t *testing.T) {
	provider, m := testMirror(t)
	seed := []models.Task{{ID: "1", Title: "seeded"}}
	m.Init(seed)

	got := m.Snapshot()
	if len(got) != 1 || got[0].Title != "seeded" {
		t.Fatalf("snapshot = %+v", got)
	}
	// The seed must be persisted immediately.
	if _, err := provider.Get(models.CollectionTasks); err != nil {
		t.Fatalf("seed not persisted: %v", err)
	}

	// A second Init with a different seed must not regenerate.
	m2 := New(storage.NewCollection[models.Task](mustStore(t, provider), models.CollectionTasks), nil)
	m2.Init([]models.Task{{ID: "9", Title: "other"}})
	if got := m2.Snapshot(); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("second init replaced stored data: %+v", got)
	}
}

func mustStore(t *testing.T, p storage.Provider) *storage.Store {
	t.Helper()
	store, err := storage.New(p, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	return store
}

func TestInitEmptySeedPersistsNothing(t *testing.T) {
	provider, m := testMirror(t)
	m.Init(nil)
	if _, err := provider.Get(models.CollectionTasks); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("empty seed should not write, got err = %v", err)
	}
}

func TestApplyPersists(t *testing.T) {
	provider, m := testMirror(t)
	m.Init(nil)

	err := m.Apply(func(tasks []models.Task) []models.Task {
		return append(tasks, models.Task{ID: "1", Title: "added"})
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m.Dirty() {
		t.Error("mirror dirty after successful apply")
	}
	if _, err := provider.Get(models.CollectionTasks); err != nil {
		t.Errorf("collection not persisted: %v", err)
	}
}

func TestApplyKeepsMemoryOnPersistFailure(t *testing.T) {
	var reported []string
	onErr := func(collection string, err error) {
		reported = append(reported, collection)
	}
	provider, m := testMirror(t, WithCommitErrorHandler[models.Task](onErr))
	m.Init(nil)
	provider.SetQuota(1)

	err := m.Apply(func(tasks []models.Task) []models.Task {
		return append(tasks, models.Task{ID: "1", Title: "volatile"})
	})
	if !errors.Is(err, apperr.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	// The in-memory state still holds the update.
	if got := m.Snapshot(); len(got) != 1 {
		t.Errorf("snapshot = %+v, want the applied record", got)
	}
	if !m.Dirty() {
		t.Error("mirror must be dirty after failed persist")
	}
	if len(reported) != 1 || reported[0] != models.CollectionTasks {
		t.Errorf("commit error handler calls = %v", reported)
	}
}

func TestFlushRetriesDirtyState(t *testing.T) {
	provider, m := testMirror(t)
	m.Init(nil)
	provider.SetQuota(1)
	_ = m.Apply(func(tasks []models.Task) []models.Task {
		return append(tasks, models.Task{ID: "1"})
	})
	if !m.Dirty() {
		t.Fatal("expected dirty mirror")
	}

	provider.SetQuota(0)
	if err := m.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if m.Dirty() {
		t.Error("mirror still dirty after successful flush")
	}
	if _, err := provider.Get(models.CollectionTasks); err != nil {
		t.Errorf("state not persisted by flush: %v", err)
	}
}

func TestFlushCleanIsNoOp(t *testing.T) {
	_, m := testMirror(t)
	m.Init(nil)
	if err := m.Flush(); err != nil {
		t.Errorf("Flush on clean mirror: %v", err)
	}
}

func TestReloadDiscardsLocalDelta(t *testing.T) {
	provider, m := testMirror(t)
	m.Init([]models.Task{{ID: "1", Title: "durable"}})
	provider.SetQuota(1)
	_ = m.Apply(func(tasks []models.Task) []models.Task {
		return append(tasks, models.Task{ID: "2", Title: "volatile"})
	})

	provider.SetQuota(0)
	m.Reload()
	got := m.Snapshot()
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("snapshot after reload = %+v, want durable state only", got)
	}
	if m.Dirty() {
		t.Error("reload must clear the dirty flag")
	}
}

func TestFind(t *testing.T) {
	_, m := testMirror(t)
	m.Init([]models.Task{{ID: "1", Title: "one"}, {ID: "2", Title: "two"}})

	task, ok := m.Find("2")
	if !ok || task.Title != "two" {
		t.Errorf("Find(2) = %+v, %v", task, ok)
	}
	if _, ok := m.Find("missing"); ok {
		t.Error("Find(missing) = true")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	_, m := testMirror(t)
	m.Init([]models.Task{{ID: "1", Title: "original"}})

	snap := m.Snapshot()
	snap[0].Title = "mutated"
	if got, _ := m.Find("1"); got.Title != "original" {
		t.Error("mutating a snapshot leaked into mirror state")
	}
}
