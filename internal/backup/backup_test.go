package backup

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/opdeck/opdeck/internal/apperr"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

func testService(t *testing.T) (*storage.Store, *Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.New(storage.NewMemory(0), logger)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	return store, New(store, logger)
}

func TestExportImportRoundTrip(t *testing.T) {
	store, svc := testService(t)
	_ = store.Save(models.CollectionTasks, []json.RawMessage{
		json.RawMessage(`{"id":"1","title":"carry me"}`),
	})
	_ = store.SaveSettings(map[string]string{"theme": "dark"})

	archive, err := svc.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if archive.Version != ArchiveVersion {
		t.Errorf("version = %d", archive.Version)
	}
	if _, ok := archive.Collections[models.CollectionTasks]; !ok {
		t.Fatal("tasks missing from archive")
	}
	// Never-written collections are omitted, not exported as empty.
	if _, ok := archive.Collections[models.CollectionMedia]; ok {
		t.Error("unwritten collection present in archive")
	}

	data, err := json.Marshal(archive)
	if err != nil {
		t.Fatalf("marshal archive: %v", err)
	}

	fresh, svc2 := testService(t)
	if err := svc2.ImportAll(data); err != nil {
		t.Fatalf("ImportAll: %v", err)
	}
	if got := fresh.Get(models.CollectionTasks); len(got) != 1 {
		t.Errorf("restored tasks = %d, want 1", len(got))
	}
	if got := fresh.Settings(); got["theme"] != "dark" {
		t.Errorf("restored settings = %v", got)
	}
}

func TestImportRejectsUnsupportedVersion(t *testing.T) {
	store, svc := testService(t)
	_ = store.Save(models.CollectionTasks, []json.RawMessage{json.RawMessage(`{"id":"keep"}`)})

	data := []byte(`{"version":99,"collections":{"tasks":[{"id":"evil"}]}}`)
	err := svc.ImportAll(data)
	if !errors.Is(err, apperr.ErrUnsupportedVersion) {
		t.Fatalf("err = %v, want ErrUnsupportedVersion", err)
	}
	// Nothing may be written before the version check passes.
	got := store.Get(models.CollectionTasks)
	if len(got) != 1 || string(got[0]) != `{"id":"keep"}` {
		t.Errorf("existing data touched by rejected import: %s", got)
	}
}

func TestImportSkipsUnknownAndMalformedCollections(t *testing.T) {
	store, svc := testService(t)
	data := []byte(`{
		"version": 1,
		"collections": {
			"tasks": [{"id":"1"}],
			"bogus_collection": [{"id":"x"}],
			"habits": "not an array"
		}
	}`)
	if err := svc.ImportAll(data); err != nil {
		t.Fatalf("ImportAll: %v", err)
	}
	if got := store.Get(models.CollectionTasks); len(got) != 1 {
		t.Errorf("tasks = %d, want 1", len(got))
	}
	if _, err := store.Raw("bogus_collection"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("unknown collection was written")
	}
	if _, err := store.Raw(models.CollectionHabits); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("malformed collection was written")
	}
}

func TestImportGarbageFails(t *testing.T) {
	_, svc := testService(t)
	if err := svc.ImportAll([]byte("{not json")); err == nil {
		t.Error("expected parse error")
	}
}

func TestClearAllKeepsSchemaMarker(t *testing.T) {
	store, svc := testService(t)
	_ = store.Save(models.CollectionTasks, []json.RawMessage{json.RawMessage(`{"id":"1"}`)})
	_ = store.SaveSettings(map[string]string{"theme": "dark"})

	if err := svc.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if got := store.Get(models.CollectionTasks); len(got) != 0 {
		t.Errorf("tasks after clear = %d", len(got))
	}
	if got := store.Settings(); len(got) != 0 {
		t.Errorf("settings after clear = %v", got)
	}
	if v := store.GetSchemaVersion(); v != storage.SchemaVersion {
		t.Errorf("schema version = %d, must survive clear", v)
	}
}

func TestUsageStats(t *testing.T) {
	store, svc := testService(t)
	_ = store.Save(models.CollectionTasks, []json.RawMessage{json.RawMessage(`{"id":"1"}`)})

	usage, err := svc.UsageStats()
	if err != nil {
		t.Fatalf("UsageStats: %v", err)
	}
	if usage.UsedBytes == 0 {
		t.Error("used bytes = 0 after a write")
	}
	if usage.Records[models.CollectionTasks] != 1 {
		t.Errorf("task count = %d, want 1", usage.Records[models.CollectionTasks])
	}
	if usage.Records[models.CollectionNotes] != 0 {
		t.Errorf("note count = %d, want 0", usage.Records[models.CollectionNotes])
	}
}

func TestExportTimestampUsesClock(t *testing.T) {
	_, svc := testService(t)
	fixed := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	archive, _ := svc.ExportAll()
	if !archive.ExportedAt.Equal(fixed) {
		t.Errorf("exported at = %v", archive.ExportedAt)
	}
}
