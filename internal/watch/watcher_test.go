package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *recorder) record(key string) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
}

func (r *recorder) seen(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

func (r *recorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, k := range r.keys {
		if k == key {
			n++
		}
	}
	return n
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatcher(t *testing.T) (string, *recorder) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = Run(ctx, dir, logger, rec.record)
	}()

	time.Sleep(100 * time.Millisecond)
	return dir, rec
}

func TestWatcherReportsChangedCollection(t *testing.T) {
	dir, rec := startWatcher(t)

	if err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("tasks")
	}, "tasks change not reported")
}

func TestWatcherIgnoresNonCollectionFiles(t *testing.T) {
	dir, rec := startWatcher(t)

	_ = os.WriteFile(filepath.Join(dir, ".opdeck-tmp-123"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "notes.json"), []byte(`[]`), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("notes")
	}, "notes change not reported")

	if rec.seen("readme") || rec.seen(".opdeck-tmp-123") {
		t.Errorf("non-collection files reported: %v", rec.all())
	}
}

func TestWatcherCoalescesWriteBursts(t *testing.T) {
	dir, rec := startWatcher(t)

	path := filepath.Join(dir, "habits.json")
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(path, []byte(`[]`), 0o644)
		time.Sleep(10 * time.Millisecond)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("habits")
	}, "habits change not reported")

	// The burst settles into a single callback.
	time.Sleep(2 * debounce)
	if n := rec.count("habits"); n != 1 {
		t.Errorf("callbacks = %d, want 1", n)
	}
}
