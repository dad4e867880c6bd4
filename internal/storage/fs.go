package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/opdeck/opdeck/internal/apperr"
)

// keyRe restricts keys to names that map safely onto file names.
var keyRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// FS implements Provider with one JSON file per key under a data directory.
type FS struct {
	root  string // absolute path to the data directory
	quota int64  // byte budget across all entries; 0 = unlimited
}

// NewFS creates an FS provider rooted at dir, creating it if needed.
// quota caps the combined size of all stored values in bytes.
func NewFS(dir string, quota int64) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FS{root: abs, quota: quota}, nil
}

func (f *FS) path(key string) (string, error) {
	if !keyRe.MatchString(key) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(f.root, key+".json"), nil
}

// Get returns the raw value at key, or apperr.ErrNotFound.
func (f *FS) Get(key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

// Put atomically replaces the value at key: tmp file → fsync → rename.
// The quota is checked against the projected total before writing.
func (f *FS) Put(key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if f.quota > 0 {
		used, _, err := f.Usage()
		if err != nil {
			return err
		}
		var prior int64
		if info, statErr := os.Stat(p); statErr == nil {
			prior = info.Size()
		}
		if used-prior+int64(len(value)) > f.quota {
			return fmt.Errorf("storage: put %s: %w", key, apperr.ErrQuotaExceeded)
		}
	}

	tmp, err := os.CreateTemp(f.root, ".opdeck-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(value); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes the entry at key. Absent keys are a no-op.
func (f *FS) Delete(key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored key.
func (f *FS) Keys() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list keys: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".json"))
	}
	return out, nil
}

// Usage returns the combined size of all entries and the quota budget.
func (f *FS) Usage() (int64, int64, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return 0, 0, fmt.Errorf("storage: usage: %w", err)
	}
	var used int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		used += info.Size()
	}
	return used, f.quota, nil
}

// Root returns the absolute data directory path (used by the watcher).
func (f *FS) Root() string { return f.root }

// KeyForFile maps a file name inside the data dir back to its key, or ""
// when the file is not a store entry.
func KeyForFile(name string) string {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, ".json") || strings.HasPrefix(base, ".") {
		return ""
	}
	key := strings.TrimSuffix(base, ".json")
	if !keyRe.MatchString(key) {
		return ""
	}
	return key
}
