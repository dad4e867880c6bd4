package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/opdeck/opdeck/internal/apperr"
)

// Reserved entry keys alongside the record collections.
const (
	SettingsKey      = "settings"
	SchemaVersionKey = "schema_version"
)

// SchemaVersion is the storage layout version stamped at init and checked
// on import. It is never consulted to transform existing data.
const SchemaVersion = 1

// Store is the collection layer over a Provider. Each collection is one
// JSON array replaced wholesale on every mutation; mutations are
// read-modify-write and cost O(collection size), which is acceptable for
// the tens-to-hundreds of records a single-user tool accumulates.
//
// Recoverable failures (absent key, malformed JSON, patch of a missing id)
// are absorbed here per the availability-over-strictness policy; only
// capacity exhaustion propagates, so callers can prompt the user to free
// space.
type Store struct {
	provider Provider
	logger   *slog.Logger
}

// New creates a Store and stamps the schema version if absent.
func New(p Provider, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{provider: p, logger: logger}
	if _, err := p.Get(SchemaVersionKey); errors.Is(err, apperr.ErrNotFound) {
		if err := s.SetSchemaVersion(SchemaVersion); err != nil {
			return nil, fmt.Errorf("storage: stamp schema version: %w", err)
		}
	}
	return s, nil
}

// Provider exposes the underlying substrate (used by usage reporting).
func (s *Store) Provider() Provider { return s.provider }

// Get returns the records stored under key. An absent key or unparseable
// value yields an empty list; the failure is logged, never surfaced.
func (s *Store) Get(key string) []json.RawMessage {
	data, err := s.provider.Get(key)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.logger.Warn("store: read failed, treating as empty",
				slog.String("collection", key), slog.String("error", err.Error()))
		}
		return []json.RawMessage{}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("store: malformed collection, treating as empty",
			slog.String("collection", key), slog.String("error", err.Error()))
		return []json.RawMessage{}
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records
}

// Raw returns the serialized collection bytes as stored, or ErrNotFound.
func (s *Store) Raw(key string) ([]byte, error) {
	return s.provider.Get(key)
}

// Save serializes records and replaces the collection. Quota exhaustion is
// returned to the caller as apperr.ErrQuotaExceeded.
func (s *Store) Save(key string, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return s.provider.Put(key, data)
}

// Add appends a record to the collection (read-modify-write).
func (s *Store) Add(key string, record json.RawMessage) error {
	records := s.Get(key)
	records = append(records, record)
	return s.Save(key, records)
}

// Patch merges fields into the record with the given id. A missing id is a
// silent no-op: concurrent-instance deletions make that routine, not an
// error.
func (s *Store) Patch(key, id string, fields map[string]any) error {
	records := s.Get(key)
	for i, raw := range records {
		if recordID(raw) != id {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			s.logger.Warn("store: patch target undecodable",
				slog.String("collection", key), slog.String("id", id))
			return nil
		}
		for k, v := range fields {
			obj[k] = v
		}
		merged, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("store: encode patched record: %w", err)
		}
		records[i] = merged
		return s.Save(key, records)
	}
	return nil
}

// Remove filters the record with the given id out of the collection. When
// the id is absent the stored bytes are left untouched.
func (s *Store) Remove(key, id string) error {
	records := s.Get(key)
	kept := records[:0]
	for _, raw := range records {
		if recordID(raw) != id {
			kept = append(kept, raw)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return s.Save(key, kept)
}

// Clear deletes the collection entry entirely.
func (s *Store) Clear(key string) error {
	return s.provider.Delete(key)
}

// Settings returns the flat settings object, empty when absent or corrupt.
func (s *Store) Settings() map[string]string {
	data, err := s.provider.Get(SettingsKey)
	if err != nil {
		return map[string]string{}
	}
	var out map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		s.logger.Warn("store: malformed settings, treating as empty",
			slog.String("error", err.Error()))
		return map[string]string{}
	}
	return out
}

// SaveSettings replaces the settings object.
func (s *Store) SaveSettings(settings map[string]string) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("store: encode settings: %w", err)
	}
	return s.provider.Put(SettingsKey, data)
}

// MergeSettings applies updates shallowly over the stored settings.
func (s *Store) MergeSettings(updates map[string]string) error {
	current := s.Settings()
	for k, v := range updates {
		current[k] = v
	}
	return s.SaveSettings(current)
}

// GetSchemaVersion returns the stored layout version, 0 when unset.
func (s *Store) GetSchemaVersion() int {
	data, err := s.provider.Get(SchemaVersionKey)
	if err != nil {
		return 0
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return 0
	}
	return v
}

// SetSchemaVersion stamps the layout version.
func (s *Store) SetSchemaVersion(v int) error {
	return s.provider.Put(SchemaVersionKey, []byte(strconv.Itoa(v)))
}

// recordID extracts the id field from a raw record, "" when undecodable.
func recordID(raw json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ID
}
