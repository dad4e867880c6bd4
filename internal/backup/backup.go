// Package backup implements full-archive export and import of every
// persisted collection plus settings, and the storage usage report.
package backup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/opdeck/opdeck/internal/apperr"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// ArchiveVersion is stamped on every export and checked on import.
const ArchiveVersion = 1

// Archive is the portable snapshot format.
type Archive struct {
	Version     int                        `json:"version"`
	ExportedAt  time.Time                  `json:"exported_at"`
	Collections map[string]json.RawMessage `json:"collections"`
	Settings    map[string]string          `json:"settings,omitempty"`
}

// Usage reports how much of the storage budget is in use. BudgetBytes
// is zero when no quota is configured.
type Usage struct {
	UsedBytes   int64          `json:"used_bytes"`
	BudgetBytes int64          `json:"budget_bytes"`
	Records     map[string]int `json:"records"`
}

// Service performs archive operations against one store.
type Service struct {
	store  *storage.Store
	logger *slog.Logger
	now    func() time.Time
}

func New(store *storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// ExportAll snapshots every known collection and the settings map.
// Collections that were never written are omitted from the archive.
func (s *Service) ExportAll() (Archive, error) {
	a := Archive{
		Version:     ArchiveVersion,
		ExportedAt:  s.now(),
		Collections: make(map[string]json.RawMessage),
	}
	for _, key := range models.CollectionKeys() {
		raw, err := s.store.Raw(key)
		if err != nil {
			continue
		}
		a.Collections[key] = raw
	}
	if settings := s.store.Settings(); len(settings) > 0 {
		a.Settings = settings
	}
	return a, nil
}

// ImportAll replaces the current data with the archive's contents.
// Archives from a different format version are rejected before any
// write happens. Unknown collection keys in the archive are skipped
// with a log rather than written.
func (s *Service) ImportAll(data []byte) error {
	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("backup: parse archive: %w", err)
	}
	if a.Version != ArchiveVersion {
		return fmt.Errorf("backup: archive version %d: %w", a.Version, apperr.ErrUnsupportedVersion)
	}

	for key, raw := range a.Collections {
		if !models.KnownCollection(key) {
			s.logger.Warn("backup: skipping unknown collection", slog.String("key", key))
			continue
		}
		var records []json.RawMessage
		if err := json.Unmarshal(raw, &records); err != nil {
			s.logger.Warn("backup: skipping malformed collection",
				slog.String("key", key), slog.Any("error", err))
			continue
		}
		if err := s.store.Save(key, records); err != nil {
			return fmt.Errorf("backup: restore %s: %w", key, err)
		}
	}
	if a.Settings != nil {
		if err := s.store.SaveSettings(a.Settings); err != nil {
			return fmt.Errorf("backup: restore settings: %w", err)
		}
	}
	return nil
}

// ClearAll deletes every known collection and the settings map. The
// schema version marker is left in place.
func (s *Service) ClearAll() error {
	for _, key := range models.CollectionKeys() {
		if err := s.store.Clear(key); err != nil {
			return fmt.Errorf("backup: clear %s: %w", key, err)
		}
	}
	if err := s.store.Clear(storage.SettingsKey); err != nil {
		return fmt.Errorf("backup: clear settings: %w", err)
	}
	return nil
}

// UsageStats reports current byte usage against the configured budget
// and the record count per collection.
func (s *Service) UsageStats() (Usage, error) {
	used, budget, err := s.store.Provider().Usage()
	if err != nil {
		return Usage{}, fmt.Errorf("backup: usage: %w", err)
	}
	counts := make(map[string]int)
	for _, key := range models.CollectionKeys() {
		counts[key] = len(s.store.Get(key))
	}
	return Usage{UsedBytes: used, BudgetBytes: budget, Records: counts}, nil
}
