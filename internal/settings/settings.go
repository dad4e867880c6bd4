// Package settings manages the flat user-preference map. Writes go
// through a recognized-key filter so a stray client cannot grow the
// settings object with arbitrary entries.
package settings

import (
	"log/slog"

	"github.com/opdeck/opdeck/internal/storage"
)

// Recognized preference keys. Updates carrying other keys are ignored
// with a log.
var recognizedKeys = map[string]struct{}{
	"theme":         {},
	"accent_color":  {},
	"user_name":     {},
	"start_page":    {},
	"week_start":    {},
	"notifications": {},
	"assist_model":  {},
}

// Defaults returned for keys the user has never set.
var defaults = map[string]string{
	"theme":         "dark",
	"accent_color":  "cyan",
	"start_page":    "dashboard",
	"week_start":    "monday",
	"notifications": "on",
}

// Service reads and merges user preferences.
type Service struct {
	store  *storage.Store
	logger *slog.Logger
}

func New(store *storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// All returns the effective settings: defaults overlaid with whatever
// the user has saved.
func (s *Service) All() map[string]string {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range s.store.Settings() {
		out[k] = v
	}
	return out
}

// Get returns one effective setting value, "" when neither set nor
// defaulted.
func (s *Service) Get(key string) string {
	return s.All()[key]
}

// Update shallow-merges the recognized subset of updates over the
// stored settings. Unrecognized keys are dropped, not persisted.
func (s *Service) Update(updates map[string]string) error {
	accepted := make(map[string]string, len(updates))
	for k, v := range updates {
		if _, ok := recognizedKeys[k]; !ok {
			s.logger.Warn("settings: ignoring unrecognized key", slog.String("key", k))
			continue
		}
		accepted[k] = v
	}
	if len(accepted) == 0 {
		return nil
	}
	return s.store.MergeSettings(accepted)
}
