// Package mirror keeps an in-memory state slice synchronized with one
// record-store collection.
//
// The contract is two-phase: Apply mutates the in-memory state and returns
// immediately; the corresponding full-collection save is attempted in the
// same call, and a failure (quota exhaustion) leaves the state visible but
// not durable. The mirror stays dirty until a later Apply or Flush
// persists successfully; storage is only consulted again at Init or
// Reload, so a restart picks up whatever was last durably saved.
package mirror

import (
	"log/slog"
	"sync"

	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// CommitErrorHandler is invoked when a persist attempt fails after the
// in-memory update has already been applied.
type CommitErrorHandler func(collection string, err error)

// Mirror owns the in-memory state for one collection. All methods are safe
// for concurrent use; within one instance, mutations against a collection
// are strictly ordered by call order.
type Mirror[T models.Identifiable] struct {
	mu      sync.RWMutex
	col     *storage.Collection[T]
	state   []T
	dirty   bool
	logger  *slog.Logger
	onError CommitErrorHandler
}

// Option configures a Mirror.
type Option[T models.Identifiable] func(*Mirror[T])

// WithCommitErrorHandler registers a callback for failed persists.
func WithCommitErrorHandler[T models.Identifiable](h CommitErrorHandler) Option[T] {
	return func(m *Mirror[T]) { m.onError = h }
}

// New creates a Mirror over the given collection. Call Init before use.
func New[T models.Identifiable](col *storage.Collection[T], logger *slog.Logger, opts ...Option[T]) *Mirror[T] {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Mirror[T]{col: col, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init loads the durable collection. When it is empty the seed set is
// adopted verbatim and persisted immediately, so the seed is written once
// and never regenerated on later loads.
func (m *Mirror[T]) Init(seed []T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.col.Get()
	if len(stored) > 0 {
		m.state = stored
		return
	}
	m.state = append([]T(nil), seed...)
	if len(seed) == 0 {
		return
	}
	if err := m.col.Save(m.state); err != nil {
		m.dirty = true
		m.logger.Warn("mirror: seed persist failed",
			slog.String("collection", m.col.Key()), slog.String("error", err.Error()))
		m.notify(err)
	}
}

// Snapshot returns a copy of the current in-memory state.
func (m *Mirror[T]) Snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]T(nil), m.state...)
}

// Find returns the record with the given id from the in-memory state.
func (m *Mirror[T]) Find(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.state {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Apply transforms the in-memory state and persists the result. The
// in-memory update always takes effect; a persist failure marks the mirror
// dirty, invokes the commit-error handler, and is returned so the caller
// can surface a notification. It is never retried automatically — the next
// successful Apply or Flush persists the accumulated state, since every
// save rewrites the full collection.
func (m *Mirror[T]) Apply(fn func([]T) []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = fn(m.state)
	if err := m.col.Save(m.state); err != nil {
		m.dirty = true
		m.logger.Warn("mirror: persist failed, state not durable",
			slog.String("collection", m.col.Key()), slog.String("error", err.Error()))
		m.notify(err)
		return err
	}
	m.dirty = false
	return nil
}

// Dirty reports whether the in-memory state has diverged from storage.
func (m *Mirror[T]) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty
}

// Flush retries persisting the current state when dirty.
func (m *Mirror[T]) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty {
		return nil
	}
	if err := m.col.Save(m.state); err != nil {
		m.notify(err)
		return err
	}
	m.dirty = false
	return nil
}

// Reload replaces the in-memory state with the durable snapshot. Used when
// another instance rewrote the collection file; any undurable local delta
// is discarded (last writer wins).
func (m *Mirror[T]) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = m.col.Get()
	m.dirty = false
}

// Key returns the underlying collection key.
func (m *Mirror[T]) Key() string { return m.col.Key() }

func (m *Mirror[T]) notify(err error) {
	if m.onError != nil {
		m.onError(m.col.Key(), err)
	}
}
