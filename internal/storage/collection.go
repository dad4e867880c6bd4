package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/opdeck/opdeck/internal/models"
)

// Collection is a typed adapter binding one record type to one store key.
// Reads return fresh copies; mutating a returned slice never persists
// anything implicitly.
type Collection[T models.Identifiable] struct {
	store *Store
	key   string
}

// NewCollection binds a record type to its collection key.
func NewCollection[T models.Identifiable](store *Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// Key returns the collection key.
func (c *Collection[T]) Key() string { return c.key }

// Get decodes the stored collection. Individual undecodable records are
// skipped with a log entry rather than poisoning the whole collection.
func (c *Collection[T]) Get() []T {
	raws := c.store.Get(c.key)
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			c.store.logger.Warn("store: skipping undecodable record",
				slog.String("collection", c.key), slog.String("error", err.Error()))
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Save replaces the whole collection with records.
func (c *Collection[T]) Save(records []T) error {
	raws := make([]json.RawMessage, len(records))
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("store: encode %s record: %w", c.key, err)
		}
		raws[i] = data
	}
	return c.store.Save(c.key, raws)
}

// Add appends one record.
func (c *Collection[T]) Add(record T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("store: encode %s record: %w", c.key, err)
	}
	return c.store.Add(c.key, data)
}

// Update locates the record by id and applies fn to it in place. A missing
// id is a silent no-op.
func (c *Collection[T]) Update(id string, fn func(*T)) error {
	records := c.Get()
	for i := range records {
		if records[i].RecordID() == id {
			fn(&records[i])
			return c.Save(records)
		}
	}
	return nil
}

// Remove filters the record with the given id out of the collection.
func (c *Collection[T]) Remove(id string) error {
	return c.store.Remove(c.key, id)
}

// Clear deletes the collection entry.
func (c *Collection[T]) Clear() error {
	return c.store.Clear(c.key)
}
