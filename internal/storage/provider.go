// Package storage implements the record store: named collections of
// uniquely-identified records persisted as JSON arrays in a key-value
// substrate.
package storage

// Provider is the key-value substrate beneath the record store. Values are
// opaque byte slices; one key holds one collection (or scalar entry).
type Provider interface {
	// Get returns the value stored under key, or apperr.ErrNotFound.
	Get(key string) ([]byte, error)
	// Put replaces the value under key. Fails with apperr.ErrQuotaExceeded
	// when the substrate's capacity budget would be exhausted.
	Put(key string, value []byte) error
	// Delete removes key entirely. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys returns every stored key.
	Keys() ([]string, error)
	// Usage returns total bytes stored and the capacity budget (0 = unlimited).
	Usage() (used, budget int64, err error)
}
