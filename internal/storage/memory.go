package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/opdeck/opdeck/internal/apperr"
)

// Memory implements Provider in process memory. It backs tests and makes
// quota exhaustion reproducible via a configurable byte budget.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
	quota  int64
}

// NewMemory creates an in-memory provider. quota of 0 means unlimited.
func NewMemory(quota int64) *Memory {
	return &Memory{values: make(map[string][]byte), quota: quota}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quota > 0 {
		used := int64(0)
		for k, v := range m.values {
			if k == key {
				continue
			}
			used += int64(len(v))
		}
		if used+int64(len(value)) > m.quota {
			return fmt.Errorf("storage: put %s: %w", key, apperr.ErrQuotaExceeded)
		}
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *Memory) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.values))
	for k := range m.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Usage() (int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var used int64
	for _, v := range m.values {
		used += int64(len(v))
	}
	return used, m.quota, nil
}

// SetQuota adjusts the byte budget; tests use this to trigger quota
// exhaustion mid-scenario.
func (m *Memory) SetQuota(quota int64) {
	m.mu.Lock()
	m.quota = quota
	m.mu.Unlock()
}
