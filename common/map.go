package common

import "sync"

// Map is a concurrent map. It wraps the standard library's map with a mutex for concurrent access.
type Map[K comparable, V any] struct {
	m  map[K]V
	mu sync.RWMutex
}

// NewMap returns a new Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		m: make(map[K]V),
	}
}

// LoadOrStore returns the existing value for k if present.
// Otherwise, it stores and returns the value returned by fn.
func (m *Map[K, V]) LoadOrStore(k K, fn func() V) V {
	m.mu.RLock()
	v, ok := m.m[k]
	m.mu.RUnlock()
	if ok {
		return v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// someone may have stored it between the two locks
	if v, ok = m.m[k]; ok {
		return v
	}
	v = fn()
	m.m[k] = v
	return v
}
