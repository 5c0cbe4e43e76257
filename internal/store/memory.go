package store

import (
	"sync"
	"time"
)

// Memory is an in-process Settings implementation, used when no database is
// configured and in tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

func (m *Memory) GetString(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e.Value, ok
}

func (m *Memory) GetBool(key string) (bool, bool) {
	v, ok := m.GetString(key)
	if !ok {
		return false, false
	}
	return parseBool(v)
}

func (m *Memory) SetString(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{Key: key, Value: value, UpdatedNs: time.Now().UnixNano()}
	return nil
}

func (m *Memory) SetBool(key string, value bool) error {
	return m.SetString(key, formatBool(value))
}
