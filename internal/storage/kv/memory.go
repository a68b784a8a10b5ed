package kv

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process bucket. It backs tests and the session-scoped
// (non-remembered) session storage, which must not outlive the process.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory returns an empty in-memory bucket.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get unmarshals the value under key into result.
func (m *Memory) Get(key string, result any) (bool, error) {
	const op = "kv.Memory.Get"

	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set stores the JSON encoding of value under key.
func (m *Memory) Set(key string, value any) error {
	const op = "kv.Memory.Set"

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m.mu.Lock()
	m.data[key] = string(raw)
	m.mu.Unlock()
	return nil
}

// Delete removes the key.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Keys lists every stored key.
func (m *Memory) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}
