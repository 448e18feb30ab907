package slot

import (
	"context"
	"sync"
)

// Memory is a process-local Slot, used for tests and throwaway sessions.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory creates an empty Memory slot.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// Get implements Slot.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put implements Slot.
func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Close implements Slot.
func (m *Memory) Close() error { return nil }
