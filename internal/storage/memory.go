package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Store used by tests and the memory backend.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, collection string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.collections[collection]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Save(_ context.Context, collection string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.collections[collection] = stored
	return nil
}

func (m *Memory) Delete(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections, collection)
	return nil
}

func (m *Memory) Close() error { return nil }
