package snapshot

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rzpsarthak13/schema-forge/internal/config"
)

// MemoryStore keeps snapshots in process memory. It is the default backend
// and is used by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type memoryFactory struct{}

func (memoryFactory) Type() string { return "memory" }

func (memoryFactory) Validate(config.SnapshotConfig) error { return nil }

func (memoryFactory) Create(config.SnapshotConfig, *zap.Logger) (Store, error) {
	return NewMemoryStore(), nil
}

func init() {
	RegisterFactory(memoryFactory{})
}
