// Package snapshot persists introspected table schemas to a key-value store.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rzpsarthak13/schema-forge/internal/config"
)

var (
	// ErrNotFound is returned when a key is absent from the store.
	ErrNotFound = errors.New("snapshot: key not found")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("snapshot: store is closed")
)

// Store is the key-value surface a snapshot backend has to provide.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Factory creates a Store for one backend type. Each backend registers its
// factory from init.
type Factory interface {
	// Type returns the identifier used in snapshot.type, e.g. "redis".
	Type() string

	// Validate checks the backend specific part of cfg.
	Validate(cfg config.SnapshotConfig) error

	// Create builds a connected Store.
	Create(cfg config.SnapshotConfig, logger *zap.Logger) (Store, error)
}

var (
	factoryRegistry = make(map[string]Factory)
	registryMutex   sync.RWMutex
)

// RegisterFactory registers a store factory. It panics on a nil factory, an
// empty type or a duplicate registration.
func RegisterFactory(factory Factory) {
	if factory == nil {
		panic("snapshot: factory cannot be nil")
	}
	if factory.Type() == "" {
		panic("snapshot: factory type cannot be empty")
	}

	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := factoryRegistry[factory.Type()]; exists {
		panic(fmt.Sprintf("snapshot: factory for type %q is already registered", factory.Type()))
	}
	factoryRegistry[factory.Type()] = factory
}

// Create builds the Store selected by cfg.Type.
func Create(cfg config.SnapshotConfig, logger *zap.Logger) (Store, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("snapshot type is required")
	}

	registryMutex.RLock()
	factory, exists := factoryRegistry[cfg.Type]
	registryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported snapshot store type: %s", cfg.Type)
	}
	if err := factory.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", cfg.Type, err)
	}
	return factory.Create(cfg, logger)
}

// RegisteredTypes returns the registered store types in sorted order.
func RegisteredTypes() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	types := make([]string, 0, len(factoryRegistry))
	for t := range factoryRegistry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
