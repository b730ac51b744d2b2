package cache

import (
	"context"

	"github.com/rs/zerolog"
)

var cacheLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	cacheLogger = l
}

// Store maps string keys to rendered markup. Eviction and persistence are up to the
// implementation; values are returned exactly as they were stored.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps fragments for the lifetime of the process.
type MemoryStore struct {
	items *Cache[string, []byte]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: NewCache[string, []byte]()}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := m.items.Get(key)
	return val, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.items.Set(key, append([]byte(nil), value...))
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

func (m *MemoryStore) Len() int {
	return m.items.Len()
}

func (m *MemoryStore) Clear() {
	m.items.Clear()
}
