package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
)

// LRUStore is a MemoryStore bounded to a number of fragments. The least
// recently used fragment is evicted first.
type LRUStore struct {
	items *lru.Cache
}

func NewLRUStore(size int) (*LRUStore, error) {
	items, err := lru.NewWithEvict(size, func(key, _ interface{}) {
		cacheLogger.Debug().Interface("key", key).Msg("Evicted fragment")
	})
	if err != nil {
		return nil, err
	}
	return &LRUStore{items: items}, nil
}

func (s *LRUStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (s *LRUStore) Set(_ context.Context, key string, value []byte) error {
	s.items.Add(key, append([]byte(nil), value...))
	return nil
}

func (s *LRUStore) Delete(_ context.Context, key string) error {
	s.items.Remove(key)
	return nil
}

func (s *LRUStore) Len() int {
	return s.items.Len()
}
