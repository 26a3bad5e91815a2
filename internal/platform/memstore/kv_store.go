// Package memstore provides a process-local key-value backend. Data lives
// only as long as the process; it is the default for development and tests.
package memstore

import (
	"context"

	"github.com/patrickmn/go-cache"
	"github.com/phrazzld/scry-tutor/internal/store"
)

// KVStore implements store.KeyValueStore on an in-memory cache whose
// entries never expire.
type KVStore struct {
	cache *cache.Cache
}

var _ store.KeyValueStore = (*KVStore)(nil)

// New creates an empty store.
func New() *KVStore {
	return &KVStore{cache: cache.New(cache.NoExpiration, 0)}
}

// Get implements store.KeyValueStore.
func (s *KVStore) Get(_ context.Context, key string) (string, bool, error) {
	if x, found := s.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

// Set implements store.KeyValueStore.
func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}
