package cached

import (
	"fmt"
	"sync"

	"github.com/ValentinKolb/pocket/lib/storage"
	lru "github.com/hashicorp/golang-lru"
)

var _ storage.IDeleteAllKeys = (*cachedStorageImpl)(nil)

type cachedStorageImpl struct {
	inner storage.IStorage
	cache *lru.Cache
	// mu keeps the cache in step with inner, the lru itself is already thread-safe
	mu sync.Mutex
}

// NewCachedStorage puts an LRU cache holding up to size values in front of inner.
// Only present values are cached, a miss is always answered by inner.
func NewCachedStorage(inner storage.IStorage, size int) (storage.IStorage, error) {
	if inner == nil {
		return nil, fmt.Errorf("cached storage needs an inner storage")
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &cachedStorageImpl{
		inner: inner,
		cache: cache,
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (s *cachedStorageImpl) Put(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inner.Put(key, value); err != nil {
		// the inner state is unknown now
		s.cache.Remove(key)
		return err
	}
	s.cache.Add(key, value)
	return nil
}

func (s *cachedStorageImpl) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.cache.Get(key); ok {
		return value.(string), true, nil
	}

	value, loaded, err := s.inner.Get(key)
	if err != nil || !loaded {
		return value, loaded, err
	}
	s.cache.Add(key, value)
	return value, true, nil
}

func (s *cachedStorageImpl) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.inner.Delete(key)
	s.cache.Remove(key)
	return err
}

func (s *cachedStorageImpl) DeleteAll() error {
	_, err := s.DeleteAllKeys()
	return err
}

// DeleteAllKeys implements storage.IDeleteAllKeys by passing the call on to inner.
func (s *cachedStorageImpl) DeleteAllKeys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := storage.DeleteAllKeys(s.inner)
	// also on partial failure, the survivors are reloaded on demand
	s.cache.Purge()
	return removed, err
}

func (s *cachedStorageImpl) Contains(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache.Contains(key) {
		return true, nil
	}
	return s.inner.Contains(key)
}

func (s *cachedStorageImpl) ListKeys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inner.ListKeys()
}
