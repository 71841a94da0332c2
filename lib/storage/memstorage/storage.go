package memstorage

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ValentinKolb/pocket/lib/common"
	"github.com/ValentinKolb/pocket/lib/storage"
	"github.com/puzpuzpuz/xsync/v3"
)

var _ storage.IDeleteAllKeys = (*memStorageImpl)(nil)

type memStorageImpl struct {
	data *xsync.MapOf[string, string]
	// mu orders writers against each other and against readers, the map keeps readers apart
	mu sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage instance.
// Values are not persisted between process restarts.
func NewMemoryStorage() storage.IStorage {
	return &memStorageImpl{
		data: xsync.NewMapOf[string, string](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (s *memStorageImpl) Put(key string, value string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkConflict(key); err != nil {
		return err
	}
	s.data.Store(key, value)
	return nil
}

func (s *memStorageImpl) Get(key string) (string, bool, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data.Load(key)
	return value, ok, nil
}

func (s *memStorageImpl) Delete(key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Delete(key)
	return nil
}

func (s *memStorageImpl) DeleteAll() error {
	_, err := s.DeleteAllKeys()
	return err
}

// DeleteAllKeys implements storage.IDeleteAllKeys
func (s *memStorageImpl) DeleteAllKeys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.keys()
	s.data.Clear()
	return keys, nil
}

func (s *memStorageImpl) Contains(key string) (bool, error) {
	if err := storage.ValidateKey(key); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data.Load(key)
	return ok, nil
}

func (s *memStorageImpl) ListKeys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.keys(), nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func (s *memStorageImpl) keys() []string {
	keys := make([]string, 0, s.data.Size())
	s.data.Range(func(key string, _ string) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// checkConflict rejects keys below an existing key or above existing keys,
// the same keys a file tree can not hold. The caller holds the write lock.
func (s *memStorageImpl) checkConflict(key string) error {
	for i := strings.Index(key, storage.Separator); i >= 0; i = nextSeparator(key, i) {
		if _, ok := s.data.Load(key[:i]); ok {
			return common.NewStorageError("put", key, fmt.Errorf("key %q holds a value", key[:i]))
		}
	}

	var conflict string
	prefix := key + storage.Separator
	s.data.Range(func(other string, _ string) bool {
		if strings.HasPrefix(other, prefix) {
			conflict = other
			return false
		}
		return true
	})
	if conflict != "" {
		return common.NewStorageError("put", key, fmt.Errorf("key is the parent of %q", conflict))
	}
	return nil
}

// nextSeparator returns the index of the separator after position i, or -1
func nextSeparator(key string, i int) int {
	j := strings.Index(key[i+1:], storage.Separator)
	if j < 0 {
		return -1
	}
	return i + 1 + j
}
