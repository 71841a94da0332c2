package cached

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/pocket/lib/storage"
	"github.com/ValentinKolb/pocket/lib/storage/memstorage"
	storagetesting "github.com/ValentinKolb/pocket/lib/storage/testing"
)

func Test(t *testing.T) {
	storagetesting.RunStorageTests(t, "CachedStorage", func() (storage.IStorage, error) {
		return NewCachedStorage(memstorage.NewMemoryStorage(), 16)
	})

	// a cache smaller than the working set exercises eviction
	storagetesting.RunStorageTests(t, "CachedStorage(tiny)", func() (storage.IStorage, error) {
		return NewCachedStorage(memstorage.NewMemoryStorage(), 1)
	})
}

// countingStorage counts the reads reaching the wrapped storage
type countingStorage struct {
	storage.IStorage
	gets   int
	putErr error
}

func (c *countingStorage) Get(key string) (string, bool, error) {
	c.gets++
	return c.IStorage.Get(key)
}

func (c *countingStorage) Put(key string, value string) error {
	if c.putErr != nil {
		return c.putErr
	}
	return c.IStorage.Put(key, value)
}

func TestInvalidSize(t *testing.T) {
	if _, err := NewCachedStorage(memstorage.NewMemoryStorage(), 0); err == nil {
		t.Errorf("Expected error for size 0")
	}
	if _, err := NewCachedStorage(nil, 10); err == nil {
		t.Errorf("Expected error for missing inner storage")
	}
}

func TestReadsAreCached(t *testing.T) {
	inner := &countingStorage{IStorage: memstorage.NewMemoryStorage()}
	s, err := NewCachedStorage(inner, 10)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Put("key", "value"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if value, ok, err := s.Get("key"); err != nil || !ok || value != "value" {
			t.Fatalf("Expected cached value, got %q (exists=%v, err=%v)", value, ok, err)
		}
	}
	if inner.gets != 0 {
		t.Errorf("Expected no reads of the inner storage, got %d", inner.gets)
	}

	// misses are not cached
	for i := 0; i < 3; i++ {
		if _, ok, _ := s.Get("missing"); ok {
			t.Fatalf("Expected missing key to be absent")
		}
	}
	if inner.gets != 3 {
		t.Errorf("Expected 3 reads of the inner storage, got %d", inner.gets)
	}
}

func TestFailedPutKeepsCacheConsistent(t *testing.T) {
	inner := &countingStorage{IStorage: memstorage.NewMemoryStorage()}
	s, err := NewCachedStorage(inner, 10)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Put("key", "old"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	inner.putErr = errors.New("disk full")
	if err := s.Put("key", "new"); err == nil {
		t.Fatalf("Expected Put to fail")
	}
	inner.putErr = nil

	value, ok, err := s.Get("key")
	if err != nil || !ok || value != "old" {
		t.Errorf("Expected old value from the inner storage, got %q (exists=%v, err=%v)", value, ok, err)
	}
}

func TestDeleteAllPurges(t *testing.T) {
	inner := memstorage.NewMemoryStorage()
	s, err := NewCachedStorage(inner, 10)
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"a", "b", "c"} {
		if err := s.Put(key, key); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if err := s.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	for _, key := range []string{"a", "b", "c"} {
		if has, _ := s.Contains(key); has {
			t.Errorf("Expected %s to be gone after DeleteAll", key)
		}
	}
}
