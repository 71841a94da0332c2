package testing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/ValentinKolb/pocket/lib/common"
	"github.com/ValentinKolb/pocket/lib/storage"
)

// RunStorageTests runs the conformance suite for a storage implementation.
// The factory is called once per sub test and must return an empty storage.
func RunStorageTests(t *testing.T, name string, factory storage.Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, newStorage(t, factory))
		})

		t.Run("Absent", func(t *testing.T) {
			testAbsent(t, newStorage(t, factory))
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, newStorage(t, factory))
		})

		t.Run("Contains", func(t *testing.T) {
			testContains(t, newStorage(t, factory))
		})

		t.Run("DeleteAll", func(t *testing.T) {
			testDeleteAll(t, newStorage(t, factory))
		})

		t.Run("DeleteAllKeys", func(t *testing.T) {
			testDeleteAllKeys(t, newStorage(t, factory))
		})

		t.Run("ListKeys", func(t *testing.T) {
			testListKeys(t, newStorage(t, factory))
		})

		t.Run("HierarchicalKeys", func(t *testing.T) {
			testHierarchicalKeys(t, newStorage(t, factory))
		})

		t.Run("KeyConflicts", func(t *testing.T) {
			testKeyConflicts(t, newStorage(t, factory))
		})

		t.Run("InvalidKeys", func(t *testing.T) {
			testInvalidKeys(t, newStorage(t, factory))
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, newStorage(t, factory))
		})

		t.Run("ConcurrentAccess", func(t *testing.T) {
			testConcurrentAccess(t, newStorage(t, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func newStorage(t *testing.T, factory storage.Factory) storage.IStorage {
	t.Helper()
	s, err := factory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return s
}

func mustPut(t *testing.T, s storage.IStorage, key, value string) {
	t.Helper()
	if err := s.Put(key, value); err != nil {
		t.Fatalf("Put(%q) failed: %v", key, err)
	}
}

func mustGet(t *testing.T, s storage.IStorage, key string) (string, bool) {
	t.Helper()
	value, ok, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return value, ok
}

func sortedKeys(t *testing.T, s storage.IStorage) []string {
	t.Helper()
	keys, err := s.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	sort.Strings(keys)
	return keys
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, s storage.IStorage) {
	mustPut(t, s, "test-key", "test-value1")

	value, ok := mustGet(t, s, "test-key")
	if !ok {
		t.Fatalf("Expected key to exist after Put")
	}
	if value != "test-value1" {
		t.Errorf("Expected value %q, got %q", "test-value1", value)
	}

	mustPut(t, s, "test-key", "test-value2")

	value, ok = mustGet(t, s, "test-key")
	if !ok || value != "test-value2" {
		t.Errorf("Expected overwritten value %q, got %q (exists=%v)", "test-value2", value, ok)
	}
}

func testAbsent(t *testing.T, s storage.IStorage) {
	value, ok := mustGet(t, s, "nonexistent-key")
	if ok {
		t.Errorf("Expected nonexistent key to return loaded=false")
	}
	if value != "" {
		t.Errorf("Expected empty value for nonexistent key, got %q", value)
	}

	has, err := s.Contains("nonexistent-key")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if has {
		t.Errorf("Expected Contains to be false for nonexistent key")
	}
}

func testDelete(t *testing.T, s storage.IStorage) {
	mustPut(t, s, "test-key", "test-value")

	if err := s.Delete("test-key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := mustGet(t, s, "test-key"); ok {
		t.Errorf("Expected key to be gone after Delete")
	}

	// deleting a missing key is a no-op
	if err := s.Delete("test-key"); err != nil {
		t.Errorf("Second Delete should succeed, got %v", err)
	}
	if err := s.Delete("never-written"); err != nil {
		t.Errorf("Delete of missing key should succeed, got %v", err)
	}
}

func testContains(t *testing.T, s storage.IStorage) {
	mustPut(t, s, "test-key", "test-value")

	has, err := s.Contains("test-key")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !has {
		t.Errorf("Expected Contains to be true after Put")
	}

	if err := s.Delete("test-key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	has, err = s.Contains("test-key")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if has {
		t.Errorf("Expected Contains to be false after Delete")
	}
}

func testDeleteAll(t *testing.T, s storage.IStorage) {
	for i := 0; i < 10; i++ {
		mustPut(t, s, fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i))
	}
	mustPut(t, s, "nested/a/b", "deep")

	if err := s.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if keys := sortedKeys(t, s); len(keys) != 0 {
		t.Errorf("Expected no keys after DeleteAll, got %v", keys)
	}

	// the storage stays usable
	mustPut(t, s, "after", "clear")
	if value, ok := mustGet(t, s, "after"); !ok || value != "clear" {
		t.Errorf("Expected storage to be usable after DeleteAll, got %q (exists=%v)", value, ok)
	}

	// clearing an empty storage is fine as well
	if err := s.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if err := s.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll on empty storage failed: %v", err)
	}
}

func testDeleteAllKeys(t *testing.T, s storage.IStorage) {
	expected := []string{"a", "b", "nested/c"}
	for _, key := range expected {
		mustPut(t, s, key, "v")
	}

	removed, err := storage.DeleteAllKeys(s)
	if err != nil {
		t.Fatalf("DeleteAllKeys failed: %v", err)
	}
	sort.Strings(removed)
	if strings.Join(removed, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected removed keys %v, got %v", expected, removed)
	}
	if keys := sortedKeys(t, s); len(keys) != 0 {
		t.Errorf("Expected no keys after DeleteAllKeys, got %v", keys)
	}

	removed, err = storage.DeleteAllKeys(s)
	if err != nil || len(removed) != 0 {
		t.Errorf("Expected nothing removed from an empty storage, got %v (err=%v)", removed, err)
	}
}

// a key can not be a value and the parent of other keys at the same time
func testKeyConflicts(t *testing.T, s storage.IStorage) {
	mustPut(t, s, "a", "leaf")
	if err := s.Put("a/b", "child"); !errors.Is(err, common.ErrStorage) {
		t.Errorf("Expected storage error for a key below a value, got %v", err)
	}

	mustPut(t, s, "x/y", "child")
	if err := s.Put("x", "leaf"); !errors.Is(err, common.ErrStorage) {
		t.Errorf("Expected storage error for a key above other keys, got %v", err)
	}

	// nothing changed
	if value, ok := mustGet(t, s, "a"); !ok || value != "leaf" {
		t.Errorf("Expected a=leaf, got %q (exists=%v)", value, ok)
	}
	if value, ok := mustGet(t, s, "x/y"); !ok || value != "child" {
		t.Errorf("Expected x/y=child, got %q (exists=%v)", value, ok)
	}
	keys := sortedKeys(t, s)
	if strings.Join(keys, ",") != "a,x/y" {
		t.Errorf("Expected keys [a x/y], got %v", keys)
	}

	// once the conflicting key is gone the other one fits
	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	mustPut(t, s, "a/b", "child")
}

func testListKeys(t *testing.T, s storage.IStorage) {
	if keys := sortedKeys(t, s); len(keys) != 0 {
		t.Errorf("Expected empty storage, got %v", keys)
	}

	expected := []string{"alpha", "beta", "gamma"}
	for _, key := range expected {
		mustPut(t, s, key, "v")
	}
	// overwriting must not duplicate keys
	mustPut(t, s, "beta", "v2")

	keys := sortedKeys(t, s)
	if strings.Join(keys, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected keys %v, got %v", expected, keys)
	}
}

func testHierarchicalKeys(t *testing.T, s storage.IStorage) {
	mustPut(t, s, "users/1/name", "ada")
	mustPut(t, s, "users/1/mail", "ada@example.com")
	mustPut(t, s, "users/2/name", "grace")

	if value, ok := mustGet(t, s, "users/1/name"); !ok || value != "ada" {
		t.Errorf("Expected %q, got %q (exists=%v)", "ada", value, ok)
	}

	keys := sortedKeys(t, s)
	expected := []string{"users/1/mail", "users/1/name", "users/2/name"}
	if strings.Join(keys, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected keys %v, got %v", expected, keys)
	}

	// an intermediate path is not a key
	if _, ok := mustGet(t, s, "users/1"); ok {
		t.Errorf("Expected intermediate path not to be a key")
	}
	if has, err := s.Contains("users"); err != nil || has {
		t.Errorf("Expected Contains(users) to be false, got %v (err=%v)", has, err)
	}

	if err := s.Delete("users/2/name"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	keys = sortedKeys(t, s)
	expected = []string{"users/1/mail", "users/1/name"}
	if strings.Join(keys, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected keys %v after delete, got %v", expected, keys)
	}
}

func testInvalidKeys(t *testing.T, s storage.IStorage) {
	invalid := []string{"", "/abs", "trailing/", "a//b", ".", "..", "../escape", "a/../b", ".hidden", "a/.tmp-x", "back\\slash", "nul\x00byte"}

	for _, key := range invalid {
		checks := map[string]error{
			"Put":    s.Put(key, "v"),
			"Delete": s.Delete(key),
		}
		_, _, checks["Get"] = s.Get(key)
		_, checks["Contains"] = s.Contains(key)

		for op, err := range checks {
			if err == nil {
				t.Errorf("%s(%q) should fail", op, key)
				continue
			}
			if !errors.Is(err, common.ErrInvalidKey) {
				t.Errorf("%s(%q) should wrap ErrInvalidKey, got %v", op, key, err)
			}
			if !errors.Is(err, common.ErrStorage) {
				t.Errorf("%s(%q) should be a storage error, got %v", op, key, err)
			}
		}
	}

	if keys := sortedKeys(t, s); len(keys) != 0 {
		t.Errorf("Invalid keys must not be stored, got %v", keys)
	}
}

func testEdgeCases(t *testing.T, s storage.IStorage) {
	// empty value is a present value
	mustPut(t, s, "empty", "")
	if value, ok := mustGet(t, s, "empty"); !ok || value != "" {
		t.Errorf("Expected empty value to exist, got %q (exists=%v)", value, ok)
	}

	// unicode, spaces and large values
	unicode := "wert mit üñíçødé und 空白"
	mustPut(t, s, "unicode key ü", unicode)
	if value, _ := mustGet(t, s, "unicode key ü"); value != unicode {
		t.Errorf("Expected %q, got %q", unicode, value)
	}

	large := strings.Repeat("0123456789abcdef", 64*1024)
	mustPut(t, s, "large", large)
	if value, _ := mustGet(t, s, "large"); value != large {
		t.Errorf("Large value did not round trip (len %d != %d)", len(value), len(large))
	}

	// binary data (e.g. gob output) is stored byte exact
	binary := string([]byte{0x00, 0xff, 0x10, 0x0a, 0x0d})
	mustPut(t, s, "binary", binary)
	if value, _ := mustGet(t, s, "binary"); value != binary {
		t.Errorf("Binary value did not round trip: %x", value)
	}

	// dots inside a segment are fine
	mustPut(t, s, "file.json", "{}")
	if _, ok := mustGet(t, s, "file.json"); !ok {
		t.Errorf("Expected key with inner dot to exist")
	}
}

func testConcurrentAccess(t *testing.T, s storage.IStorage) {
	numWorkers := 8
	opsPerWorker := 50

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	errs := make(chan error, numWorkers*opsPerWorker)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				key := fmt.Sprintf("worker-%d/key-%d", workerId, i)
				hot := fmt.Sprintf("hot-key-%d", i%5)
				if err := s.Put(key, fmt.Sprintf("%d", i)); err != nil {
					errs <- err
				}
				if err := s.Put(hot, fmt.Sprintf("%d-%d", workerId, i)); err != nil {
					errs <- err
				}
				if _, _, err := s.Get(hot); err != nil {
					errs <- err
				}
				if i%3 == 0 {
					if err := s.Delete(key); err != nil {
						errs <- err
					}
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent operation failed: %v", err)
	}

	for w := 0; w < numWorkers; w++ {
		for i := 0; i < opsPerWorker; i++ {
			key := fmt.Sprintf("worker-%d/key-%d", w, i)
			value, ok := mustGet(t, s, key)
			if i%3 == 0 {
				if ok {
					t.Errorf("Expected %s to be deleted", key)
				}
				continue
			}
			if !ok || value != fmt.Sprintf("%d", i) {
				t.Errorf("Expected %s = %d, got %q (exists=%v)", key, i, value, ok)
			}
		}
	}

	for i := 0; i < 5; i++ {
		if _, ok := mustGet(t, s, fmt.Sprintf("hot-key-%d", i)); !ok {
			t.Errorf("Expected hot-key-%d to exist", i)
		}
	}
}
