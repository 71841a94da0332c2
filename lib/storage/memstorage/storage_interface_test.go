package memstorage

import (
	"testing"

	"github.com/ValentinKolb/pocket/lib/storage"
	storagetesting "github.com/ValentinKolb/pocket/lib/storage/testing"
)

func Test(t *testing.T) {
	storagetesting.RunStorageTests(t, "MemoryStorage", func() (storage.IStorage, error) {
		return NewMemoryStorage(), nil
	})
}

func Benchmark(b *testing.B) {
	storagetesting.RunStorageBenchmarks(b, "MemoryStorage", func() (storage.IStorage, error) {
		return NewMemoryStorage(), nil
	})
}
