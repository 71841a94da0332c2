package testing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ValentinKolb/pocket/lib/storage"
)

// RunStorageBenchmarks runs the benchmarks for a storage implementation
func RunStorageBenchmarks(b *testing.B, name string, factory storage.Factory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Put", func(b *testing.B) {
			benchmarkPut(b, newBenchStorage(b, factory))
		})

		b.Run("PutLargeValue", func(b *testing.B) {
			benchmarkPutLargeValue(b, newBenchStorage(b, factory))
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, newBenchStorage(b, factory))
		})

		b.Run("Contains(not)", func(b *testing.B) {
			benchmarkContainsNot(b, newBenchStorage(b, factory))
		})

		b.Run("ListKeys", func(b *testing.B) {
			benchmarkListKeys(b, newBenchStorage(b, factory))
		})
	})
}

func newBenchStorage(b *testing.B, factory storage.Factory) storage.IStorage {
	b.Helper()
	s, err := factory()
	if err != nil {
		b.Fatalf("Failed to create storage: %v", err)
	}
	return s
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkPut(b *testing.B, s storage.IStorage) {
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_ = s.Put(fmt.Sprintf("test-key-%d", counter%1000), fmt.Sprintf("test-value-%d", counter))
			counter++
		}
	})
}

func benchmarkPutLargeValue(b *testing.B, s storage.IStorage) {
	value := strings.Repeat("x", 64*1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Put(fmt.Sprintf("large-key-%d", i%100), value)
	}
}

func benchmarkGet(b *testing.B, s storage.IStorage) {
	numKeys := 1000
	for i := 0; i < numKeys; i++ {
		_ = s.Put(fmt.Sprintf("test-key-%d", i), fmt.Sprintf("test-value-%d", i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _, _ = s.Get(fmt.Sprintf("test-key-%d", counter%numKeys))
			counter++
		}
	})
}

func benchmarkContainsNot(b *testing.B, s storage.IStorage) {
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _ = s.Contains(fmt.Sprintf("missing-key-%d", counter))
			counter++
		}
	})
}

func benchmarkListKeys(b *testing.B, s storage.IStorage) {
	for i := 0; i < 100; i++ {
		_ = s.Put(fmt.Sprintf("dir-%d/key-%d", i%10, i), "v")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.ListKeys()
	}
}
