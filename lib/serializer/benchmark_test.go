package serializer

import (
	"testing"
)

// BenchmarkSerialize benchmarks serialization for all implementations
func BenchmarkSerialize(b *testing.B) {
	values := testValues()
	value := values[len(values)-1]

	for name, factory := range testSerializers {
		b.Run(name, func(b *testing.B) {
			serializer := factory()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := serializer.Serialize(value); err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}
			}
		})
	}
}

// BenchmarkDeserialize benchmarks deserialization for all implementations
func BenchmarkDeserialize(b *testing.B) {
	values := testValues()
	value := values[len(values)-1]

	for name, factory := range testSerializers {
		b.Run(name, func(b *testing.B) {
			serializer := factory()
			data, err := serializer.Serialize(value)
			if err != nil {
				b.Fatalf("Failed to serialize: %v", err)
			}
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := serializer.Deserialize(data); err != nil {
					b.Fatalf("Failed to deserialize: %v", err)
				}
			}
		})
	}
}
