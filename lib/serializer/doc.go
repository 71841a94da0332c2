// Package serializer converts typed values to and from the text form kept by
// a storage. A pocket holds exactly one serializer for its whole lifetime.
//
// Key Components:
//
//   - ISerializer[T]: Core interface that all serializer implementations must satisfy.
//
//   - jsonSerializerImpl: encoding/json. Human readable files, the default choice.
//
//   - yamlSerializerImpl: gopkg.in/yaml.v3. Human readable and easy to edit by hand.
//
//   - gobSerializerImpl: encoding/gob. Compact binary output; the files are not
//     meant to be read by humans. Like the other formats it relies on exported fields.
//
//   - stringSerializerImpl: identity for plain strings.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	s := serializer.NewJSONSerializer[Person]()
//	data, err := s.Serialize(Person{Name: "Ada"})
//	// ... store data ...
//	p, err := s.Deserialize(data)
package serializer
