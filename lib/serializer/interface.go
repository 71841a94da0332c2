package serializer

// ISerializer converts values of type T to and from their stored text form.
// Implementations must be stateless and safe for concurrent use.
type ISerializer[T any] interface {
	// Serialize converts a value into its text form
	Serialize(value T) (string, error)
	// Deserialize parses data produced by Serialize.
	// Malformed data returns an error, never a partially filled value.
	Deserialize(data string) (T, error)
}
