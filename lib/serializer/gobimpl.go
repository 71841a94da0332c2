package serializer

import (
	"bytes"
	"encoding/gob"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format.
// The output is binary, the storage keeps it byte exact.
func NewGOBSerializer[T any]() ISerializer[T] {
	return &gobSerializerImpl[T]{}
}

// gobSerializerImpl implements the ISerializer interface using gob encoding
type gobSerializerImpl[T any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl[T]) Serialize(value T) (string, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (g gobSerializerImpl[T]) Deserialize(data string) (T, error) {
	var value T
	dec := gob.NewDecoder(bytes.NewBufferString(data))
	if err := dec.Decode(&value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}
