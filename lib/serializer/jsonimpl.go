package serializer

import (
	"encoding/json"
	"reflect"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer[T any]() ISerializer[T] {
	return &jsonSerializerImpl[T]{}
}

// jsonSerializerImpl implements the ISerializer interface using json encoding.
// json replaces invalid utf-8 with U+FFFD, such values are refused with ErrInvalidUTF8.
type jsonSerializerImpl[T any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl[T]) Serialize(value T) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	if err := checkUTF8(reflect.ValueOf(value), ""); err != nil {
		return "", err
	}
	return string(b), nil
}

func (j jsonSerializerImpl[T]) Deserialize(data string) (T, error) {
	var value T
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}
