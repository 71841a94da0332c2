package serializer

import (
	"gopkg.in/yaml.v3"
)

// NewYAMLSerializer creates a new serializer using yaml encoding
func NewYAMLSerializer[T any]() ISerializer[T] {
	return &yamlSerializerImpl[T]{}
}

// yamlSerializerImpl implements the ISerializer interface using yaml encoding
type yamlSerializerImpl[T any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (y yamlSerializerImpl[T]) Serialize(value T) (string, error) {
	b, err := yaml.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (y yamlSerializerImpl[T]) Deserialize(data string) (T, error) {
	var value T
	if err := yaml.Unmarshal([]byte(data), &value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}
