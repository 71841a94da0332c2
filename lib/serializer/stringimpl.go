package serializer

// NewStringSerializer creates a serializer storing strings as they are
func NewStringSerializer() ISerializer[string] {
	return stringSerializerImpl{}
}

type stringSerializerImpl struct{}

func (stringSerializerImpl) Serialize(value string) (string, error) {
	return value, nil
}

func (stringSerializerImpl) Deserialize(data string) (string, error) {
	return data, nil
}
