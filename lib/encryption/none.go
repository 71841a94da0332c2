package encryption

// NewNoEncryption returns the identity transform, the default of every pocket
func NewNoEncryption() IEncryption {
	return noEncryptionImpl{}
}

type noEncryptionImpl struct{}

func (noEncryptionImpl) Encrypt(_ string, plaintext string) (string, error) {
	return plaintext, nil
}

func (noEncryptionImpl) Decrypt(_ string, ciphertext string) (string, error) {
	return ciphertext, nil
}
