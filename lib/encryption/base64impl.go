package encryption

import (
	"encoding/base64"
)

// NewBase64Encryption returns an encoding that only obfuscates values (standard, padded base64).
// It does not provide any confidentiality, use NewAEADEncryption for that.
func NewBase64Encryption() IEncryption {
	return base64EncryptionImpl{}
}

type base64EncryptionImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see encryption.IEncryption)
// --------------------------------------------------------------------------

func (base64EncryptionImpl) Encrypt(_ string, plaintext string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(plaintext)), nil
}

func (base64EncryptionImpl) Decrypt(_ string, ciphertext string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
