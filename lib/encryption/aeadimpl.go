package encryption

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const (
	// aeadPrefix marks the current format of encrypted values
	aeadPrefix = "v1:"

	// KeySize is the length of the secret expected by NewAEADEncryption
	KeySize = chacha20poly1305.KeySize
)

var (
	// ErrWrongKey is returned when a value was encrypted with another secret, under
	// another key or has been modified.
	ErrWrongKey = errors.New("wrong secret or corrupted value")
	// ErrUnknownFormat is returned for values that were not written by the aead encryption.
	ErrUnknownFormat = errors.New("unknown format of encrypted value")
)

// Tunables for scrypt key derivation.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// DeriveKey derives a secret suitable for NewAEADEncryption from a passphrase.
// The salt must stay the same for the lifetime of the data, otherwise existing values can not be decrypted.
func DeriveKey(passphrase, salt string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase must not be empty")
	}
	if salt == "" {
		return nil, fmt.Errorf("salt must not be empty")
	}
	return scrypt.Key([]byte(passphrase), []byte(salt), scryptN, scryptR, scryptP, KeySize)
}

// NewAEADEncryption creates an authenticated encryption using XChaCha20-Poly1305.
//
// Every value is sealed with a fresh random nonce and the record key as associated
// data, so a value copied to another key fails to decrypt. The output has the form
// "v1:" + base64(nonce | ciphertext).
func NewAEADEncryption(secret []byte) (IEncryption, error) {
	aead, err := chacha20poly1305.NewX(secret)
	if err != nil {
		return nil, err
	}
	return &aeadEncryptionImpl{aead: aead}, nil
}

type aeadEncryptionImpl struct {
	aead cipher.AEAD
}

// --------------------------------------------------------------------------
// Interface Methods (docu see encryption.IEncryption)
// --------------------------------------------------------------------------

func (a *aeadEncryptionImpl) Encrypt(key string, plaintext string) (string, error) {
	nonce := make([]byte, a.aead.NonceSize(), a.aead.NonceSize()+len(plaintext)+a.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := a.aead.Seal(nonce, nonce, []byte(plaintext), []byte(key))
	return aeadPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (a *aeadEncryptionImpl) Decrypt(key string, ciphertext string) (string, error) {
	encoded, ok := strings.CutPrefix(ciphertext, aeadPrefix)
	if !ok {
		return "", ErrUnknownFormat
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	if len(sealed) < a.aead.NonceSize()+a.aead.Overhead() {
		return "", fmt.Errorf("%w: value too short", ErrUnknownFormat)
	}

	nonce, ct := sealed[:a.aead.NonceSize()], sealed[a.aead.NonceSize():]
	plaintext, err := a.aead.Open(nil, nonce, ct, []byte(key))
	if err != nil {
		return "", ErrWrongKey
	}
	return string(plaintext), nil
}
