package encryption

// IEncryption transforms serialized values on their way to and from the storage.
// The record key is passed along so implementations can bind a ciphertext to
// the key it was written under. Implementations must be safe for concurrent use.
type IEncryption interface {
	// Encrypt transforms the plaintext stored under key
	Encrypt(key string, plaintext string) (string, error)
	// Decrypt reverses Encrypt: Decrypt(k, Encrypt(k, t)) == t
	Decrypt(key string, ciphertext string) (string, error)
}
