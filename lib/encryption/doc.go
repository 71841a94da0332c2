// Package encryption provides the transforms applied between serialization and
// storage. A pocket holds exactly one IEncryption for its whole lifetime and
// passes the record key with every call.
//
// Implementations:
//
//   - NoEncryption: identity, the default.
//
//   - Base64Encryption: standard base64. Keeps binary serializer output (gob)
//     printable, but offers no confidentiality.
//
//   - AEADEncryption: XChaCha20-Poly1305 from golang.org/x/crypto. A random 24 byte
//     nonce is drawn for every value and the record key is authenticated as
//     associated data. Tampered values, values moved to another key and values
//     written with another secret are all rejected with ErrWrongKey.
//
// Secrets for the AEAD encryption are usually derived from a passphrase with
// DeriveKey (scrypt). Pocket stores no metadata next to the values, so the salt
// has to be supplied by the caller and kept stable:
//
//	secret, err := encryption.DeriveKey(passphrase, salt)
//	enc, err := encryption.NewAEADEncryption(secret)
//
// Thread Safety:
//
//	All implementations are safe for concurrent use.
package encryption
