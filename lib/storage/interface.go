package storage

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Factory is a function type that creates a new storage.
// This is used to abstract the creation of the storage from its consumers (e.g. the test suite).
type Factory func() (IStorage, error)

// IStorage is the durable key to opaque text mapping the pocket is built on.
// All write operations return only an error (nil on success),
// while read operations return the requested data along with an error (nil on success).
//
// Implementations must reject keys refused by ValidateKey with a storage error
// wrapping common.ErrInvalidKey, and must serialize all operations on one instance.
type IStorage interface {
	// Put inserts or replaces the value for a key. A reader must never observe a partially written value.
	Put(key string, value string) (err error)
	// Get returns the value for a key. The boolean return value indicates whether a value for the key was found.
	// A missing key is not an error.
	Get(key string) (value string, loaded bool, err error)
	// Delete removes the value for a key. Deleting a missing key is a no-op.
	Delete(key string) (err error)
	// DeleteAll removes every value. The storage itself stays usable.
	DeleteAll() (err error)
	// Contains returns whether a value for the key exists.
	Contains(key string) (loaded bool, err error)
	// ListKeys returns all keys. The ordering is unspecified.
	ListKeys() (keys []string, err error)
}
