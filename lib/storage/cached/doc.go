// Package cached provides a read-through LRU cache decorator for any storage.IStorage.
//
// Reads of recently used keys are served from memory (hashicorp/golang-lru),
// everything else is delegated to the wrapped storage. Writes always go to the
// wrapped storage first; the cache is only updated when the write succeeded, so
// the cache never holds a value the storage does not hold.
//
// The decorator assumes it is the only writer of the wrapped storage. Changes
// made behind its back (e.g. by another process editing the data directory)
// are not seen for keys that are currently cached.
//
// Invalid keys are rejected by the wrapped storage; since only keys that were
// successfully read or written are cached, a cache hit implies a valid key.
package cached
