// Package memstorage implements storage.IStorage entirely in memory. Data is
// not persisted between process restarts.
//
// Values live in an xsync.MapOf guarded by a read-write mutex: readers share
// the read side, every write (Put, Delete, DeleteAll) takes the write side, so
// all operations on one instance are ordered.
//
// The storage enforces the same key rules as the file system storage
// (storage.ValidateKey) and refuses the same hierarchy conflicts: "a" and
// "a/b" can not both hold a value. A Put has to scan the map for keys below the
// new one, which is fine for the small key sets this storage is meant for. That
// makes it a drop-in replacement in tests:
//
//	s := memstorage.NewMemoryStorage()
//	p, err := pocket.NewPocket(pocket.Config[Person]{
//		Storage:    s,
//		Serializer: serializer.NewJSONSerializer[Person](),
//	})
//
// Suitable Use Cases:
//
//	- unit tests of code built on a pocket
//	- ephemeral state that does not need to survive a restart
package memstorage
