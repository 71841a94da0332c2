// Package storage defines the durable store underneath a pocket: a mapping
// from string keys to opaque text values. The storage neither knows about
// value types nor about encryption; it only guarantees that single key
// writes are atomic and that all operations on one instance are totally ordered.
//
// Key Components:
//
//   - IStorage Interface: The contract every backing store implements (Put, Get,
//     Delete, DeleteAll, Contains, ListKeys). A missing key is a normal result,
//     never an error.
//
//   - Key Model: Keys are "/" separated paths. ValidateKey is the single place
//     deciding which keys are acceptable, so every implementation exposes the
//     same namespace (see ValidateKey for the exact rules).
//
//   - Factory: A function type that creates storages, used to run the shared
//     conformance suite in the storage/testing package against every implementation.
//
// Implementations:
//
//	- File System Storage (fsstorage): one file per key below a root directory,
//	  written via temporary file and atomic rename. This is the durable default.
//
//	- Memory Storage (memstorage): a concurrent map, for tests and ephemeral pockets.
//
// Decorators:
//
//	- Cached Storage (cached): an LRU cache of values in front of another storage.
//
//	- Metered Storage (metered): operation counters and latency histograms.
//
// Errors:
//
//	Implementations report failures as common.Error values with code
//	common.RetCStorageError, the op field naming the failed step (mkdir, write,
//	rename, sync, read, delete, list). A failed sync wraps
//	common.ErrNotSynced: the value was written and is visible, only its flush failed.
package storage
