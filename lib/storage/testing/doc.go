// Package testing provides a standardised conformance suite for storage
// implementations that satisfy the storage.IStorage interface.
//
// The suite checks the contract every backing store of a pocket must honour:
// round trips, absence of missing keys, idempotent deletes, hierarchical keys,
// key validation, DeleteAll keeping the store usable and concurrent access.
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() (storage.IStorage, error) {
//		return NewMyStorage()
//	}
//
//	// Running the standard test suite
//	testing.RunStorageTests(t, "MyStorage", factory)
package testing
