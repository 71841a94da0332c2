package storage

import (
	"github.com/hashicorp/go-multierror"
)

// IDeleteAllKeys is implemented by storages able to report which keys a DeleteAll removed.
type IDeleteAllKeys interface {
	// DeleteAllKeys removes every value like DeleteAll and returns the removed keys.
	// The keys are collected under the same lock as the removal, so a concurrent Put
	// is either reported as removed or survives. On partial failure the returned keys
	// are exactly those that are gone, together with the error.
	DeleteAllKeys() (removed []string, err error)
}

// DeleteAllKeys clears s and returns the removed keys.
//
// Storages that do not implement IDeleteAllKeys are cleared key by key: the
// keys are listed and deleted until a listing comes back empty, so every
// removed key is one this function deleted. DeleteAll of such a storage is
// never called. A failed Delete ends the clearing after the current round.
func DeleteAllKeys(s IStorage) ([]string, error) {
	if d, ok := s.(IDeleteAllKeys); ok {
		return d.DeleteAllKeys()
	}

	removed := make([]string, 0)
	for {
		keys, err := s.ListKeys()
		if err != nil {
			return removed, err
		}
		if len(keys) == 0 {
			return removed, nil
		}

		var result *multierror.Error
		for _, key := range keys {
			if err := s.Delete(key); err != nil {
				result = multierror.Append(result, err)
				continue
			}
			removed = append(removed, key)
		}
		if err := result.ErrorOrNil(); err != nil {
			return removed, err
		}
	}
}
