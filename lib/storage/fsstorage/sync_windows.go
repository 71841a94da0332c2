//go:build windows

package fsstorage

// fsyncDir is a no-op, windows does not support fsync on directories.
func fsyncDir(string) error {
	return nil
}
