//go:build !windows

package fsstorage

import (
	"errors"
	"os"
	"syscall"
)

// fsyncDir flushes renames in dirName to the filesystem.
func fsyncDir(dirName string) error {
	dir, err := os.OpenFile(dirName, os.O_RDONLY, os.ModeDir)
	if err != nil {
		return err
	}
	defer dir.Close()

	// Some network filesystems (e.g. samba mounts in docker) do not support
	// fsync on directories and report EINVAL.
	if err := dir.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
		return err
	}
	return dir.Close()
}
