package fsstorage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/ValentinKolb/pocket/lib/common"
	"github.com/ValentinKolb/pocket/lib/storage"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("storage")

// tmpPrefix marks temporary files. Keys can never start a segment with a dot,
// so temporary files never collide with keys and are skipped when listing.
const tmpPrefix = ".tmp-"

// rename and syncDir are the final steps of Put (package variables for fault injection in tests)
var (
	rename  = os.Rename
	syncDir = fsyncDir
)

// Options configures the file system storage
type Options struct {
	DirPerm  os.FileMode // Permission of created directories
	FilePerm os.FileMode // Permission of value files
	Sync     bool        // fsync value files and their directory on every Put
}

// DefaultOptions returns the default options (no fsync)
func DefaultOptions() *Options {
	return &Options{
		DirPerm:  0o755,
		FilePerm: 0o600,
		Sync:     false,
	}
}

var _ storage.IDeleteAllKeys = (*fsStorageImpl)(nil)

type fsStorageImpl struct {
	root string
	opts Options
	mu   sync.Mutex
}

// NewFileSystemStorage creates a storage which stores every key as a file below root.
// The root directory is created if it does not exist. opts may be nil.
func NewFileSystemStorage(root string, opts *Options) (storage.IStorage, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, common.NewStorageError("mkdir", "", err)
	}
	if err := os.MkdirAll(absRoot, opts.DirPerm); err != nil {
		return nil, common.NewStorageError("mkdir", "", err)
	}

	Logger.Debugf("opened file system storage at %s", absRoot)
	return &fsStorageImpl{
		root: absRoot,
		opts: *opts,
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (s *fsStorageImpl) Put(key string, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, s.opts.DirPerm); err != nil {
		return common.NewStorageError("mkdir", key, err)
	}

	tmp, err := s.writeTemp(dir, value)
	if err != nil {
		return common.NewStorageError("write", key, err)
	}

	if err := rename(tmp, path); err != nil {
		s.removeTemp(tmp)
		return common.NewStorageError("rename", key, err)
	}

	// the new value is visible from here on, a failed flush only costs durability
	if s.opts.Sync {
		if err := syncDir(dir); err != nil {
			Logger.Warningf("could not sync directory of %s: %v", key, err)
			return common.NewStorageError("sync", key, fmt.Errorf("%w: %v", common.ErrNotSynced, err))
		}
	}
	return nil
}

func (s *fsStorageImpl) Get(key string) (string, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ok, err := isRegularFile(path); err != nil {
		return "", false, common.NewStorageError("read", key, err)
	} else if !ok {
		return "", false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, common.NewStorageError("read", key, err)
	}
	return string(data), true, nil
}

func (s *fsStorageImpl) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ok, err := isRegularFile(path); err != nil {
		return common.NewStorageError("delete", key, err)
	} else if !ok {
		return nil
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return common.NewStorageError("delete", key, err)
	}

	s.pruneEmptyDirs(filepath.Dir(path))
	return nil
}

func (s *fsStorageImpl) DeleteAll() error {
	_, err := s.DeleteAllKeys()
	return err
}

// DeleteAllKeys implements storage.IDeleteAllKeys
func (s *fsStorageImpl) DeleteAllKeys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.listKeys()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return keys, nil
		}
		return nil, common.NewStorageError("delete", "", err)
	}

	var result *multierror.Error
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		Logger.Warningf("delete all in %s failed partially: %v", s.root, err)
		removed := make([]string, 0, len(keys))
		for _, key := range keys {
			if ok, serr := isRegularFile(filepath.Join(s.root, filepath.FromSlash(key))); serr == nil && !ok {
				removed = append(removed, key)
			}
		}
		return removed, common.NewStorageError("delete", "", err)
	}
	return keys, nil
}

func (s *fsStorageImpl) Contains(key string) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := isRegularFile(path)
	if err != nil {
		return false, common.NewStorageError("read", key, err)
	}
	return ok, nil
}

func (s *fsStorageImpl) ListKeys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listKeys()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// listKeys walks the tree below the root, the caller holds the lock
func (s *fsStorageImpl) listKeys() ([]string, error) {
	keys := make([]string, 0)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.root {
				return fs.SkipAll
			}
			return err
		}

		if path == s.root {
			return nil
		}

		// temp files and anything else no key could map to
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, common.NewStorageError("list", "", err)
	}
	return keys, nil
}

// path maps a key to its file path below the root
func (s *fsStorageImpl) path(key string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", err
	}
	path := filepath.Join(s.root, filepath.FromSlash(key))

	// ValidateKey already rules out traversal, this only guards against platform surprises
	if rel, err := filepath.Rel(s.root, path); err != nil || strings.HasPrefix(rel, "..") {
		return "", common.NewStorageError("validate", key, fmt.Errorf("%w: key escapes the storage root", common.ErrInvalidKey))
	}
	return path, nil
}

// writeTemp writes value into a new, uniquely named file in dir and returns its path.
// The file is flushed and closed when writeTemp returns without error.
func (s *fsStorageImpl) writeTemp(dir, value string) (string, error) {
	name := filepath.Join(dir, tmpPrefix+uuid.NewString())
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.opts.FilePerm)
	if err != nil {
		return "", err
	}

	if _, err := f.WriteString(value); err != nil {
		_ = f.Close()
		s.removeTemp(name)
		return "", err
	}
	if s.opts.Sync {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			s.removeTemp(name)
			return "", err
		}
	}
	if err := f.Close(); err != nil {
		s.removeTemp(name)
		return "", err
	}
	return name, nil
}

// removeTemp removes a temporary file (best effort)
func (s *fsStorageImpl) removeTemp(name string) {
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		Logger.Warningf("could not remove temporary file %s: %v", name, err)
	}
}

// pruneEmptyDirs removes dir and its empty parents, stopping at the root
func (s *fsStorageImpl) pruneEmptyDirs(dir string) {
	for dir != s.root && strings.HasPrefix(dir, s.root) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// isRegularFile reports whether path is a regular file, a missing path is not an error
func isRegularFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
