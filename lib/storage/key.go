package storage

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/pocket/lib/common"
)

// Separator separates the segments of hierarchical keys, independent of the platform.
const Separator = "/"

// ValidateKey checks that a key can be mapped onto a relative path below the
// storage root. A valid key
//   - is not empty and contains no NUL byte or backslash
//   - neither starts nor ends with the separator
//   - has no empty segment and no segment starting with a dot
//
// The last rule rejects "." and ".." (no escaping the root) and keeps dot
// names free for temporary files.
//
// The returned error is a storage error wrapping common.ErrInvalidKey.
func ValidateKey(key string) error {
	if reason := invalidKeyReason(key); reason != "" {
		return common.NewStorageError("validate", key, fmt.Errorf("%w: %s", common.ErrInvalidKey, reason))
	}
	return nil
}

func invalidKeyReason(key string) string {
	if key == "" {
		return "key is empty"
	}
	if strings.ContainsRune(key, 0) {
		return "key contains a NUL byte"
	}
	if strings.Contains(key, "\\") {
		return "key contains a backslash"
	}
	for _, segment := range strings.Split(key, Separator) {
		if segment == "" {
			return "key contains an empty segment"
		}
		if strings.HasPrefix(segment, ".") {
			return fmt.Sprintf("segment %q starts with a dot", segment)
		}
	}
	return ""
}
