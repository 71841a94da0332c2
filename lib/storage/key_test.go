package storage_test

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/pocket/lib/common"
	"github.com/ValentinKolb/pocket/lib/storage"
)

func TestValidateKey(t *testing.T) {
	valid := []string{
		"key",
		"users/42/profile",
		"file.json",
		"with space",
		"ümlaut/日本",
		"a..b",
		"trailing.",
	}
	for _, key := range valid {
		if err := storage.ValidateKey(key); err != nil {
			t.Errorf("ValidateKey(%q) should succeed, got %v", key, err)
		}
	}

	invalid := []string{
		"",
		"/absolute",
		"trailing/",
		"double//slash",
		".",
		"..",
		"../up",
		"down/../up",
		"a/./b",
		".hidden",
		"dir/.tmp-123",
		"win\\path",
		"nul\x00",
	}
	for _, key := range invalid {
		err := storage.ValidateKey(key)
		if err == nil {
			t.Errorf("ValidateKey(%q) should fail", key)
			continue
		}
		if !errors.Is(err, common.ErrInvalidKey) {
			t.Errorf("ValidateKey(%q) should wrap ErrInvalidKey, got %v", key, err)
		}
		if !errors.Is(err, common.ErrStorage) {
			t.Errorf("ValidateKey(%q) should be a storage error, got %v", key, err)
		}
	}
}
