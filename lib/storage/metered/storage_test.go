package metered

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ValentinKolb/pocket/lib/storage"
	"github.com/ValentinKolb/pocket/lib/storage/memstorage"
	storagetesting "github.com/ValentinKolb/pocket/lib/storage/testing"
)

func Test(t *testing.T) {
	storagetesting.RunStorageTests(t, "MeteredStorage", func() (storage.IStorage, error) {
		return NewMeteredStorage(memstorage.NewMemoryStorage(), nil), nil
	})
}

func TestCounts(t *testing.T) {
	m := NewMeteredStorage(memstorage.NewMemoryStorage(), nil)

	for i := 0; i < 3; i++ {
		if err := m.Put("key", "value"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if _, _, err := m.Get("key"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	// invalid key, counted as error
	if err := m.Delete("../escape"); err == nil {
		t.Fatalf("Expected Delete to fail")
	}

	if got := m.Count("put"); got != 3 {
		t.Errorf("Expected 3 puts, got %d", got)
	}
	if got := m.Count("get"); got != 1 {
		t.Errorf("Expected 1 get, got %d", got)
	}
	if got := m.Count("delete"); got != 1 {
		t.Errorf("Expected 1 delete, got %d", got)
	}
	if got := m.Errors("delete"); got != 1 {
		t.Errorf("Expected 1 delete error, got %d", got)
	}
	if got := m.Errors("put"); got != 0 {
		t.Errorf("Expected no put errors, got %d", got)
	}
	if got := m.Count("unknown"); got != 0 {
		t.Errorf("Expected 0 for unknown op, got %d", got)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := NewMeteredStorage(memstorage.NewMemoryStorage(), nil)
	_ = m.Put("key", "value")
	_, _ = m.ListKeys()

	var buf bytes.Buffer
	m.WritePrometheus(&buf)
	out := buf.String()

	for _, want := range []string{
		`pocket_storage_ops_total{op="put"} 1`,
		`pocket_storage_ops_total{op="list_keys"} 1`,
		`pocket_storage_errors_total{op="put"} 0`,
		`pocket_storage_op_duration_seconds_bucket{op="put"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}
