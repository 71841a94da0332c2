package util

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ValentinKolb/pocket/lib/common"
	"github.com/ValentinKolb/pocket/lib/storage"
	"github.com/ValentinKolb/pocket/lib/storage/metered"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("line exceeds %d characters: %q", Wrap, line)
		}
	}
	if WrapString("short") != "short" {
		t.Errorf("expected short text to stay unchanged")
	}
	if got := WrapString("first\nsecond line"); got != "first\nsecond line" {
		t.Errorf("expected line breaks to be kept, got %q", got)
	}
}

func TestOpenPocket(t *testing.T) {
	tests := map[string]func(c *common.Config){
		"Default": func(c *common.Config) {},
		"Cached":  func(c *common.Config) { c.CacheSize = 8 },
		"YAML":    func(c *common.Config) { c.Serializer = common.SerializerYAML },
		"GOB":     func(c *common.Config) { c.Serializer = common.SerializerGOB },
		"Base64":  func(c *common.Config) { c.Encryption = common.EncryptionBase64 },
		"AEAD": func(c *common.Config) {
			c.Encryption = common.EncryptionAEAD
			c.Passphrase = "secret"
		},
		"Serial": func(c *common.Config) { c.Executor = common.ExecutorSerial },
		"Pool":   func(c *common.Config) { c.Executor = common.ExecutorPool },
	}

	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			conf := common.DefaultConfig()
			conf.DataDir = t.TempDir()
			modify(&conf)

			rt, err := OpenPocket(conf, nil)
			if err != nil {
				t.Fatalf("failed to open pocket: %v", err)
			}
			defer rt.Close()

			ctx := context.Background()
			if err := rt.Pocket.Put(ctx, "greeting/en", "hello"); err != nil {
				t.Fatalf("put failed: %v", err)
			}
			value, found, err := rt.Pocket.Get(ctx, "greeting/en")
			if err != nil || !found || value != "hello" {
				t.Errorf("expected hello, got %q (found=%t, err=%v)", value, found, err)
			}

			if _, err := os.Stat(filepath.Join(conf.DataDir, "greeting", "en")); err != nil {
				t.Errorf("expected value file on disk: %v", err)
			}
		})
	}
}

func TestOpenPocketPersists(t *testing.T) {
	conf := common.DefaultConfig()
	conf.DataDir = t.TempDir()
	conf.Encryption = common.EncryptionAEAD
	conf.Passphrase = "secret"
	ctx := context.Background()

	rt, err := OpenPocket(conf, nil)
	if err != nil {
		t.Fatalf("failed to open pocket: %v", err)
	}
	if err := rt.Pocket.Put(ctx, "a", "value"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	rt, err = OpenPocket(conf, nil)
	if err != nil {
		t.Fatalf("failed to reopen pocket: %v", err)
	}
	defer rt.Close()
	if value, found, err := rt.Pocket.Get(ctx, "a"); err != nil || !found || value != "value" {
		t.Errorf("expected value after reopen, got %q (found=%t, err=%v)", value, found, err)
	}

	// a different passphrase can not read the value
	conf.Passphrase = "other"
	other, err := OpenPocket(conf, nil)
	if err != nil {
		t.Fatalf("failed to open pocket: %v", err)
	}
	defer other.Close()
	if _, _, err := other.Pocket.Get(ctx, "a"); err == nil {
		t.Errorf("expected decrypt error with a different passphrase")
	}
}

func TestOpenPocketInvalidConfig(t *testing.T) {
	conf := common.DefaultConfig()
	conf.DataDir = t.TempDir()
	conf.Encryption = common.EncryptionAEAD // no passphrase

	if _, err := OpenPocket(conf, nil); err == nil {
		t.Errorf("expected error for invalid config")
	}
}

func TestOpenPocketWrapStorage(t *testing.T) {
	conf := common.DefaultConfig()
	conf.DataDir = t.TempDir()

	var meter *metered.MeteredStorage
	rt, err := OpenPocket(conf, &Options{
		WrapStorage: func(s storage.IStorage) storage.IStorage {
			meter = metered.NewMeteredStorage(s, nil)
			return meter
		},
	})
	if err != nil {
		t.Fatalf("failed to open pocket: %v", err)
	}
	defer rt.Close()

	if err := rt.Pocket.Put(context.Background(), "a", "1"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if meter.Count("put") != 1 {
		t.Errorf("expected one metered put, got %d", meter.Count("put"))
	}
}

func TestGetSerializerUnknown(t *testing.T) {
	if _, err := GetSerializer("xml"); err == nil {
		t.Errorf("expected error for unknown serializer")
	}
}

func TestOpenPocketExternalChangesSkipsCache(t *testing.T) {
	var logs bytes.Buffer
	if err := common.InitLoggers("info", &logs); err != nil {
		t.Fatalf("InitLoggers failed: %v", err)
	}
	t.Cleanup(func() { _ = common.InitLoggers("warn", nil) })

	conf := common.DefaultConfig()
	conf.DataDir = t.TempDir()
	conf.CacheSize = 8
	ctx := context.Background()

	watching, err := OpenPocket(conf, &Options{ExternalChanges: make(chan string)})
	if err != nil {
		t.Fatalf("failed to open pocket: %v", err)
	}
	defer watching.Close()
	if !strings.Contains(logs.String(), "cache disabled") {
		t.Errorf("Expected the disabled cache to be logged, got %q", logs.String())
	}

	if err := watching.Pocket.Put(ctx, "a", "1"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if _, _, err := watching.Pocket.Get(ctx, "a"); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	// another writer on the same directory
	conf.CacheSize = 0
	other, err := OpenPocket(conf, nil)
	if err != nil {
		t.Fatalf("failed to open pocket: %v", err)
	}
	defer other.Close()
	if err := other.Pocket.Put(ctx, "a", "2"); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if value, _, err := watching.Pocket.Get(ctx, "a"); err != nil || value != "2" {
		t.Errorf("Expected the foreign write to be visible, got %q (err=%v)", value, err)
	}
}
