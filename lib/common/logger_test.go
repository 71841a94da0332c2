package common

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
)

func TestInitLoggers(t *testing.T) {
	var buf bytes.Buffer
	if err := InitLoggers("info", &buf); err != nil {
		t.Fatalf("InitLoggers failed: %v", err)
	}
	t.Cleanup(func() { _ = InitLoggers("warn", nil) })

	l := logger.GetLogger("pocket")
	l.Infof("opened %s", "data")
	l.Debugf("not shown")

	out := buf.String()
	if !strings.Contains(out, "INFO  | pocket     | opened data") {
		t.Errorf("Expected formatted info line, got %q", out)
	}
	if strings.Contains(out, "not shown") {
		t.Errorf("Expected debug line to be filtered, got %q", out)
	}

	// a second call changes the level without installing the factory again
	buf.Reset()
	if err := InitLoggers("error", &buf); err != nil {
		t.Fatalf("InitLoggers failed: %v", err)
	}
	l.Warningf("dropped")
	l.Errorf("kept")
	out = buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "ERROR | pocket     | kept") {
		t.Errorf("Expected only the error line, got %q", out)
	}

	if err := InitLoggers("loud", &buf); err == nil {
		t.Errorf("Expected error for unknown level")
	}
}
