package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/lni/dragonboat/v4/logger"
)

// LoggerNames lists every package logger configured by InitLoggers.
var LoggerNames = []string{"pocket", "storage", "bus", "executor", "cli"}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// pocketLogger implements the ILogger interface with custom formatting.
// The level is read on every call and may be changed concurrently.
type pocketLogger struct {
	name  string
	mu    sync.RWMutex
	level logger.LogLevel
}

func (l *pocketLogger) SetLevel(level logger.LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *pocketLogger) enabled(level logger.LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level >= level
}

func (l *pocketLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(logger.DEBUG) {
		l.log("DEBUG", format, args...)
	}
}

func (l *pocketLogger) Infof(format string, args ...interface{}) {
	if l.enabled(logger.INFO) {
		l.log("INFO", format, args...)
	}
}

func (l *pocketLogger) Warningf(format string, args ...interface{}) {
	if l.enabled(logger.WARNING) {
		l.log("WARN", format, args...)
	}
}

func (l *pocketLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(logger.ERROR) {
		l.log("ERROR", format, args...)
	}
}

func (l *pocketLogger) Panicf(format string, args ...interface{}) {
	if l.enabled(logger.CRITICAL) {
		panic(fmt.Sprintf(format, args...))
	}
}

func (l *pocketLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	output.Printf("%-5s | %-10s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

// output is shared by all pocket loggers, log.Logger serializes the writes
var output = log.New(os.Stderr, "", log.Ldate|log.Ltime)

// SetLogOutput redirects all pocket loggers to w, nil means stderr.
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	output.SetOutput(w)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger is a logger.Factory. The loggers write to stderr by default
// (see SetLogOutput), so command output on stdout stays machine readable.
func CreateLogger(pkgName string) logger.ILogger {
	return &pocketLogger{
		name:  pkgName,
		level: logger.WARNING,
	}
}

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

var installFactory sync.Once

// InitLoggers installs CreateLogger as the global factory, sends the output to
// w (nil means stderr) and sets the level of all pocket loggers. It may be
// called again to change level and output. Loggers used before the first
// call keep dragonboat's default logger.
func InitLoggers(level string, w io.Writer) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	// dragonboat panics when the factory is set twice
	installFactory.Do(func() {
		logger.SetLoggerFactory(CreateLogger)
	})
	SetLogOutput(w)
	for _, name := range LoggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
