package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

const timeFormat = "2006/01/02 15:04:05.000000"

var (
	std     atomic.Pointer[log.Logger]
	mu      sync.Mutex
	logFile *os.File
)

func init() {
	std.Store(newLogger(os.Stderr, log.InfoLevel))
}

// Init points the logger at the file at path, creating parent directories
// and appending to existing content. An empty or unknown level means info.
func Init(path, level string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return nil
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = f
	std.Store(newLogger(f, parseLevel(level)))
	return nil
}

// SetOutput redirects logging to w, mainly for tests.
func SetOutput(w io.Writer, level string) {
	std.Store(newLogger(w, parseLevel(level)))
}

// Close closes the log file, if open, and falls back to stderr.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return nil
	}
	std.Store(newLogger(os.Stderr, log.InfoLevel))
	err := logFile.Close()
	logFile = nil
	return err
}

// Debugf logs diagnostic messages.
func Debugf(format string, args ...any) { std.Load().Debugf(format, args...) }

// Infof logs informational messages.
func Infof(format string, args ...any) { std.Load().Infof(format, args...) }

// Warnf logs warnings.
func Warnf(format string, args ...any) { std.Load().Warnf(format, args...) }

// Errorf logs errors.
func Errorf(format string, args ...any) { std.Load().Errorf(format, args...) }

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           level,
	})
}

func parseLevel(s string) log.Level {
	if s == "" {
		return log.InfoLevel
	}
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
