package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Bootstrap provides a process-wide default *slog.Logger for the narrow
// window before a component has its own Factory-built Logger available —
// early CLI argument parsing, config-load failures, and daemon fork
// plumbing. It replaces the older standalone global-logger package: soba
// used to carry two parallel logging abstractions (a slog.Handler-based
// Logger here, and a bare *slog.Logger singleton elsewhere); keeping both
// was duplication, not richness, so this is the one survivor of the
// singleton half.
var (
	defaultMu     sync.RWMutex
	defaultLogger *slog.Logger
)

// Default returns the process-wide bootstrap logger, initializing it from
// LOG_LEVEL on first use if nothing has called SetDefault yet.
func Default() *slog.Logger {
	defaultMu.RLock()
	if defaultLogger != nil {
		defer defaultMu.RUnlock()
		return defaultLogger
	}
	defaultMu.RUnlock()

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: ParseLevel(os.Getenv("LOG_LEVEL")),
		}))
	}
	return defaultLogger
}

// SetDefault replaces the bootstrap logger, used once a Factory-built
// handler is available and later callers of Default should see it too.
func SetDefault(l *slog.Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// NewNopLogger returns a Logger that discards everything, for components
// constructed without an explicit Factory-built logger (tests, and code
// paths exercised before config load determines the real output target).
func NewNopLogger() Logger {
	return NewContextLogger(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses a level name (case-insensitive) into a slog.Level,
// defaulting to Info for anything unrecognized or empty.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
