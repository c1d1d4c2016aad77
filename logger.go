package dither

import (
	"log/slog"
	"sync/atomic"
)

// newNopLogger creates a logger that silently discards all output.
// Its handler reports every level disabled, so callers skip formatting.
func newNopLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for dither and all its sub-packages.
// By default, dither produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
// Pipelines pick up the logger current at New.
//
// Log levels used by dither:
//   - [slog.LevelDebug]: request and response ids, memo hits, unmatched responses
//   - [slog.LevelInfo]: job start and finish
//   - [slog.LevelWarn]: failed jobs and asset computations
//
// Example:
//
//	// Enable info-level logging to stderr:
//	dither.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	dither.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by dither.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
