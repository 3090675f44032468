package globe

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/globe/pick"
	"github.com/gogpu/globe/render/gpu"
	"github.com/gogpu/globe/updater"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for globe and its sub-packages pick,
// render/gpu and updater. By default globe produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the silent
// default.
//
// Log levels used by globe:
//   - [slog.LevelDebug]: resource allocation, pick results
//   - [slog.LevelInfo]: lifecycle events (context created, fetch completed)
//   - [slog.LevelWarn]: recoverable failures (fetch failed, GPU timeout)
//
// Example:
//
//	globe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	pick.SetLogger(l)
	gpu.SetLogger(l)
	updater.SetLogger(l)
}

// Logger returns the current logger used by globe.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
