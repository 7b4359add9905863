package glyphatlas

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
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

// SetLogger configures the package-wide logger used by every Cache created
// without WithLogger. By default glyphatlas produces no log output.
//
// SetLogger is safe for concurrent use and takes effect for existing caches.
// Pass nil to restore the silent default.
//
// Log levels used by glyphatlas:
//   - [slog.LevelDebug]: per-update diagnostics and ignored sections
//   - [slog.LevelInfo]: fonts registered, atlas resized
//   - [slog.LevelWarn]: glyphs dropped because the atlas is at its maximum size
//   - [slog.LevelError]: rejected atlas writes
//
// Example:
//
//	glyphatlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current package-wide logger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// globalHandler forwards records to whatever logger SetLogger installed
// last, so caches pick up a logger set after they were created. Attributes
// and groups added through WithAttrs and WithGroup are replayed onto that
// logger's handler for every record.
type globalHandler struct {
	derive []func(slog.Handler) slog.Handler
}

func (g globalHandler) handler() slog.Handler {
	h := Logger().Handler()
	for _, d := range g.derive {
		h = d(h)
	}
	return h
}

func (g globalHandler) with(d func(slog.Handler) slog.Handler) globalHandler {
	return globalHandler{derive: append(slices.Clip(g.derive), d)}
}

func (globalHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return Logger().Handler().Enabled(ctx, level)
}

func (g globalHandler) Handle(ctx context.Context, r slog.Record) error {
	return g.handler().Handle(ctx, r)
}

func (g globalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return g
	}
	attrs = slices.Clone(attrs)
	return g.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (g globalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return g
	}
	return g.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}
