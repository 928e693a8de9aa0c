// Package loopforge composites a dynamically toggled set of post-render image
// effects over frames produced by a live scene source, bakes fixed-length
// seamless loops of the animated result, and encodes them to MP4.
//
// The root package only carries logging configuration shared by every
// sub-package. The interesting pieces live below:
//
//   - loopclock: the ambient loop duration and the frequency quantizer
//   - effects: descriptor table, tier sorter, instance cache, uniform pump,
//     and the frame compositor
//   - effects/dualzone: the masked dual-zone color effect
//   - effects/temporal: trail feedback and god rays (ping-pong targets)
//   - capture: the export state machine (warm-up, capture, assembly, encode)
//   - capture/encode: software H.264 encode + fragmented MP4 mux
//   - engine: the live host loop, window and preview presentation
package loopforge

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards all log records. Enabled returns false so callers skip
// message formatting entirely, making disabled logging effectively free.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// SetLogger configures the logger used by loopforge and all its sub-packages.
// By default loopforge produces no log output. Pass nil to restore the silent
// default. Safe for concurrent use.
//
// Levels used:
//   - slog.LevelDebug: per-frame diagnostics (cache rebuilds, pass timings)
//   - slog.LevelInfo: lifecycle events (export started/finished, resizes)
//   - slog.LevelWarn: non-fatal issues (skipped effect ids, release errors)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the currently configured logger. Never nil.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
