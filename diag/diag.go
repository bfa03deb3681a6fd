// Package diag holds the scheduler core's off-hot-path diagnostics: a
// structured logger for startup/configuration events and a debug-assertion
// helper for precondition violations (spec.md §7). kernel's entry points
// and the policies' operations call Assert to check their preconditions;
// an assertion that holds returns at once without logging, and the logger
// is written to only when an assertion fails, just before the panic.
package diag

import (
	"fmt"
	"sync/atomic"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the kernel's diagnostic logger. The zero value discards
// everything (logiface's documented no-op-safe zero value), so a kernel
// built without a logger configured is silent rather than panicking.
type Logger = logiface.Logger[*stumpy.Event]

// defaultLogger backs Default(); swappable via SetDefault for tests and for
// embedders that want their own sink.
var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(stumpy.L.New(stumpy.L.WithStumpy()))
}

// Default returns the process-wide diagnostic logger.
func Default() *Logger { return defaultLogger.Load() }

// SetDefault replaces the process-wide diagnostic logger, e.g. to redirect
// it during tests or to a platform-specific sink at startup.
func SetDefault(l *Logger) { defaultLogger.Store(l) }

// Assert panics with a descriptive message if cond is false. Scheduler
// precondition violations (spec.md §7 "debug-time assertion failures;
// undefined behavior otherwise") are not recoverable locally, so this
// reports through Default() for visibility and then panics — mirroring how
// a debug-enabled RTEMS build's _Assert would both report and halt, rather
// than silently corrupting scheduler state.
func Assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	msg := fmt.Sprintf(format, args...)
	Default().Err().Log(msg)
	panic("rtems/scheduler: assertion failed: " + msg)
}
