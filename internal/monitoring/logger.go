package monitoring

import (
	"io"
	"log"
	"log/slog"
	"sync/atomic"
)

// Logf is the package-level progress logger used while installing and
// configuring lenses. It defaults to log.Printf but may be replaced by
// SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the progress logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

var (
	warnLogger atomic.Pointer[slog.Logger]
	warnCount  atomic.Int64
)

func init() {
	warnLogger.Store(slog.Default())
}

// SetWarnLogger replaces the structured logger that receives geometry
// warnings. Passing nil discards them.
func SetWarnLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	warnLogger.Store(l)
}

// Warn reports a physically suspect but non-fatal condition. args are slog
// key/value pairs.
func Warn(msg string, args ...any) {
	warnCount.Add(1)
	warnLogger.Load().Warn(msg, args...)
}

// WarningCount returns the number of warnings emitted since process start or
// the last ResetWarningCount.
func WarningCount() int64 {
	return warnCount.Load()
}

// ResetWarningCount zeroes the warning counter.
func ResetWarningCount() {
	warnCount.Store(0)
}
