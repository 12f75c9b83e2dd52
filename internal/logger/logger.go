// Package logger is the daemon's logging façade: printf-style helpers over
// slog with a runtime-adjustable level (app.log_level) and output swap for
// the log-file setup in main.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"log/slog"
)

var (
	levelVar slog.LevelVar
	base     atomic.Pointer[slog.Logger]
)

func init() {
	levelVar.Set(slog.LevelInfo)
	base.Store(newLogger(os.Stdout))
}

func newLogger(w io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: &levelVar})
	return slog.New(handler)
}

// SetOutput redirects all subsequent log lines to w.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	base.Store(newLogger(w))
}

// SetLevel applies an app.log_level config value. Unknown values fall back to
// info rather than failing startup.
func SetLevel(level string) {
	levelVar.Set(parseLevel(level))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Debugf(format string, v ...any) {
	base.Load().Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	base.Load().Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	base.Load().Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	base.Load().Error(fmt.Sprintf(format, v...))
}
