// Package logger holds the structured logger shared by memkit packages.
package logger

import (
	"io"
	"log/slog"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(discard())
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// L returns the active logger. It discards all output until Set is called.
func L() *slog.Logger {
	return current.Load()
}

// Set replaces the active logger. A nil logger restores the discarding default.
func Set(l *slog.Logger) {
	if l == nil {
		l = discard()
	}
	current.Store(l)
}
