// Package rlog wires the reactor's debug/warning-level logging (the
// executor does not log) onto github.com/joeycumines/logiface, using the log/slog adapter
// (github.com/joeycumines/logiface-slog) as the concrete sink. It is
// deliberately thin: nothing in this module depends on rlog.Logger's
// concrete type beyond Debug/Warning/Err and Log, so swapping the adapter
// (for logiface-zerolog, say) never touches executor or reactor.
package rlog

import (
	"log/slog"
	"os"

	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

// Logger is the type every package in this module accepts via a WithLogger
// option. It is a type alias, not a wrapper, so callers can pass any
// *logiface.Logger[*islog.Event] they've already built (e.g. with extra
// fields bound via Clone) without going through this package at all.
type Logger = *logiface.Logger[*islog.Event]

// Noop returns a Logger with no writer configured, matching logiface's own
// "no-op by default" behaviour: Logger.canWrite() is false, so every
// Debug()/Warning()/Err() call short-circuits before building an event.
// This is the default for reactor.New and reika.New; executor.New takes no
// logger at all.
func Noop() Logger {
	return logiface.New[*islog.Event]()
}

// Default returns a Logger that writes human-readable text to stderr at
// Debug level and above, suitable for local development and examples. It
// is used only when passed in explicitly (e.g. via reika.WithLogger); the
// cmd/ binaries in this module keep the Noop default.
func Default() Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return logiface.New[*islog.Event](
		islog.NewLogger(handler, islog.WithLevel(logiface.LevelTrace)),
		logiface.WithLevel[*islog.Event](logiface.LevelDebug),
	)
}
