// Package pylog carries the zerolog logger attached to an execution
// context. Disabled by default so embedding a run is silent unless a host
// opts in, matching the teacher interpreter's default of writing nothing
// unless Options.Stdout/Stderr are wired up.
package pylog

import (
	"io"

	"github.com/rs/zerolog"
)

// Disabled returns a logger that drops every event, the default attached
// to a fresh Context.
func Disabled() zerolog.Logger {
	return zerolog.Nop()
}

// New builds a logger writing to w at the given level, for hosts that want
// to observe capability denials (the only event the interpreter logs).
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
