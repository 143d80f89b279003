// Package logging builds the zerolog logger shared by the sync, notify and report binaries.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewRun returns a logger tagged with the binary name and runID.
// format is "json" or "console"; unknown levels fall back to info.
func NewRun(w io.Writer, app, runID, level, format string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("app", app).
		Str("run_id", runID).
		Logger()
}
