package internal

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds the audit logger. Format "json" writes one JSON object per event,
// anything else writes human readable console lines.
func NewLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("component", "flad-analysis").Logger()
}
