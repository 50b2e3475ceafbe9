package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// New creates a logger writing to w at the given level.
// When w is a terminal, output is human-readable instead of JSON.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Event starts an event at level tagged with a dotted event name, like "site.set".
// It returns nil when level is disabled, which zerolog treats as a no-op event.
func Event(logger zerolog.Logger, level zerolog.Level, name string) *zerolog.Event {
	return logger.WithLevel(level).Str("event", name)
}
