// Package logging builds the zerolog loggers used by the CLI and backend.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultLevel applies when no level is configured.
const DefaultLevel = "info"

// New returns a timestamped logger writing to w at the named level. An
// empty level selects DefaultLevel. When console is set, records are
// rendered for humans instead of as JSON.
func New(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parsing log level %q: %w", level, err)
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
