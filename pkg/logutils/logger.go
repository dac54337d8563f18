package logutils

import (
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// New returns a logger writing to stderr, so stdout stays clean for
// command output. A terminal gets the console format; anything else
// gets JSON lines. quiet raises the level to error regardless of level.
//
// The level parameter can be one of: debug, info, warn, error, fatal.
func New(level string, quiet bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, err
	}
	if quiet {
		lvl = zerolog.ErrorLevel
	}

	var writer zerolog.LevelWriter
	if term.IsTerminal(int(os.Stderr.Fd())) {
		writer = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		writer = zerolog.MultiLevelWriter(os.Stderr)
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, nil
}
