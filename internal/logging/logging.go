// Package logging builds the zerolog logger shared by the client and stores.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// LevelEnv overrides the log level (trace, debug, info, warn, error).
const LevelEnv = "LOG_LEVEL"

// New returns a console logger writing to w. Debug forces debug level;
// otherwise LOG_LEVEL is honoured, defaulting to warn so normal command
// output stays clean.
func New(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if v := os.Getenv(LevelEnv); v != "" {
		if l, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = l
		}
	}
	if debug {
		level = zerolog.DebugLevel
	}

	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006/01/02 15:04:05",
		NoColor:    !isTerminal(w),
		PartsOrder: []string{"level", "time", "message"},
	}
	cw.FormatLevel = func(i any) string {
		l, ok := i.(string)
		if !ok {
			return ""
		}
		return "[" + strings.ToUpper(l) + "]"
	}

	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// Nop returns a disabled logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
