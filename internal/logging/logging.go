package logging

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DebugEnv enables debug logging when set to a true value
const DebugEnv = "ZEV_DEBUG"

// New returns a console logger writing to w. It is disabled unless debug is set.
func New(debug bool, w io.Writer) zerolog.Logger {
	if !debug {
		return zerolog.Nop()
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(cw).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// DebugEnabled reports whether ZEV_DEBUG is set to a true value
func DebugEnabled() bool {
	return debugValue(os.Getenv(DebugEnv))
}

func debugValue(v string) bool {
	enabled, err := strconv.ParseBool(v)
	return err == nil && enabled
}
