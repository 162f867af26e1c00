package quizzify

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger      = zerolog.Nop()
	verboseMode bool
)

// NewLogger builds a zerolog logger. format "pretty" writes human readable
// console output, anything else writes JSON lines.
func NewLogger(level, format string) zerolog.Logger {
	var writer io.Writer = os.Stderr
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}

// SetLogger sets the logger used by the package.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// SetVerbose sets the global verbose mode
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// VerboseLog logs at debug level, only when verbose mode is enabled
func VerboseLog(format string, v ...interface{}) {
	if verboseMode {
		logger.Debug().Msgf(format, v...)
	}
}
