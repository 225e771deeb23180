// backend-go/pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	Log = newLogger(consoleWriter(os.Stdout))
}

func consoleWriter(out io.Writer) io.Writer {
	// Default to console output with color
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Setup configures level and output format ("console" or "json") and
// makes the zerolog/log package logger follow the same settings.
func Setup(levelStr, format string) {
	SetFormat(format, os.Stdout)
	SetLevel(levelStr)
}

// SetFormat switches between colored console output and plain JSON lines
func SetFormat(format string, out io.Writer) {
	level := Log.GetLevel()
	if format == "json" {
		Log = newLogger(out).Level(level)
	} else {
		Log = newLogger(consoleWriter(out)).Level(level)
	}
	log.Logger = Log
}

// SetLevel sets the log level
func SetLevel(levelStr string) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
	log.Logger = Log
}
