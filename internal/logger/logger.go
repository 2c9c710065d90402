package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the root zerolog logger every component derives its child
// logger from.
//   - level: log level string (trace, debug, info, warn, error, fatal, panic);
//     anything unparseable falls back to info
//   - format: "json" for production, "pretty" for human-readable dev output
//
// The returned logger carries a static service field so log aggregation can
// tell this backend apart from the rest of the platform.
func Setup(level, format string) zerolog.Logger {
	var writer io.Writer = os.Stdout
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Str("service", "derslik-backend").
		Logger()
}
