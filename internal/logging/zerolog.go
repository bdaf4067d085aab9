package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseZerologLevel maps a config level onto zerolog, defaulting to info.
func ParseZerologLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewZerolog builds the storage logger. out gets console formatting without
// colours; extra writers such as Graylog get raw JSON.
func NewZerolog(out io.Writer, level string, extra ...io.Writer) zerolog.Logger {
	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		},
	}
	for _, w := range extra {
		if w != nil {
			writers = append(writers, w)
		}
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseZerologLevel(level)).
		With().
		Timestamp().
		Str("component", "storage").
		Logger()
}
