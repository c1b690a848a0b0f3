package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the global logger
type Options struct {
	Development bool   // pretty console output instead of JSON
	Level       string // zerolog level name; unknown or empty means info
	File        string // optional rotating log file, written in addition to stderr
}

// Setup configures the zerolog global logger. The returned closer releases the
// log file and is a no-op when no file is configured.
func Setup(opts Options) (io.Closer, error) {
	var console io.Writer = os.Stderr
	if opts.Development {
		console = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	closer := io.Closer(nopCloser{})
	writer := console
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		writer = zerolog.MultiLevelWriter(console, rotating)
		closer = rotating
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	level := ParseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	log.Debug().
		Str("level", level.String()).
		Str("file", opts.File).
		Msg("Logger initialized")

	return closer, nil
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(name string) zerolog.Level {
	if name == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
