// Package logging builds the process-wide zerolog logger from config.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/winprobe/internal/config"
)

// Logger is a zerolog.Logger that owns its log file, if any.
type Logger struct {
	zerolog.Logger
	file *RotatingFile
}

type Option func(*options)

type options struct {
	console io.Writer
	noColor bool
}

// WithConsoleWriter redirects console output, which defaults to stderr.
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) {
		o.console = w
		o.noColor = true
	}
}

// New creates a logger from cfg. Console output is human readable; file
// output is one JSON object per line and rotates at cfg.MaxSizeMB.
func New(cfg config.LoggingConfig, opts ...Option) (*Logger, error) {
	o := options{console: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        o.console,
			TimeFormat: time.RFC3339,
			NoColor:    o.noColor,
		})
	}

	l := &Logger{}
	if cfg.File != "" {
		f, err := OpenRotatingFile(cfg.File, cfg.MaxSizeMB, cfg.MaxFiles)
		if err != nil {
			return nil, err
		}
		l.file = f
		writers = append(writers, f)
	}

	if len(writers) == 0 {
		l.Logger = zerolog.Nop()
		return l, nil
	}

	l.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return l, nil
}

// Close releases the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel accepts debug, info, warn (or warning) and error.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
}
