// Package logging provides subsystem-scoped structured loggers on top of zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Console styles accepted by NewWithStyle.
const (
	StylePretty  = "pretty"
	StyleCompact = "compact"
	StyleJSON    = "json"
)

// Logger wraps zerolog to provide subsystem-scoped child loggers.
type Logger struct {
	zl zerolog.Logger
}

// New creates a root logger writing to w at the given level.
// If w is nil, output goes to stderr as pretty console text.
func New(w io.Writer, level string) *Logger {
	return NewWithStyle(w, level, StylePretty)
}

// NewWithStyle creates a root logger with an explicit console style.
// A nil writer means stderr; the style only applies in that case, an
// explicit writer always receives JSON lines.
func NewWithStyle(w io.Writer, level, style string) *Logger {
	if w == nil {
		w = consoleWriter(os.Stderr, style)
	}
	zl := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(level))
	return &Logger{zl: zl}
}

// OpenFile returns a writer that tees console output with an append-only
// JSON log file at path. The returned closer closes the file.
func OpenFile(path, style string) (io.Writer, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return zerolog.MultiLevelWriter(consoleWriter(os.Stderr, style), f), f, nil
}

func consoleWriter(out io.Writer, style string) io.Writer {
	switch style {
	case StyleJSON:
		return out
	case StyleCompact:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: true}
	default:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
}

// Sub returns a child logger tagged with a subsystem name.
func (l *Logger) Sub(subsystem string) *Logger {
	return &Logger{zl: l.zl.With().Str("subsystem", subsystem).Logger()}
}

// With returns a child logger carrying an extra string field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// Zerolog returns the underlying zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

// ValidLevels lists the accepted level names.
var ValidLevels = []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "silent":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
