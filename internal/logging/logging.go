// Package logging provides the leveled, structured logger shared by the
// twinmark components.
//
// Components never log through a package-level logger. Each one accepts a
// *Logger through a functional option and falls back to Nop, so tests and
// library callers stay silent unless they opt in.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents the severity level of a log message.
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for general informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a string into a Level. Unknown values map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format selects the slog handler used for output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config configures a Logger.
type Config struct {
	// Level is the minimum level written.
	Level Level
	// Format is text or json. Defaults to text.
	Format Format
	// Output is where records are written. Defaults to os.Stderr.
	Output io.Writer
	// OmitTime drops the time attribute, which keeps output stable in tests.
	OmitTime bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// Logger is a leveled logger carrying a component name and fixed fields.
type Logger struct {
	sl *slog.Logger
}

// New creates a logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level.slogLevel()}
	if cfg.OmitTime {
		opts.ReplaceAttr = func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
	}
	var h slog.Handler
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		h = slog.NewTextHandler(cfg.Output, opts)
	}
	return &Logger{sl: slog.New(h)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sl: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// WithComponent returns a logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{sl: l.sl.With(key, value)}
}

// Debug logs a debug message with alternating key/value args.
func (l *Logger) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) { l.sl.Info(msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) { l.sl.Warn(msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) { l.sl.Error(msg, args...) }

// Slog exposes the underlying slog logger.
func (l *Logger) Slog() *slog.Logger { return l.sl }
