// Package logging builds the structured loggers used by the wick commands.
//
// Loggers are plain *slog.Logger values so the contraction engine can take
// them through gowick.WithLogger without importing this package:
//
//	logger := logging.New(logging.Config{Level: logging.LevelDebug, Service: "wick"})
//	w := gowick.NewWickTheorem(spaces, gowick.WithLogger(logger))
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// =============================================================================
// Log Levels
// =============================================================================

// Level represents log severity levels, ordered Debug < Info < Warn < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", "ERROR", or "UNKNOWN".
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

// ParseLevel reads a level name case-insensitively. Unknown names give
// LevelInfo and false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO", "":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	}
	return LevelInfo, false
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// =============================================================================
// Configuration
// =============================================================================

// Config configures a logger. The zero value writes Info and above to
// stderr as text.
type Config struct {
	Level Level

	// JSON switches the handler to JSON lines.
	JSON bool

	// Service, when set, is attached to every record as "service".
	Service string

	// Output defaults to os.Stderr. Stdout is reserved for results.
	Output io.Writer
}

// =============================================================================
// Constructors
// =============================================================================

func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level.toSlogLevel()}
	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	l := slog.New(h)
	if cfg.Service != "" {
		l = l.With("service", cfg.Service)
	}
	return l
}

// Default is an Info-level text logger on stderr.
func Default() *slog.Logger { return New(Config{}) }

// Nop discards everything.
func Nop() *slog.Logger { return New(Config{Output: io.Discard, Level: LevelError}) }
