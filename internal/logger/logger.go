// Package logger wraps charmbracelet/log with the process-wide defaults used
// by xctools. Diagnostics always go to stderr: stdout is reserved for the
// command result.
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type ctxKey struct{}

var defaultLogger = New(DefaultConfig())

// Config holds the logger configuration. AddSource prefixes each record
// with the calling file and line.
type Config struct {
	Level      charmlog.Level
	Output     io.Writer
	JSON       bool
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns the configuration used before flags are parsed.
func DefaultConfig() *Config {
	return &Config{
		Level:      charmlog.WarnLevel,
		Output:     os.Stderr,
		JSON:       false,
		AddSource:  false,
		TimeFormat: "15:04:05",
	}
}

// ParseLevel maps a level name to a charm level. Unknown names fall back to
// warn so a typo never silences errors.
func ParseLevel(name string) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return charmlog.DebugLevel
	case "info":
		return charmlog.InfoLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.WarnLevel
	}
}

// New builds a logger from cfg without touching the package default.
func New(cfg *Config) *charmlog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportCaller:    cfg.AddSource,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           cfg.Level,
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return l
}

// Init replaces the package default logger.
func Init(cfg *Config) {
	defaultLogger = New(cfg)
}

// Default returns the package default logger.
func Default() *charmlog.Logger {
	return defaultLogger
}

// ContextWithLogger stores l in ctx.
func ContextWithLogger(ctx context.Context, l *charmlog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or the package default.
func FromContext(ctx context.Context) *charmlog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*charmlog.Logger); ok && l != nil {
			return l
		}
	}
	return defaultLogger
}

// Debug logs msg on the package default logger.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}
