// Package charmlog adapts github.com/charmbracelet/log to the
// observability.Logger interface used throughout the library.
package charmlog

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wudi/ocrkit/observability"
)

// Options controls logger construction.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Empty means info.
	Level string
	// Prefix is prepended to every line, e.g. "ocrkit".
	Prefix string
}

type charmLogger struct {
	l *log.Logger
}

// New builds a Logger writing to w.
func New(w io.Writer, opts Options) observability.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           parseLevel(opts.Level),
		Prefix:          opts.Prefix,
	})
	return &charmLogger{l: l}
}

// NewStderr builds a Logger writing to standard error.
func NewStderr(opts Options) observability.Logger {
	return New(os.Stderr, opts)
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func keyvals(fields []observability.Field) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key(), f.Value())
	}
	return kv
}

func (c *charmLogger) Debug(msg string, fields ...observability.Field) {
	c.l.Debug(msg, keyvals(fields)...)
}

func (c *charmLogger) Info(msg string, fields ...observability.Field) {
	c.l.Info(msg, keyvals(fields)...)
}

func (c *charmLogger) Warn(msg string, fields ...observability.Field) {
	c.l.Warn(msg, keyvals(fields)...)
}

func (c *charmLogger) Error(msg string, fields ...observability.Field) {
	c.l.Error(msg, keyvals(fields)...)
}

func (c *charmLogger) With(fields ...observability.Field) observability.Logger {
	return &charmLogger{l: c.l.With(keyvals(fields)...)}
}
