// Package debuglog is a boolean-gated diagnostic sink on top of log/slog.
// A disabled or nil Logger discards everything.
package debuglog

import (
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// Logger writes debug diagnostics when enabled.
type Logger struct {
	enabled bool
	log     *slog.Logger
}

// New returns a logger writing text records to w.
func New(w io.Writer, enabled bool) *Logger {
	if w == nil {
		w = io.Discard
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{enabled: enabled, log: slog.New(h)}
}

// FromQuery returns a logger enabled when rawQuery carries a parameter whose
// name starts with prefix and whose value is not "0" or "false". rawQuery
// may be a bare query string or a full URL.
func FromQuery(w io.Writer, rawQuery, prefix string) *Logger {
	return New(w, QueryEnables(rawQuery, prefix))
}

// QueryEnables reports whether rawQuery switches debugging on for prefix.
func QueryEnables(rawQuery, prefix string) bool {
	if prefix == "" {
		return false
	}
	if u, err := url.Parse(rawQuery); err == nil && u.RawQuery != "" {
		rawQuery = u.RawQuery
	}
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return false
	}
	for name, vals := range values {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		v := ""
		if len(vals) > 0 {
			v = strings.ToLower(vals[len(vals)-1])
		}
		if v != "0" && v != "false" {
			return true
		}
	}
	return false
}

// Enabled reports whether records are written.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// SetEnabled switches the logger on or off.
func (l *Logger) SetEnabled(on bool) {
	if l != nil {
		l.enabled = on
	}
}

// Log writes msg with structured key/value args.
func (l *Logger) Log(msg string, args ...any) {
	if !l.Enabled() {
		return
	}
	l.log.Debug(msg, args...)
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{enabled: l.enabled, log: l.log.With(args...)}
}
