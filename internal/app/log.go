package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LogFileName is the log written under log_dir.
const LogFileName = "slim.log"

// logSink is one destination of the log with its own minimum level.
type logSink struct {
	w     io.Writer
	level slog.Leveler
}

// slimHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
//
// Each line is rendered once and written to every sink whose level admits
// the record. Values that would break the tab-separated layout are quoted.
type slimHandler struct {
	sinks []logSink
	opID  string
	attrs []slog.Attr // already prefixed with their group
	group string
}

func (h *slimHandler) Enabled(_ context.Context, level slog.Level) bool {
	for _, s := range h.sinks {
		if level >= s.level.Level() {
			return true
		}
	}
	return false
}

func (h *slimHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	fmt.Fprintf(&buf, "%s\t%s\t%s\t%s", ts, r.Level.String(), h.opID, formatValue(r.Message))

	for _, a := range h.attrs {
		writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, h.group, a)
		return true
	})
	buf.WriteByte('\n')

	for _, s := range h.sinks {
		if r.Level < s.level.Level() {
			continue
		}
		if _, err := s.w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (h *slimHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	for _, a := range attrs {
		prefixed = append(prefixed, slog.Attr{Key: joinKey(h.group, a.Key), Value: a.Value})
	}
	return &slimHandler{sinks: h.sinks, opID: h.opID, attrs: prefixed, group: h.group}
}

func (h *slimHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &slimHandler{sinks: h.sinks, opID: h.opID, attrs: h.attrs, group: joinKey(h.group, name)}
}

func writeAttr(buf *bytes.Buffer, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := joinKey(group, a.Key)
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(buf, key, ga)
		}
		return
	}
	fmt.Fprintf(buf, "\t%s=%s", key, formatValue(a.Value.String()))
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	if key == "" {
		return group
	}
	return group + "." + key
}

func formatValue(s string) string {
	if strings.ContainsAny(s, "\t\n\r\"") {
		return strconv.Quote(s)
	}
	return s
}

// newLogger creates a structured logger that appends every record to
// logDir/slim.log and, when stderr is non-nil, mirrors records at or above
// stderrLevel there.
// It returns the slog.Logger, the open log file (for cleanup), and any error.
func newLogger(logDir string, opID string, stderr io.Writer, stderrLevel slog.Level) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, LogFileName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	sinks := []logSink{{w: f, level: slog.LevelDebug}}
	if stderr != nil {
		sinks = append(sinks, logSink{w: stderr, level: stderrLevel})
	}
	return slog.New(&slimHandler{sinks: sinks, opID: opID}), f, nil
}

// slogAdapter wraps *slog.Logger to satisfy the slim.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
