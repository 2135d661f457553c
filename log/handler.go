// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

var levelNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelCrit:  "CRIT",
}

func levelName(l slog.Level) string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return l.String()
}

// terminalHandler writes human-readable log lines. The color setting passed
// to its constructors is stored but not applied: output is always plain
// text.
type terminalHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  *slog.LevelVar
	color  bool
	attrs  []slog.Attr
	prefix string
}

// NewTerminalHandler returns a terminal handler at the default Info level.
func NewTerminalHandler(w io.Writer, useColor bool) slog.Handler {
	var lv slog.LevelVar
	lv.Set(LevelInfo)
	return NewTerminalHandlerWithLevel(w, &lv, useColor)
}

// NewTerminalHandlerWithLevel returns a terminal handler gated by the
// given dynamic level.
func NewTerminalHandlerWithLevel(w io.Writer, level *slog.LevelVar, useColor bool) slog.Handler {
	return &terminalHandler{mu: new(sync.Mutex), w: w, level: level, color: useColor}
}

func (h *terminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 128)
	buf = append(buf, '[')
	buf = append(buf, levelName(r.Level)...)
	buf = append(buf, "] "...)
	buf = writeTimeTermFormat(buf, r.Time)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	for _, a := range attrs {
		buf = append(buf, ' ')
		buf = append(buf, a.Key...)
		buf = append(buf, '=')
		buf = appendFormattedValue(buf, a.Value)
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

func (h *terminalHandler) WithGroup(name string) slog.Handler {
	return h
}

func writeTimeTermFormat(dst []byte, t interface{ AppendFormat([]byte, string) []byte }) []byte {
	return t.AppendFormat(dst, "01-02|15:04:05.000")
}

func appendFormattedValue(buf []byte, v slog.Value) []byte {
	s := fmt.Sprint(v.Any())
	if needsQuoting(s) {
		return append(buf, fmt.Sprintf("%q", s)...)
	}
	return append(buf, s...)
}

func needsQuoting(s string) bool {
	for _, r := range s {
		if r == ' ' || r == '"' || r == '=' || r == '\n' {
			return true
		}
	}
	return len(s) == 0
}

// LogfmtHandler returns a slog.Handler emitting classic key=value logfmt
// lines, gated at LevelInfo by default.
func LogfmtHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: LevelInfo, ReplaceAttr: replaceLevel})
}

// JSONHandler returns a slog.Handler emitting JSON lines at LevelDebug
// (debug lines included, the default used for default-constructed JSON
// loggers).
func JSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: LevelDebug, ReplaceAttr: replaceLevel})
}

// JSONHandlerWithLevel returns a JSON handler gated by a dynamic level.
func JSONHandlerWithLevel(w io.Writer, level *slog.LevelVar) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevel})
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lv, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelName(lv))
		}
	}
	return a
}
