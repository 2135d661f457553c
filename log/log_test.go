// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalHandlerWithAttrs(t *testing.T) {
	out := new(bytes.Buffer)
	var level slog.LevelVar
	level.Set(LevelTrace)
	handler := NewTerminalHandlerWithLevel(out, &level, false).WithAttrs([]slog.Attr{slog.String("baz", "bat")})
	logger := NewLogger(handler)
	logger.Trace("a message", "foo", "bar")

	have := out.String()
	assert.Contains(t, have, "a message")
	assert.Contains(t, have, "baz=bat")
	assert.Contains(t, have, "foo=bar")
	assert.True(t, strings.HasPrefix(have, "[TRACE]"))
}

func TestJSONHandler(t *testing.T) {
	out := new(bytes.Buffer)
	handler := JSONHandler(out)
	logger := slog.New(handler)
	logger.Debug("hi there")
	assert.NotEmpty(t, out.String())

	out.Reset()

	var level slog.LevelVar
	level.Set(LevelInfo)

	handler = JSONHandlerWithLevel(out, &level)
	logger = slog.New(handler)
	logger.Debug("hi there")
	assert.Empty(t, out.String())
}

func TestLoggerOutput(t *testing.T) {
	out := new(bytes.Buffer)
	var level slog.LevelVar
	level.Set(LevelInfo)
	handler := NewTerminalHandlerWithLevel(out, &level, false)
	NewLogger(handler).Info("This is a message", "foo", 123, "bonk", "a string with text")

	have := out.String()
	assert.Contains(t, have, "INFO")
	assert.Contains(t, have, "This is a message")
	assert.Contains(t, have, "foo=123")
	assert.Contains(t, have, `bonk="a string with text"`)
}

func TestWithContext(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewTerminalHandlerWithLevel(out, func() *slog.LevelVar {
		var lv slog.LevelVar
		lv.Set(LevelInfo)
		return &lv
	}(), false)).WithContext("pkg", "server")
	l.Info("listening")

	assert.Contains(t, out.String(), "pkg=server")
}
