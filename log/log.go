// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin, structured-logging wrapper around log/slog,
// adding a small set of named levels (Trace..Crit), a plain-text terminal
// handler for interactive use, and plain logfmt/JSON handlers for
// non-interactive use — the same split the CLI makes via isatty.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Named levels, spaced like go-ethereum's log package so the CLI's 0-5
// verbosity knob maps cleanly onto slog.Level values.
const (
	LevelCrit  = slog.Level(12)
	LevelError = slog.LevelError
	LevelWarn  = slog.LevelWarn
	LevelInfo  = slog.LevelInfo
	LevelDebug = slog.LevelDebug
	LevelTrace = slog.Level(-8)
)

// Logger is the logging type used throughout the module: a wrapper around
// *slog.Logger adding the Trace/Crit convenience methods go-ethereum-style
// code expects.
type Logger struct {
	inner *slog.Logger
}

// NewLogger wraps an slog.Handler into a Logger.
func NewLogger(h slog.Handler) Logger {
	return Logger{inner: slog.New(h)}
}

// Slog exposes the underlying *slog.Logger, for interop with libraries
// that expect one directly.
func (l Logger) Slog() *slog.Logger { return l.inner }

func (l Logger) log(level slog.Level, msg string, args ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	l.inner.Log(context.Background(), level, msg, args...)
}

func (l Logger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args...) }
func (l Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }
func (l Logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args...) }
func (l Logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args...) }
func (l Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// Crit logs at the critical level and terminates the process, mirroring
// the OOM/internal-allocation-failure "fatal" action called for in the
// specification's error-handling design.
func (l Logger) Crit(msg string, args ...any) {
	l.log(LevelCrit, msg, args...)
	os.Exit(1)
}

// WithContext returns a Logger with the given key/value pairs attached to
// every subsequent record, the idiom used across the codebase to build a
// per-package sub-logger: log.WithContext("pkg", "server").
func (l Logger) WithContext(args ...any) Logger {
	return Logger{inner: l.inner.With(args...)}
}

var root = NewLogger(NewTerminalHandler(os.Stderr, true))

// SetDefault replaces the package-level root logger.
func SetDefault(l Logger) { root = l }

// Root returns the package-level root logger.
func Root() Logger { return root }

// WithContext builds a sub-logger of the root logger.
func WithContext(args ...any) Logger { return root.WithContext(args...) }

func Trace(msg string, args ...any) { root.Trace(msg, args...) }
func Debug(msg string, args ...any) { root.Debug(msg, args...) }
func Info(msg string, args ...any)  { root.Info(msg, args...) }
func Warn(msg string, args ...any)  { root.Warn(msg, args...) }
func Error(msg string, args ...any) { root.Error(msg, args...) }
func Crit(msg string, args ...any)  { root.Crit(msg, args...) }
