// Copyright 2024 The txtabs Authors
// This file is part of the txtabs library.
//
// The txtabs library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The txtabs library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the txtabs library. If not, see <http://www.gnu.org/licenses/>.

// Package txlog is a thin leveled-logging façade over zap, matching the
// teacher's own call-site idiom (log.Trace("message", "key", value, ...))
// rather than zap's native structured-field API.
package txlog

import "go.uber.org/zap"

// Logger wraps a zap.SugaredLogger behind the five call-site methods the
// teacher's core/txpool code uses throughout.
type Logger struct {
	s *zap.SugaredLogger
}

// New builds a production-configured Logger.
func New() *Logger {
	zl, err := zap.NewProduction()
	if err != nil {
		zl = zap.NewNop()
	}
	return &Logger{s: zl.Sugar()}
}

// NewDevelopment builds a human-readable, unsampled Logger suited to
// cmd/txpoolsim and tests.
func NewDevelopment() *Logger {
	zl, err := zap.NewDevelopment()
	if err != nil {
		zl = zap.NewNop()
	}
	return &Logger{s: zl.Sugar()}
}

// Nop returns a Logger that discards everything, for tests that don't
// care about log output.
func Nop() *Logger { return &Logger{s: zap.NewNop().Sugar()} }

// Trace logs the finest-grained diagnostic detail (per-item pool
// bookkeeping); mapped onto zap's Debug level, since zap has no
// dedicated trace level.
func (l *Logger) Trace(msg string, kv ...any) { l.s.Debugw(msg, kv...) }

// Debug logs developer-facing diagnostics.
func (l *Logger) Debug(msg string, kv ...any) { l.s.Debugw(msg, kv...) }

// Info logs routine operational events.
func (l *Logger) Info(msg string, kv ...any) { l.s.Infow(msg, kv...) }

// Warn logs a recoverable but noteworthy condition.
func (l *Logger) Warn(msg string, kv ...any) { l.s.Warnw(msg, kv...) }

// Error logs an operation that failed outright.
func (l *Logger) Error(msg string, kv ...any) { l.s.Errorw(msg, kv...) }

// Sync flushes any buffered log entries; call before process exit.
func (l *Logger) Sync() error { return l.s.Sync() }
