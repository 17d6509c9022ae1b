// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

// Package logging provides the small leveled logger used across the
// crashlog package, in the same spirit as github.com/saferwall/pe/log:
// a minimal Logger interface plus a Helper that adds level-prefixed
// convenience methods. Library code defaults to a nil *Helper, which
// discards everything, so importing this module stays silent unless a
// caller opts in.
package logging

import (
	"fmt"
	"io"
	"log"
)

// Level identifies the severity of a log entry.
type Level int

// Severity levels, from most to least verbose.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
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

// Logger is the capability a caller plugs in to observe what the
// collateral manager and the record decoder are doing.
type Logger interface {
	Log(level Level, msg string)
}

// StdLogger writes every entry to the given io.Writer via the
// standard library logger.
type StdLogger struct {
	l *log.Logger
}

// NewStdLogger wraps w in a Logger.
func NewStdLogger(w io.Writer) *StdLogger {
	return &StdLogger{l: log.New(w, "", log.LstdFlags)}
}

// Log implements Logger.
func (s *StdLogger) Log(level Level, msg string) {
	s.l.Printf("[%s] %s", level, msg)
}

// Helper adds printf-style convenience methods on top of a Logger. A
// nil *Helper is valid and discards every call, so library code can
// hold a *Helper by value without checking for nil loggers everywhere.
type Helper struct {
	logger   Logger
	minLevel Level
}

// NewHelper wraps logger. A nil logger produces a Helper that discards
// everything.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// NewFilteredHelper wraps logger, suppressing entries below minLevel.
func NewFilteredHelper(logger Logger, minLevel Level) *Helper {
	return &Helper{logger: logger, minLevel: minLevel}
}

func (h *Helper) log(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil || level < h.minLevel {
		return
	}
	h.logger.Log(level, fmt.Sprintf(format, args...))
}

// Tracef logs at LevelTrace.
func (h *Helper) Tracef(format string, args ...interface{}) { h.log(LevelTrace, format, args...) }

// Debugf logs at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) { h.log(LevelDebug, format, args...) }

// Warnf logs at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) { h.log(LevelWarn, format, args...) }

// Errorf logs at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) { h.log(LevelError, format, args...) }
