// Copyright (c) 2021 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package log contains the simple logger interface used by the channel
// and transport packages, along with a couple of concrete
// implementations.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// timeFormat is the timestamp format used by the Stdout and File
	// loggers.
	timeFormat = "15:04:05.000"

	DebugLevel = "DEBUG" // Loggers initialized with DebugLevel will output Debugf(), Infof(), Warnf() and Errorf().
	InfoLevel  = "INFO"  // Loggers initialized with InfoLevel will output Infof(), Warnf() and Errorf().
	WarnLevel  = "WARN"  // Loggers initialized with WarnLevel will output Warnf() and Errorf().
	ErrorLevel = "ERROR" // Loggers initialized with ErrorLevel will output Errorf().
)

// Logger is a simple logger interface that can have subloggers scoped
// to a module name. Channel and the stream transport hold one of
// these; they default to Noop when the caller doesn't provide one.
type Logger interface {
	Warnf(msg string, args ...interface{}) error
	Errorf(msg string, args ...interface{}) error
	Infof(msg string, args ...interface{}) error
	Debugf(msg string, args ...interface{}) error
	Sub(module string) Logger
	Close() error
}

type noopLogger struct{}

func (n *noopLogger) Errorf(_ string, _ ...interface{}) error { return nil }
func (n *noopLogger) Warnf(_ string, _ ...interface{}) error  { return nil }
func (n *noopLogger) Infof(_ string, _ ...interface{}) error  { return nil }
func (n *noopLogger) Debugf(_ string, _ ...interface{}) error { return nil }
func (n *noopLogger) Sub(_ string) Logger                     { return n }
func (n *noopLogger) Close() error                            { return nil }

// Noop is a Logger implementation that silently drops everything.
var Noop Logger = &noopLogger{}

var colors = map[string]string{
	InfoLevel:  "\033[36m",
	WarnLevel:  "\033[33m",
	ErrorLevel: "\033[31m",
}

var levelToInt = map[string]int{
	"":         -1,
	DebugLevel: 0,
	InfoLevel:  1,
	WarnLevel:  2,
	ErrorLevel: 3,
}

// sink is the shared destination behind a family of lineLogger values
// produced by repeated Sub() calls. Stdout and File both write through
// one, differing only in whether close() actually tears anything down:
// a stdout sink has no closer and is never considered closed, while a
// file sink refcounts across every logger sharing it and only closes
// the underlying file once the last one calls Close.
type sink struct {
	mu       sync.Mutex
	w        io.Writer
	closer   io.Closer
	refCount int

	// Reopen support, used only by file sinks constructed with
	// reopen=true.
	reopen   bool
	filename string
	openbits int
}

func newFileSink(filename string, openbits int, reopen bool) (*sink, error) {
	f, err := os.OpenFile(filename, openbits, 0644)
	if err != nil {
		return nil, err
	}
	return &sink{w: f, closer: f, refCount: 1, reopen: reopen, filename: filename, openbits: openbits}, nil
}

// acquire returns s, bumping its refcount first if s tracks one. Called
// by lineLogger.Sub so a closed parent doesn't tear down a child still
// in use.
func (s *sink) acquire() *sink {
	if s.closer == nil {
		return s
	}
	s.mu.Lock()
	s.refCount++
	s.mu.Unlock()
	return s
}

func (s *sink) release() error {
	if s.closer == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refCount--
	if s.refCount == 0 {
		return s.closer.Close()
	}
	return nil
}

func (s *sink) write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closer != nil && s.refCount == 0 {
		return fmt.Errorf("logger is closed, cannot send output")
	}

	if s.reopen {
		if _, err := os.Stat(s.filename); err != nil {
			if c, ok := s.w.(io.Closer); ok {
				c.Close()
			}
			if f, err := os.OpenFile(s.filename, s.openbits, 0644); err == nil {
				s.w, s.closer = f, f
			}
		}
	}

	_, err := io.WriteString(s.w, line)
	return err
}

// lineLogger formats leveled, module-tagged text lines and writes them
// through a shared sink. Stdout and File are both backed by this type;
// they differ only in the sink they construct.
type lineLogger struct {
	mod   string
	min   int
	color bool
	sink  *sink
}

func (l *lineLogger) outputf(level, msg string, args ...interface{}) error {
	if !shouldOutput(l.min, level) {
		return nil
	}
	var colorStart, colorReset string
	if l.color {
		colorStart = colors[level]
		colorReset = "\033[0m"
	}
	mod := l.mod
	if mod != "" {
		mod += " "
	}
	line := fmt.Sprintf("%s%s [%s%s] %s%s\n", timestamp(), colorStart, mod, level, fmt.Sprintf(msg, args...), colorReset)
	return l.sink.write(line)
}

// Errorf outputs an error message, regardless of the logger's minimum
// level.
func (l *lineLogger) Errorf(msg string, args ...interface{}) error {
	return l.outputf(ErrorLevel, msg, args...)
}

// Warnf outputs a warning message when the logger's minimum level
// allows it.
func (l *lineLogger) Warnf(msg string, args ...interface{}) error {
	return l.outputf(WarnLevel, msg, args...)
}

// Infof outputs an informational message when the logger's minimum
// level allows it.
func (l *lineLogger) Infof(msg string, args ...interface{}) error {
	return l.outputf(InfoLevel, msg, args...)
}

// Debugf outputs a debug message when the logger's minimum level
// allows it.
func (l *lineLogger) Debugf(msg string, args ...interface{}) error {
	return l.outputf(DebugLevel, msg, args...)
}

// Sub returns a sub-logger tagged with module, nested under this
// logger's own module name and sharing its sink.
func (l *lineLogger) Sub(module string) Logger {
	return &lineLogger{mod: sub(l.mod, module), min: l.min, color: l.color, sink: l.sink.acquire()}
}

func (l *lineLogger) Close() error { return l.sink.release() }

// Stdout returns a Logger that writes to stdout, tagging each line with
// its module and optionally coloring info/warn/error lines cyan,
// yellow and red via ANSI escapes. minLevel is one of DebugLevel,
// InfoLevel, WarnLevel or ErrorLevel.
func Stdout(module string, minLevel string, color bool) Logger {
	return stdoutTo(os.Stdout, module, minLevel, color)
}

// stdoutTo builds a Stdout-shaped Logger writing to an arbitrary
// io.Writer, letting tests assert on formatted output without
// capturing the process's real stdout.
func stdoutTo(w io.Writer, module string, minLevel string, color bool) Logger {
	return &lineLogger{mod: module, min: levelToInt[strings.ToUpper(minLevel)], color: color, sink: &sink{w: w}}
}

// File returns a Logger that writes to filename. Like Stdout, lines are
// tagged with the module name and a timestamp.
//
// When reopen is true, the output file is recreated if it disappears
// underneath the logger, at the cost of a stat() per write — useful
// when an external tool like logrotate manages the file.
//
// When appendMode is true, filename is opened for append; otherwise it
// is truncated.
func File(module, minLevel, filename string, reopen, appendMode bool) (Logger, error) {
	openbits := os.O_CREATE | os.O_WRONLY
	if appendMode {
		openbits |= os.O_APPEND
	} else {
		openbits |= os.O_TRUNC
	}
	s, err := newFileSink(filename, openbits, reopen)
	if err != nil {
		return nil, err
	}
	return &lineLogger{mod: module, min: levelToInt[strings.ToUpper(minLevel)], sink: s}, nil
}

// zerologAdapter lets a host application that already logs through
// zerolog embed this package's Logger interface without maintaining
// two separate log sinks.
type zerologAdapter struct {
	logger zerolog.Logger
	mod    string
}

// Zerolog wraps an existing zerolog.Logger as a Logger, tagging every
// line with a "module" field instead of a bracketed prefix.
func Zerolog(logger zerolog.Logger) Logger {
	return &zerologAdapter{logger: logger}
}

func (z *zerologAdapter) event(level zerolog.Level) *zerolog.Event {
	ev := z.logger.WithLevel(level)
	if z.mod != "" {
		ev = ev.Str("module", z.mod)
	}
	return ev
}

func (z *zerologAdapter) Errorf(msg string, args ...interface{}) error {
	z.event(zerolog.ErrorLevel).Msg(fmt.Sprintf(msg, args...))
	return nil
}

func (z *zerologAdapter) Warnf(msg string, args ...interface{}) error {
	z.event(zerolog.WarnLevel).Msg(fmt.Sprintf(msg, args...))
	return nil
}

func (z *zerologAdapter) Infof(msg string, args ...interface{}) error {
	z.event(zerolog.InfoLevel).Msg(fmt.Sprintf(msg, args...))
	return nil
}

func (z *zerologAdapter) Debugf(msg string, args ...interface{}) error {
	z.event(zerolog.DebugLevel).Msg(fmt.Sprintf(msg, args...))
	return nil
}

func (z *zerologAdapter) Sub(module string) Logger {
	return &zerologAdapter{logger: z.logger, mod: sub(z.mod, module)}
}

func (z *zerologAdapter) Close() error { return nil }

func sub(existing, newMod string) string {
	out := existing
	if out != "" && newMod != "" {
		out += "/"
	}
	out += newMod
	return out
}

func timestamp() string {
	return time.Now().Format(timeFormat)
}

func shouldOutput(loggerLevel int, messageLevel string) bool {
	return levelToInt[messageLevel] >= loggerLevel
}
