// Copyright 2026 The SNFS Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger is the structured-logging layer used by every other
// package in this module (server, client, engine): a package-level
// *slog.Logger backed by a handler that renders either text or JSON with
// a "severity" field at TRACE/DEBUG/INFO/WARNING/ERROR, rotated through
// gopkg.in/natefinch/lumberjack.v2 when writing to a file.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log levels: the four standard slog.Level* constants plus TRACE, which
// sits below slog.LevelDebug. WARNING is rendered spelled out in full
// (not slog's "WARN").
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Severity is the string form of a log level as it appears in config files
// and rendered output.
type Severity string

const (
	SeverityTrace   Severity = "TRACE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
	SeverityOff     Severity = "OFF"
)

// Format selects the rendering of each log line.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	mu              sync.Mutex
	programLevel    = new(slog.LevelVar)
	defaultLogger   = slog.New(newHandler(os.Stderr, programLevel, FormatText, ""))
	closeUnderlying func() error
)

// Options configures Init.
type Options struct {
	Severity Severity
	Format   Format
	// FilePath, if non-empty, routes output through a rotating lumberjack
	// writer instead of stderr.
	FilePath        string
	MaxFileSizeMB   int
	BackupFileCount int
	Compress        bool
	// Prefix is prepended to every rendered message.
	Prefix string
}

// Init (re)configures the package-level logger. Safe to call more than
// once; a prior file-backed writer is closed before a new one is opened.
func Init(o Options) error {
	mu.Lock()
	defer mu.Unlock()

	if closeUnderlying != nil {
		_ = closeUnderlying()
		closeUnderlying = nil
	}

	var w io.Writer = os.Stderr
	if o.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   o.FilePath,
			MaxSize:    o.MaxFileSizeMB,
			MaxBackups: o.BackupFileCount,
			Compress:   o.Compress,
		}
		async := NewAsyncLogger(lj, 1024)
		w = async
		closeUnderlying = async.Close
	}

	setLevel(o.Severity)
	format := o.Format
	if format == "" {
		format = FormatText
	}
	defaultLogger = slog.New(newHandler(w, programLevel, format, o.Prefix))
	return nil
}

func setLevel(sev Severity) {
	switch sev {
	case SeverityTrace:
		programLevel.Set(LevelTrace)
	case SeverityDebug:
		programLevel.Set(LevelDebug)
	case SeverityInfo, "":
		programLevel.Set(LevelInfo)
	case SeverityWarning:
		programLevel.Set(LevelWarn)
	case SeverityError:
		programLevel.Set(LevelError)
	case SeverityOff:
		programLevel.Set(slog.Level(math.MaxInt))
	}
}

func logf(level slog.Level, format string, v ...any) {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	l.Log(context.Background(), level, fmt.Sprintf(format, v...))
}

func Tracef(format string, v ...any) { logf(LevelTrace, format, v...) }
func Debugf(format string, v ...any) { logf(LevelDebug, format, v...) }
func Infof(format string, v ...any)  { logf(LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { logf(LevelWarn, format, v...) }
func Errorf(format string, v ...any) { logf(LevelError, format, v...) }

// Fatalf logs at ERROR and terminates the process.
func Fatalf(format string, v ...any) {
	logf(LevelError, format, v...)
	os.Exit(1)
}

func severityName(l slog.Level) Severity {
	switch {
	case l < LevelDebug:
		return SeverityTrace
	case l < LevelInfo:
		return SeverityDebug
	case l < LevelWarn:
		return SeverityInfo
	case l < LevelError:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// handler renders log records as either:
//
//	text: time="2006/01/02 15:04:05.000" severity=INFO message="..."
//	json: {"timestamp":{"seconds":N,"nanos":N},"severity":"INFO","message":"..."}
//
// It intentionally does not support structured attrs/groups: this engine
// only ever logs formatted strings via Tracef/.../Errorf.
type handler struct {
	out    io.Writer
	level  *slog.LevelVar
	format Format
	prefix string
	mu     *sync.Mutex
}

func newHandler(w io.Writer, level *slog.LevelVar, format Format, prefix string) *handler {
	return &handler{out: w, level: level, format: format, prefix: prefix, mu: &sync.Mutex{}}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	sev := severityName(r.Level)
	msg := h.prefix + r.Message

	var line string
	switch h.format {
	case FormatJSON:
		line = fmt.Sprintf("{\"timestamp\":{\"seconds\":%d,\"nanos\":%d},\"severity\":%q,\"message\":%q}\n",
			r.Time.Unix(), r.Time.Nanosecond(), sev, msg)
	default:
		line = fmt.Sprintf("time=%q severity=%s message=%q\n",
			r.Time.Format("2006/01/02 15:04:05.000"), sev, msg)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line)
	return err
}

func (h *handler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *handler) WithGroup(_ string) slog.Handler      { return h }
