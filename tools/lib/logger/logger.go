// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package logger provides a leveled logger carried in a context.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"go.webgpu.dev/dawn/tools/lib/color"
)

// LogLevel is the verbosity of a Logger. It is usable as a flag value.
type LogLevel int

const (
	NoLogLevel LogLevel = iota
	FatalLevel
	ErrorLevel
	WarningLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

// Flags for Logger.SetFlags, as in the standard library's log package.
const (
	Ldate         = log.Ldate
	Ltime         = log.Ltime
	Lmicroseconds = log.Lmicroseconds
	Llongfile     = log.Llongfile
	Lshortfile    = log.Lshortfile
	LUTC          = log.LUTC
	LstdFlags     = log.LstdFlags
)

func (l *LogLevel) String() string {
	switch *l {
	case NoLogLevel:
		return "no"
	case FatalLevel:
		return "fatal"
	case ErrorLevel:
		return "error"
	case WarningLevel:
		return "warning"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	case TraceLevel:
		return "trace"
	}
	return ""
}

func (l *LogLevel) Set(s string) error {
	switch s {
	case "fatal":
		*l = FatalLevel
	case "error":
		*l = ErrorLevel
	case "warning":
		*l = WarningLevel
	case "info":
		*l = InfoLevel
	case "debug":
		*l = DebugLevel
	case "trace":
		*l = TraceLevel
	default:
		return fmt.Errorf("%s is not a valid level", s)
	}
	return nil
}

// Logger writes leveled messages. Errors and fatal messages go to the error
// writer; everything else goes to the output writer.
type Logger struct {
	LoggerLevel   LogLevel
	goLogger      *log.Logger
	goErrorLogger *log.Logger
	color         color.Color

	// exit is called after a fatal message.
	exit func(int)
}

// NewLogger creates a logger at the given level. Every line carries the
// prefix.
func NewLogger(loggerLevel LogLevel, color color.Color, outWriter, errWriter io.Writer, prefix string) *Logger {
	if outWriter == nil {
		outWriter = os.Stdout
	}
	if errWriter == nil {
		errWriter = os.Stderr
	}
	return &Logger{
		LoggerLevel:   loggerLevel,
		goLogger:      log.New(outWriter, prefix, log.LstdFlags),
		goErrorLogger: log.New(errWriter, prefix, log.LstdFlags),
		color:         color,
		exit:          os.Exit,
	}
}

// SetFlags sets the output flags of the logger.
func (l *Logger) SetFlags(flags int) {
	l.goLogger.SetFlags(flags)
	l.goErrorLogger.SetFlags(flags)
}

func (l *Logger) logf(level LogLevel, format string, a ...any) {
	if l.LoggerLevel < level {
		return
	}
	msg := fmt.Sprintf(format, a...)
	switch level {
	case FatalLevel:
		l.goErrorLogger.Print(l.color.Red("FATAL: ") + msg)
	case ErrorLevel:
		l.goErrorLogger.Print(l.color.Red("ERROR: ") + msg)
	case WarningLevel:
		l.goLogger.Print(l.color.Yellow("WARN: ") + msg)
	case InfoLevel:
		l.goLogger.Print(msg)
	case DebugLevel:
		l.goLogger.Print(l.color.Blue("DEBUG: ") + msg)
	case TraceLevel:
		l.goLogger.Print(l.color.Cyan("TRACE: ") + msg)
	}
}

func (l *Logger) Tracef(format string, a ...any)   { l.logf(TraceLevel, format, a...) }
func (l *Logger) Debugf(format string, a ...any)   { l.logf(DebugLevel, format, a...) }
func (l *Logger) Infof(format string, a ...any)    { l.logf(InfoLevel, format, a...) }
func (l *Logger) Warningf(format string, a ...any) { l.logf(WarningLevel, format, a...) }
func (l *Logger) Errorf(format string, a ...any)   { l.logf(ErrorLevel, format, a...) }

// Fatalf logs the message and exits with status 1.
func (l *Logger) Fatalf(format string, a ...any) {
	l.logf(FatalLevel, format, a...)
	l.exit(1)
}

type loggerKey struct{}

// WithLogger returns a context carrying the logger.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext gives the context's logger, or nil if it has none.
func LoggerFromContext(ctx context.Context) *Logger {
	if v, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return v
	}
	return nil
}

var defaultLogger = NewLogger(InfoLevel, color.NewColor(color.ColorNever), os.Stdout, os.Stderr, "")

func fromContext(ctx context.Context) *Logger {
	if l := LoggerFromContext(ctx); l != nil {
		return l
	}
	return defaultLogger
}

func Tracef(ctx context.Context, format string, a ...any) {
	fromContext(ctx).Tracef(format, a...)
}

func Debugf(ctx context.Context, format string, a ...any) {
	fromContext(ctx).Debugf(format, a...)
}

func Infof(ctx context.Context, format string, a ...any) {
	fromContext(ctx).Infof(format, a...)
}

func Warningf(ctx context.Context, format string, a ...any) {
	fromContext(ctx).Warningf(format, a...)
}

func Errorf(ctx context.Context, format string, a ...any) {
	fromContext(ctx).Errorf(format, a...)
}

func Fatalf(ctx context.Context, format string, a ...any) {
	fromContext(ctx).Fatalf(format, a...)
}
