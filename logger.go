package logx

import (
	"context"
	"fmt"
)

// Logger is the deferred-evaluation facade over one engine channel.
//
// Every logging method checks the channel's level enablement before doing any
// work: with the level disabled, message producers are never invoked and
// format arguments are never rendered. The facade raises no errors of its
// own; a panic inside a producer propagates to the caller unmodified.
//
// A Logger is immutable and safe for concurrent use. WithMarker derives a
// child that tags every event without affecting the parent.
type Logger struct {
	ch     Channel
	marker Marker
}

// New wraps the given channel in a Logger. A nil channel yields a logger
// backed by the noop engine.
func New(ch Channel) *Logger {
	if ch == nil {
		ch = NoopEngine().Channel("")
	}

	return &Logger{ch: ch}
}

// Named returns a logger for the named channel of the current engine.
func Named(name string) *Logger {
	return New(CurrentEngine().Channel(name))
}

// Name returns the name of the underlying channel.
func (l *Logger) Name() string {
	return l.ch.Name()
}

// Channel returns the underlying engine channel.
func (l *Logger) Channel() Channel {
	return l.ch
}

// WithMarker returns a child logger that tags every event with the given
// marker. The parent logger is unaffected.
func (l *Logger) WithMarker(m Marker) *Logger {
	return &Logger{ch: l.ch, marker: m}
}

// Enabled reports whether events at the given level are currently emitted.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && l.ch != nil && l.ch.Enabled(level)
}

// Trace logs msg at TraceLevel.
func (l *Logger) Trace(ctx context.Context, msg any) {
	l.log(ctx, TraceLevel, msg, nil)
}

// Tracef logs a formatted message at TraceLevel.
// The format arguments are rendered only when TraceLevel is enabled.
func (l *Logger) Tracef(ctx context.Context, format string, args ...any) {
	l.logf(ctx, TraceLevel, format, args...)
}

// TraceFunc logs the value produced by fn at TraceLevel.
// fn is not invoked when TraceLevel is disabled.
func (l *Logger) TraceFunc(ctx context.Context, fn MessageFunc) {
	l.logFunc(ctx, TraceLevel, fn, nil)
}

// TraceErr logs msg with an associated failure at TraceLevel.
func (l *Logger) TraceErr(ctx context.Context, err error, msg any) {
	l.log(ctx, TraceLevel, msg, err)
}

// TraceErrFunc logs the value produced by fn with an associated failure at
// TraceLevel. fn is not invoked when TraceLevel is disabled.
func (l *Logger) TraceErrFunc(ctx context.Context, err error, fn MessageFunc) {
	l.logFunc(ctx, TraceLevel, fn, err)
}

// Debug logs msg at DebugLevel.
func (l *Logger) Debug(ctx context.Context, msg any) {
	l.log(ctx, DebugLevel, msg, nil)
}

// Debugf logs a formatted message at DebugLevel.
// The format arguments are rendered only when DebugLevel is enabled.
func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, DebugLevel, format, args...)
}

// DebugFunc logs the value produced by fn at DebugLevel.
// fn is not invoked when DebugLevel is disabled.
func (l *Logger) DebugFunc(ctx context.Context, fn MessageFunc) {
	l.logFunc(ctx, DebugLevel, fn, nil)
}

// DebugErr logs msg with an associated failure at DebugLevel.
func (l *Logger) DebugErr(ctx context.Context, err error, msg any) {
	l.log(ctx, DebugLevel, msg, err)
}

// DebugErrFunc logs the value produced by fn with an associated failure at
// DebugLevel. fn is not invoked when DebugLevel is disabled.
func (l *Logger) DebugErrFunc(ctx context.Context, err error, fn MessageFunc) {
	l.logFunc(ctx, DebugLevel, fn, err)
}

// Info logs msg at InfoLevel.
func (l *Logger) Info(ctx context.Context, msg any) {
	l.log(ctx, InfoLevel, msg, nil)
}

// Infof logs a formatted message at InfoLevel.
// The format arguments are rendered only when InfoLevel is enabled.
func (l *Logger) Infof(ctx context.Context, format string, args ...any) {
	l.logf(ctx, InfoLevel, format, args...)
}

// InfoFunc logs the value produced by fn at InfoLevel.
// fn is not invoked when InfoLevel is disabled.
func (l *Logger) InfoFunc(ctx context.Context, fn MessageFunc) {
	l.logFunc(ctx, InfoLevel, fn, nil)
}

// InfoErr logs msg with an associated failure at InfoLevel.
func (l *Logger) InfoErr(ctx context.Context, err error, msg any) {
	l.log(ctx, InfoLevel, msg, err)
}

// InfoErrFunc logs the value produced by fn with an associated failure at
// InfoLevel. fn is not invoked when InfoLevel is disabled.
func (l *Logger) InfoErrFunc(ctx context.Context, err error, fn MessageFunc) {
	l.logFunc(ctx, InfoLevel, fn, err)
}

// Warn logs msg at WarnLevel.
func (l *Logger) Warn(ctx context.Context, msg any) {
	l.log(ctx, WarnLevel, msg, nil)
}

// Warnf logs a formatted message at WarnLevel.
// The format arguments are rendered only when WarnLevel is enabled.
func (l *Logger) Warnf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, WarnLevel, format, args...)
}

// WarnFunc logs the value produced by fn at WarnLevel.
// fn is not invoked when WarnLevel is disabled.
func (l *Logger) WarnFunc(ctx context.Context, fn MessageFunc) {
	l.logFunc(ctx, WarnLevel, fn, nil)
}

// WarnErr logs msg with an associated failure at WarnLevel.
func (l *Logger) WarnErr(ctx context.Context, err error, msg any) {
	l.log(ctx, WarnLevel, msg, err)
}

// WarnErrFunc logs the value produced by fn with an associated failure at
// WarnLevel. fn is not invoked when WarnLevel is disabled.
func (l *Logger) WarnErrFunc(ctx context.Context, err error, fn MessageFunc) {
	l.logFunc(ctx, WarnLevel, fn, err)
}

// Error logs msg at ErrorLevel.
func (l *Logger) Error(ctx context.Context, msg any) {
	l.log(ctx, ErrorLevel, msg, nil)
}

// Errorf logs a formatted message at ErrorLevel.
// The format arguments are rendered only when ErrorLevel is enabled.
func (l *Logger) Errorf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, ErrorLevel, format, args...)
}

// ErrorFunc logs the value produced by fn at ErrorLevel.
// fn is not invoked when ErrorLevel is disabled.
func (l *Logger) ErrorFunc(ctx context.Context, fn MessageFunc) {
	l.logFunc(ctx, ErrorLevel, fn, nil)
}

// ErrorErr logs msg with an associated failure at ErrorLevel.
func (l *Logger) ErrorErr(ctx context.Context, err error, msg any) {
	l.log(ctx, ErrorLevel, msg, err)
}

// ErrorErrFunc logs the value produced by fn with an associated failure at
// ErrorLevel. fn is not invoked when ErrorLevel is disabled.
func (l *Logger) ErrorErrFunc(ctx context.Context, err error, fn MessageFunc) {
	l.logFunc(ctx, ErrorLevel, fn, err)
}

// Fatal logs msg at FatalLevel. When FatalLevel is enabled the engine
// terminates the process after emitting the event.
func (l *Logger) Fatal(ctx context.Context, msg any) {
	l.log(ctx, FatalLevel, msg, nil)
}

// Fatalf logs a formatted message at FatalLevel.
// The format arguments are rendered only when FatalLevel is enabled.
func (l *Logger) Fatalf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, FatalLevel, format, args...)
}

// FatalFunc logs the value produced by fn at FatalLevel.
// fn is not invoked when FatalLevel is disabled.
func (l *Logger) FatalFunc(ctx context.Context, fn MessageFunc) {
	l.logFunc(ctx, FatalLevel, fn, nil)
}

// FatalErr logs msg with an associated failure at FatalLevel.
func (l *Logger) FatalErr(ctx context.Context, err error, msg any) {
	l.log(ctx, FatalLevel, msg, err)
}

// FatalErrFunc logs the value produced by fn with an associated failure at
// FatalLevel. fn is not invoked when FatalLevel is disabled.
func (l *Logger) FatalErrFunc(ctx context.Context, err error, fn MessageFunc) {
	l.logFunc(ctx, FatalLevel, fn, err)
}

// Log logs msg at the given level.
func (l *Logger) Log(ctx context.Context, level Level, msg any) {
	l.log(ctx, level, msg, nil)
}

// Logf logs a formatted message at the given level.
func (l *Logger) Logf(ctx context.Context, level Level, format string, args ...any) {
	l.logf(ctx, level, format, args...)
}

// LogFunc logs the value produced by fn at the given level.
// fn is not invoked when the level is disabled.
func (l *Logger) LogFunc(ctx context.Context, level Level, fn MessageFunc) {
	l.logFunc(ctx, level, fn, nil)
}

// LogWith logs msg at the given level with an explicit marker and an
// optional associated failure, overriding any marker bound by WithMarker.
func (l *Logger) LogWith(ctx context.Context, level Level, marker Marker, msg any, err error) {
	if !l.Enabled(level) {
		return
	}

	l.ch.Log(ctx, level, marker, msg, err)
}

// LogFuncWith is the deferred variant of LogWith.
// fn is not invoked when the level is disabled.
func (l *Logger) LogFuncWith(ctx context.Context, level Level, marker Marker, fn MessageFunc, err error) {
	if fn == nil || !l.Enabled(level) {
		return
	}

	l.ch.LogFunc(ctx, level, marker, fn, err)
}

func (l *Logger) log(ctx context.Context, level Level, msg any, err error) {
	if !l.Enabled(level) {
		return
	}

	l.ch.Log(ctx, level, l.marker, msg, err)
}

func (l *Logger) logf(ctx context.Context, level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	l.ch.Log(ctx, level, l.marker, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) logFunc(ctx context.Context, level Level, fn MessageFunc, err error) {
	if fn == nil || !l.Enabled(level) {
		return
	}

	l.ch.LogFunc(ctx, level, l.marker, fn, err)
}
