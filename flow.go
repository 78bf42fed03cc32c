package logx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FlowEntry pairs a flow-entry notification with its matching exit. Enter
// returns the entry that must be fed back to the Exit call closing the same
// flow; engines correlate the pair through the entry id.
//
// An entry created while tracing was disabled is inert: feeding it to Exit
// does nothing, so callers never need to special-case disabled tracing.
type FlowEntry struct {
	id      string
	params  []any
	started time.Time
}

// ID returns the correlation id shared by the enter and exit notifications
// of this flow. It is empty for an inert entry.
func (fe *FlowEntry) ID() string {
	if fe == nil {
		return ""
	}

	return fe.id
}

// Params returns the materialized entry parameters.
func (fe *FlowEntry) Params() []any {
	if fe == nil {
		return nil
	}

	return fe.params
}

// Started returns the time the flow was entered.
func (fe *FlowEntry) Started() time.Time {
	if fe == nil {
		return time.Time{}
	}

	return fe.started
}

func (fe *FlowEntry) active() bool {
	return fe != nil && fe.id != ""
}

// Enter emits a flow-entry notification at TraceLevel and returns the entry
// to feed into the matching Exit call. Params describe the work being
// entered; a param of type MessageFunc is materialized, and only when
// tracing is enabled. With TraceLevel disabled, Enter returns an inert entry
// and materializes nothing.
func (l *Logger) Enter(ctx context.Context, params ...any) *FlowEntry {
	if !l.Enabled(TraceLevel) {
		return &FlowEntry{}
	}

	fe := &FlowEntry{
		id:      shortID(),
		params:  materialize(params),
		started: time.Now(),
	}
	l.ch.Enter(ctx, fe)

	return fe
}

// Exit emits the flow-exit notification paired with fe, without a result
// value. It does nothing for an inert or nil entry.
func (l *Logger) Exit(ctx context.Context, fe *FlowEntry) {
	if !fe.active() || !l.Enabled(TraceLevel) {
		return
	}

	l.ch.Exit(ctx, fe, nil, false)
}

// ExitValue emits the flow-exit notification paired with fe carrying the
// flow's result, and returns that result so call sites can exit and return
// in one expression.
func ExitValue[T any](ctx context.Context, l *Logger, fe *FlowEntry, result T) T {
	if fe.active() && l.Enabled(TraceLevel) {
		l.ch.Exit(ctx, fe, result, true)
	}

	return result
}

// Catching reports an error that the caller is handling or about to
// propagate. It never swallows err; callers rethrow or return it themselves.
func (l *Logger) Catching(ctx context.Context, err error) {
	if err == nil || !l.Enabled(ErrorLevel) {
		return
	}

	l.ch.Catching(ctx, err)
}

// Throwing reports an error at the point it is first raised and returns it
// unchanged, so call sites can write "return logger.Throwing(ctx, err)".
func (l *Logger) Throwing(ctx context.Context, err error) error {
	if err != nil && l.Enabled(ErrorLevel) {
		l.ch.Log(ctx, ErrorLevel, l.marker, "throwing", err)
	}

	return err
}

// Traced brackets fn with flow notifications: Enter before, Exit after a nil
// return. A non-nil error or a panic is reported through Catching exactly
// once and then propagates unchanged; Exit is not notified on that path.
func Traced(ctx context.Context, l *Logger, fn func(context.Context) error, params ...any) error {
	fe := l.Enter(ctx, params...)

	defer func() {
		if r := recover(); r != nil {
			l.Catching(ctx, panicError(r))
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		l.Catching(ctx, err)
		return err
	}

	l.Exit(ctx, fe)

	return nil
}

// TracedValue is the valued variant of Traced: a successful fn has its
// result attached to the exit notification and returned.
func TracedValue[T any](ctx context.Context, l *Logger, fn func(context.Context) (T, error), params ...any) (T, error) {
	fe := l.Enter(ctx, params...)

	defer func() {
		if r := recover(); r != nil {
			l.Catching(ctx, panicError(r))
			panic(r)
		}
	}()

	result, err := fn(ctx)
	if err != nil {
		l.Catching(ctx, err)
		return result, err
	}

	return ExitValue(ctx, l, fe, result), nil
}

// materialize resolves deferred entry parameters.
func materialize(params []any) []any {
	for i, p := range params {
		if fn, ok := p.(MessageFunc); ok && fn != nil {
			params[i] = fn()
		}
	}

	return params
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}

	return fmt.Errorf("panic: %v", r)
}

func shortID() string {
	return uuid.New().String()[:8]
}
