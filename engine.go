package logx

import (
	"context"
	"sync"
)

// Marker tags a log event with a categorization label that engines render as
// a dedicated field. The empty marker means the event is untagged.
type Marker string

// MessageFunc produces a loggable value on demand. The facade and engines
// invoke it only after the target level passed its enablement check, and then
// exactly once; a panic inside the producer propagates to the caller
// unmodified.
type MessageFunc func() any

// Channel is a named logging destination owned by an Engine. All emission
// paths receive a context carrying the ambient diagnostic state (see the
// diag package); engines consult it when formatting output. Implementations
// must treat a nil context as context.Background().
type Channel interface {
	// Name returns the channel name the engine registered this handle under.
	Name() string
	// Enabled reports whether events at the given level are currently emitted.
	Enabled(level Level) bool
	// Log emits a materialized event. A non-empty marker tags the event and a
	// non-nil err attaches an associated failure.
	Log(ctx context.Context, level Level, marker Marker, msg any, err error)
	// LogFunc is the deferred overload of Log: fn is invoked exactly once,
	// after the level check passed, and its result is emitted.
	LogFunc(ctx context.Context, level Level, marker Marker, fn MessageFunc, err error)
	// Enter emits a flow-entry notification.
	Enter(ctx context.Context, flow *FlowEntry)
	// Exit emits a flow-exit notification paired with flow. hasResult
	// distinguishes a valued exit from a unit exit.
	Exit(ctx context.Context, flow *FlowEntry, result any, hasResult bool)
	// Catching emits an error-level notification for a failure that is about
	// to propagate to the caller.
	Catching(ctx context.Context, err error)
}

// Engine creates and owns named channels. Engines memoize their channels:
// repeated calls with the same name return handles backed by the same
// destination.
type Engine interface {
	Channel(name string) Channel
}

// Reconfigurable is implemented by engines whose levels can be adjusted at
// runtime, for example by the config package when a configuration file
// changes.
type Reconfigurable interface {
	// SetLevel changes the engine-wide minimum level.
	SetLevel(level Level)
	// SetChannelLevel overrides the minimum level for one channel.
	SetChannelLevel(name string, level Level)
}

var (
	engineMu  sync.RWMutex
	curEngine Engine = NoopEngine()
)

// SetEngine installs e as the engine used by Named, For, Of, and Mixin from
// this point on. Passing nil restores the noop engine. Loggers constructed
// before the call keep their channels from the previous engine, and the
// owner-type cache is reset, so engines should be installed during program
// startup before loggers are created.
func SetEngine(e Engine) {
	if e == nil {
		e = NoopEngine()
	}

	engineMu.Lock()
	curEngine = e
	engineMu.Unlock()

	resetLoggerCache()
}

// CurrentEngine returns the engine installed by SetEngine, or the noop
// engine if none was installed.
func CurrentEngine() Engine {
	engineMu.RLock()
	defer engineMu.RUnlock()

	return curEngine
}
