// Package zerologx implements the logx engine contract on top of zerolog.
//
// Each channel is a zerolog child logger carrying the channel name as a
// "logger" field. The engine-wide level can be overridden per channel, both
// adjustable at runtime, and ambient diagnostic state carried in the call
// context is rendered as a "ctx" dictionary and a "stack" array.
package zerologx

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/arloliu/go-logx"
	"github.com/arloliu/go-logx/diag"
)

// Engine is a zerolog-backed logging engine.
type Engine struct {
	base     zerolog.Logger
	level    atomic.Int32
	channels *xsync.MapOf[string, *channel]
	chLevels *xsync.MapOf[string, logx.Level]
	exitFunc func(int)
}

var (
	_ logx.Engine         = (*Engine)(nil)
	_ logx.Reconfigurable = (*Engine)(nil)
)

// New creates an engine with the given options applied on top of the
// defaults: info level, JSON format, timestamps on, writing to stderr.
func New(opts ...Option) (*Engine, error) {
	cfg := &config{
		level:     logx.InfoLevel,
		chLevels:  make(map[string]logx.Level),
		output:    os.Stderr,
		format:    FormatJSON,
		timestamp: true,
		exitFunc:  os.Exit,
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	var out io.Writer = cfg.output
	if cfg.format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: cfg.output, TimeFormat: time.RFC3339}
	}

	builder := zerolog.New(out).With()
	if cfg.timestamp {
		builder = builder.Timestamp()
	}
	if cfg.caller {
		// the facade and channel add four frames between the user call
		// site and the event write
		builder = builder.CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 4)
	}

	eng := &Engine{
		base:     builder.Logger(),
		channels: xsync.NewMapOf[string, *channel](),
		chLevels: xsync.NewMapOf[string, logx.Level](),
		exitFunc: cfg.exitFunc,
	}
	eng.level.Store(int32(cfg.level))
	for name, level := range cfg.chLevels {
		eng.chLevels.Store(name, level)
	}

	return eng, nil
}

// Channel returns the channel registered under name, creating it on first
// use. Channels are memoized for the lifetime of the engine.
func (e *Engine) Channel(name string) logx.Channel {
	ch, _ := e.channels.LoadOrCompute(name, func() *channel {
		return &channel{
			eng:  e,
			name: name,
			lg:   e.base.With().Str("logger", name).Logger(),
		}
	})

	return ch
}

// Level returns the engine-wide minimum level.
func (e *Engine) Level() logx.Level {
	return logx.Level(e.level.Load())
}

// SetLevel changes the engine-wide minimum level. Channels with an explicit
// override keep it.
func (e *Engine) SetLevel(level logx.Level) {
	e.level.Store(int32(level))
}

// SetChannelLevel overrides the minimum level for the named channel,
// effective whether or not the channel exists yet.
func (e *Engine) SetChannelLevel(name string, level logx.Level) {
	e.chLevels.Store(name, level)
}

func (e *Engine) threshold(name string) logx.Level {
	if level, ok := e.chLevels.Load(name); ok {
		return level
	}

	return logx.Level(e.level.Load())
}

type channel struct {
	eng  *Engine
	name string
	lg   zerolog.Logger
}

var _ logx.Channel = (*channel)(nil)

func (c *channel) Name() string {
	return c.name
}

func (c *channel) Enabled(level logx.Level) bool {
	if level == logx.Disabled {
		return false
	}

	return level >= c.eng.threshold(c.name)
}

func (c *channel) Log(ctx context.Context, level logx.Level, marker logx.Marker, msg any, err error) {
	ev := c.newEvent(level)
	if ev == nil {
		return
	}

	c.finish(ctx, ev, level, marker, msg, err)
}

func (c *channel) LogFunc(ctx context.Context, level logx.Level, marker logx.Marker, fn logx.MessageFunc, err error) {
	if fn == nil {
		return
	}

	// the level gate must pass before the producer runs
	ev := c.newEvent(level)
	if ev == nil {
		return
	}

	c.finish(ctx, ev, level, marker, fn(), err)
}

func (c *channel) Enter(ctx context.Context, flow *logx.FlowEntry) {
	ev := c.newEvent(logx.TraceLevel)
	if ev == nil {
		return
	}

	ev = ev.Str("flow", "enter").Str("flow_id", flow.ID())
	if params := flow.Params(); len(params) > 0 {
		ev = ev.Interface("params", params)
	}
	ev = appendDiag(ctx, ev)
	ev.Msg("enter")
}

func (c *channel) Exit(ctx context.Context, flow *logx.FlowEntry, result any, hasResult bool) {
	ev := c.newEvent(logx.TraceLevel)
	if ev == nil {
		return
	}

	ev = ev.Str("flow", "exit").Str("flow_id", flow.ID()).Dur("elapsed", time.Since(flow.Started()))
	if hasResult {
		ev = ev.Interface("result", result)
	}
	ev = appendDiag(ctx, ev)
	ev.Msg("exit")
}

func (c *channel) Catching(ctx context.Context, err error) {
	ev := c.newEvent(logx.ErrorLevel)
	if ev == nil {
		return
	}

	ev = ev.Str("flow", "catching").Err(err)
	ev = appendDiag(ctx, ev)
	ev.Msg("catching")
}

// newEvent opens a zerolog event for the level, or nil when the level is not
// enabled on this channel.
func (c *channel) newEvent(level logx.Level) *zerolog.Event {
	if !c.Enabled(level) {
		return nil
	}

	switch level {
	case logx.TraceLevel:
		return c.lg.Trace()
	case logx.DebugLevel:
		return c.lg.Debug()
	case logx.InfoLevel:
		return c.lg.Info()
	case logx.WarnLevel:
		return c.lg.Warn()
	case logx.ErrorLevel:
		return c.lg.Error()
	case logx.FatalLevel:
		// WithLevel skips zerolog's own exit; the engine terminates after
		// the event is written so the exit behavior stays injectable.
		return c.lg.WithLevel(zerolog.FatalLevel)
	default:
		return nil
	}
}

func (c *channel) finish(ctx context.Context, ev *zerolog.Event, level logx.Level, marker logx.Marker, msg any, err error) {
	if marker != "" {
		ev = ev.Str("marker", string(marker))
	}
	if err != nil {
		ev = ev.Err(err)
	}
	ev = appendDiag(ctx, ev)
	ev.Msg(render(msg))

	if level == logx.FatalLevel {
		c.eng.exitFunc(1)
	}
}

// appendDiag renders the ambient diagnostic state carried by ctx.
func appendDiag(ctx context.Context, ev *zerolog.Event) *zerolog.Event {
	store, ok := diag.FromContext(ctx)
	if !ok {
		return ev
	}

	if values := store.Values(); len(values) > 0 {
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		dict := zerolog.Dict()
		for _, k := range keys {
			dict = dict.Str(k, values[k])
		}
		ev = ev.Dict("ctx", dict)
	}

	if stack := store.Stack(); len(stack) > 0 {
		ev = ev.Strs("stack", stack)
	}

	return ev
}

func render(msg any) string {
	switch v := msg.(type) {
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
