// Package slogx provides a logx engine backed by the standard library
// log/slog. Records render as JSON by default; when the ENV environment
// variable is "development", or WithDevelopment is set, output switches to a
// human-readable console handler.
package slogx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/phsym/console-slog"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-logx"
	"github.com/arloliu/go-logx/diag"
)

// Levels beyond slog's built-in range. Trace sits below debug and fatal above
// error, matching the ordering of logx levels. Disabled sits above fatal so
// that nothing passes an engine-wide gate set to it.
const (
	slogTraceLevel    = slog.LevelDebug - 4
	slogFatalLevel    = slog.LevelError + 4
	slogDisabledLevel = slogFatalLevel + 4
)

// Engine adapts log/slog to the logx engine contract.
type Engine struct {
	handler  slog.Handler
	level    *slog.LevelVar
	channels *xsync.MapOf[string, *channel]
	chLevels *xsync.MapOf[string, logx.Level]
	exitFunc func(int)
	source   bool
}

var (
	_ logx.Engine         = (*Engine)(nil)
	_ logx.Reconfigurable = (*Engine)(nil)
)

// New creates an engine with the given options applied on top of the
// defaults: info level, JSON format, writing to stdout. The ENV environment
// variable switches the default format to console when set to "development".
func New(opts ...Option) (*Engine, error) {
	cfg := &config{
		level:       logx.InfoLevel,
		chLevels:    make(map[string]logx.Level),
		output:      os.Stdout,
		development: os.Getenv("ENV") == "development",
		exitFunc:    os.Exit,
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	eng := &Engine{
		channels: xsync.NewMapOf[string, *channel](),
		chLevels: xsync.NewMapOf[string, logx.Level](),
		exitFunc: cfg.exitFunc,
		source:   cfg.source,
	}

	eng.level = &slog.LevelVar{}
	eng.level.Set(toSlogLevel(cfg.level))

	if cfg.development {
		eng.handler = console.NewHandler(cfg.output, &console.HandlerOptions{
			AddSource: cfg.source,
			Level:     eng.level,
		})
	} else {
		eng.handler = slog.NewJSONHandler(cfg.output, &slog.HandlerOptions{
			AddSource:   cfg.source,
			Level:       eng.level,
			ReplaceAttr: replaceAttr,
		})
	}

	for name, level := range cfg.chLevels {
		eng.chLevels.Store(name, level)
	}

	return eng, nil
}

// Channel returns the channel registered under name, creating it on first
// use. Calls with the same name return the same channel.
func (e *Engine) Channel(name string) logx.Channel {
	ch, _ := e.channels.LoadOrCompute(name, func() *channel {
		return &channel{eng: e, name: name}
	})

	return ch
}

// Level reports the engine-wide threshold.
func (e *Engine) Level() logx.Level {
	return fromSlogLevel(e.level.Level())
}

// SetLevel changes the engine-wide threshold at runtime.
func (e *Engine) SetLevel(level logx.Level) {
	e.level.Set(toSlogLevel(level))
}

// SetChannelLevel overrides the threshold for a single channel.
func (e *Engine) SetChannelLevel(name string, level logx.Level) {
	e.chLevels.Store(name, level)
}

func (e *Engine) threshold(name string) logx.Level {
	if level, ok := e.chLevels.Load(name); ok {
		return level
	}

	return fromSlogLevel(e.level.Level())
}

// replaceAttr renames the time key and gives the extended levels readable
// names in JSON output.
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		a.Key = "ts"
	}
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelName(level))
		}
	}

	return a
}

func levelName(level slog.Level) string {
	switch level {
	case slogTraceLevel:
		return "TRACE"
	case slogFatalLevel:
		return "FATAL"
	default:
		return level.String()
	}
}

func toSlogLevel(level logx.Level) slog.Level {
	switch level {
	case logx.TraceLevel:
		return slogTraceLevel
	case logx.DebugLevel:
		return slog.LevelDebug
	case logx.InfoLevel:
		return slog.LevelInfo
	case logx.WarnLevel:
		return slog.LevelWarn
	case logx.ErrorLevel:
		return slog.LevelError
	case logx.FatalLevel:
		return slogFatalLevel
	case logx.Disabled:
		return slogDisabledLevel
	default:
		return slog.LevelError
	}
}

func fromSlogLevel(level slog.Level) logx.Level {
	switch {
	case level <= slogTraceLevel:
		return logx.TraceLevel
	case level <= slog.LevelDebug:
		return logx.DebugLevel
	case level <= slog.LevelInfo:
		return logx.InfoLevel
	case level <= slog.LevelWarn:
		return logx.WarnLevel
	case level <= slog.LevelError:
		return logx.ErrorLevel
	case level <= slogFatalLevel:
		return logx.FatalLevel
	default:
		return logx.Disabled
	}
}

type channel struct {
	eng  *Engine
	name string
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
	if !c.Enabled(level) {
		return
	}

	c.emit(ctx, toSlogLevel(level), render(msg), c.attrs(ctx, marker, err))
	if level == logx.FatalLevel {
		c.eng.exitFunc(1)
	}
}

func (c *channel) LogFunc(ctx context.Context, level logx.Level, marker logx.Marker, fn logx.MessageFunc, err error) {
	if fn == nil {
		return
	}

	// the level gate must pass before the producer runs
	if !c.Enabled(level) {
		return
	}

	c.emit(ctx, toSlogLevel(level), render(fn()), c.attrs(ctx, marker, err))
	if level == logx.FatalLevel {
		c.eng.exitFunc(1)
	}
}

func (c *channel) Enter(ctx context.Context, flow *logx.FlowEntry) {
	if !c.Enabled(logx.TraceLevel) {
		return
	}

	attrs := []slog.Attr{
		slog.String("logger", c.name),
		slog.String("flow", "enter"),
		slog.String("flow_id", flow.ID()),
	}
	if params := flow.Params(); len(params) > 0 {
		attrs = append(attrs, slog.Any("params", params))
	}
	attrs = appendDiag(ctx, attrs)

	c.emit(ctx, slogTraceLevel, "enter", attrs)
}

func (c *channel) Exit(ctx context.Context, flow *logx.FlowEntry, result any, hasResult bool) {
	if !c.Enabled(logx.TraceLevel) {
		return
	}

	attrs := []slog.Attr{
		slog.String("logger", c.name),
		slog.String("flow", "exit"),
		slog.String("flow_id", flow.ID()),
		slog.Duration("elapsed", time.Since(flow.Started())),
	}
	if hasResult {
		attrs = append(attrs, slog.Any("result", result))
	}
	attrs = appendDiag(ctx, attrs)

	c.emit(ctx, slogTraceLevel, "exit", attrs)
}

func (c *channel) Catching(ctx context.Context, err error) {
	if !c.Enabled(logx.ErrorLevel) {
		return
	}

	attrs := []slog.Attr{
		slog.String("logger", c.name),
		slog.String("flow", "catching"),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	attrs = appendDiag(ctx, attrs)

	c.emit(ctx, slog.LevelError, "catching", attrs)
}

func (c *channel) attrs(ctx context.Context, marker logx.Marker, err error) []slog.Attr {
	attrs := make([]slog.Attr, 0, 4)
	attrs = append(attrs, slog.String("logger", c.name))
	if marker != "" {
		attrs = append(attrs, slog.String("marker", string(marker)))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	return appendDiag(ctx, attrs)
}

// emit builds a record and hands it to the handler directly. The level gate
// already passed, so the handler is not asked again.
func (c *channel) emit(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	var pc uintptr
	if c.eng.source {
		var pcs [1]uintptr
		// skip [runtime.Callers, emit, channel method, facade helper, facade method]
		runtime.Callers(5, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), level, msg, pc)
	r.AddAttrs(attrs...)
	if ctx == nil {
		ctx = context.Background()
	}
	_ = c.eng.handler.Handle(ctx, r)
}

// appendDiag renders the ambient diagnostic state carried by ctx.
func appendDiag(ctx context.Context, attrs []slog.Attr) []slog.Attr {
	store, ok := diag.FromContext(ctx)
	if !ok {
		return attrs
	}

	if values := store.Values(); len(values) > 0 {
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		kv := make([]slog.Attr, 0, len(values))
		for _, k := range keys {
			kv = append(kv, slog.String(k, values[k]))
		}
		attrs = append(attrs, slog.Attr{Key: "ctx", Value: slog.GroupValue(kv...)})
	}

	if stack := store.Stack(); len(stack) > 0 {
		attrs = append(attrs, slog.Any("stack", stack))
	}

	return attrs
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
