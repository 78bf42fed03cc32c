package slogx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-logx"
	"github.com/arloliu/go-logx/diag"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	// force JSON output so a development ENV cannot change the assertions
	base := []Option{WithOutput(buf), WithDevelopment(false), WithLevel(logx.TraceLevel)}

	eng, err := New(append(base, opts...)...)
	require.NoError(t, err)

	return eng, buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}

		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line), "line %q", raw)
		lines = append(lines, line)
	}

	return lines
}

func TestEmitFields(t *testing.T) {
	assert := assert.New(t)

	eng, buf := newTestEngine(t)
	lg := logx.New(eng.Channel("req")).WithMarker("AUDIT")

	lg.InfoErr(context.Background(), errors.New("boom"), "hello")

	lines := logLines(t, buf)
	require.Len(t, lines, 1)

	assert.Equal("INFO", lines[0]["level"])
	assert.Equal("req", lines[0]["logger"])
	assert.Equal("AUDIT", lines[0]["marker"])
	assert.Equal("boom", lines[0]["error"])
	assert.Equal("hello", lines[0]["msg"])
	assert.Contains(lines[0], "ts")
}

func TestExtendedLevelNames(t *testing.T) {
	assert := assert.New(t)

	eng, buf := newTestEngine(t, WithExitFunc(func(int) {}))
	lg := logx.New(eng.Channel("app"))
	ctx := context.Background()

	lg.Trace(ctx, "lowest")
	lg.Fatal(ctx, "highest")

	lines := logLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal("TRACE", lines[0]["level"])
	assert.Equal("FATAL", lines[1]["level"])
}

func TestLevelGating(t *testing.T) {
	assert := assert.New(t)

	eng, buf := newTestEngine(t, WithLevel(logx.InfoLevel))
	lg := logx.New(eng.Channel("app"))
	ctx := context.Background()

	count := 0
	producer := func() any {
		count++
		return "x"
	}

	lg.DebugFunc(ctx, producer)
	assert.Equal(0, count)
	assert.Empty(buf.String())

	lg.WarnFunc(ctx, producer)
	assert.Equal(1, count)

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal("WARN", lines[0]["level"])
	assert.Equal("x", lines[0]["msg"])
}

func TestChannelLevelOverride(t *testing.T) {
	assert := assert.New(t)

	eng, buf := newTestEngine(t,
		WithLevel(logx.InfoLevel),
		WithChannelLevel("chatty", logx.TraceLevel),
	)
	ctx := context.Background()

	logx.New(eng.Channel("chatty")).Trace(ctx, "visible")
	logx.New(eng.Channel("app")).Trace(ctx, "hidden")

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal("chatty", lines[0]["logger"])
}

func TestRuntimeReconfiguration(t *testing.T) {
	assert := assert.New(t)

	eng, buf := newTestEngine(t, WithLevel(logx.ErrorLevel))
	lg := logx.New(eng.Channel("app"))
	ctx := context.Background()

	lg.Info(ctx, "hidden")
	assert.Empty(buf.String())

	eng.SetLevel(logx.DebugLevel)
	assert.Equal(logx.DebugLevel, eng.Level())
	lg.Info(ctx, "visible")

	eng.SetChannelLevel("app", logx.ErrorLevel)
	lg.Info(ctx, "hidden again")

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal("visible", lines[0]["msg"])
}

func TestDiagRendering(t *testing.T) {
	assert := assert.New(t)

	eng, buf := newTestEngine(t)
	lg := logx.New(eng.Channel("app"))

	ctx, _ := diag.EnsureStore(context.Background())
	diag.Put(ctx, "request", "r-1")
	diag.Push(ctx, "handler")
	diag.Push(ctx, "db")

	lg.Info(ctx, "with context")

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(map[string]any{"request": "r-1"}, lines[0]["ctx"])
	assert.Equal([]any{"handler", "db"}, lines[0]["stack"])
}

func TestFlowNotifications(t *testing.T) {
	assert := assert.New(t)

	eng, buf := newTestEngine(t)
	lg := logx.New(eng.Channel("flow"))
	ctx := context.Background()

	fe := lg.Enter(ctx, "arg1", 2)
	got := logx.ExitValue(ctx, lg, fe, "done")
	assert.Equal("done", got)

	lines := logLines(t, buf)
	require.Len(t, lines, 2)

	enter, exit := lines[0], lines[1]
	assert.Equal("TRACE", enter["level"])
	assert.Equal("enter", enter["flow"])
	assert.Equal([]any{"arg1", float64(2)}, enter["params"])
	assert.NotEmpty(enter["flow_id"])

	assert.Equal("exit", exit["flow"])
	assert.Equal("done", exit["result"])
	assert.Contains(exit, "elapsed")
	assert.Equal(enter["flow_id"], exit["flow_id"])
}

func TestCatchingNotification(t *testing.T) {
	assert := assert.New(t)

	eng, buf := newTestEngine(t)
	lg := logx.New(eng.Channel("flow"))

	lg.Catching(context.Background(), errors.New("broken"))

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal("ERROR", lines[0]["level"])
	assert.Equal("catching", lines[0]["flow"])
	assert.Equal("broken", lines[0]["error"])
}

func TestFatalCallsExitFunc(t *testing.T) {
	assert := assert.New(t)

	exitCode := -1
	eng, buf := newTestEngine(t, WithExitFunc(func(code int) { exitCode = code }))
	lg := logx.New(eng.Channel("app"))

	lg.Fatal(context.Background(), "unrecoverable")

	assert.Equal(1, exitCode)

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal("FATAL", lines[0]["level"])
}

func TestDevelopmentConsoleOutput(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	eng, err := New(WithOutput(buf), WithDevelopment(true), WithLevel(logx.DebugLevel))
	require.NoError(t, err)

	logx.New(eng.Channel("app")).Info(context.Background(), "pretty")

	assert.Contains(buf.String(), "pretty")
	assert.False(json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestChannelMemoized(t *testing.T) {
	assert := assert.New(t)

	eng, _ := newTestEngine(t)

	assert.Same(eng.Channel("a"), eng.Channel("a"))
	assert.NotSame(eng.Channel("a"), eng.Channel("b"))
	assert.Equal("a", eng.Channel("a").Name())
}

func TestLevelMapping(t *testing.T) {
	assert := assert.New(t)

	levels := []logx.Level{
		logx.TraceLevel, logx.DebugLevel, logx.InfoLevel,
		logx.WarnLevel, logx.ErrorLevel, logx.FatalLevel, logx.Disabled,
	}
	for _, level := range levels {
		assert.Equal(level, fromSlogLevel(toSlogLevel(level)), "level %s", level)
	}
}

func TestEngineWideDisabled(t *testing.T) {
	assert := assert.New(t)

	eng, buf := newTestEngine(t)
	lg := logx.New(eng.Channel("app"))
	ctx := context.Background()

	eng.SetLevel(logx.Disabled)

	for _, level := range []logx.Level{
		logx.TraceLevel, logx.DebugLevel, logx.InfoLevel,
		logx.WarnLevel, logx.ErrorLevel, logx.FatalLevel,
	} {
		assert.False(lg.Enabled(level), "level %s", level)
	}

	lg.Error(ctx, "dropped")
	assert.Empty(buf.String())
}

func TestInvalidOptions(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		name string
		opt  Option
	}{
		{"nil output", WithOutput(nil)},
		{"invalid level", WithLevel(logx.Level(42))},
		{"nil exit func", WithExitFunc(nil)},
		{"empty channel name", WithChannelLevel("", logx.InfoLevel)},
		{"invalid channel level", WithChannelLevel("app", logx.Level(-100))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			assert.Error(err)
		})
	}
}
