package zerologx

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/go-logx"
)

// Output formats accepted by WithFormat.
const (
	// FormatJSON writes one JSON object per event.
	FormatJSON = "json"
	// FormatConsole writes human-readable colorized lines.
	FormatConsole = "console"
)

// ErrConfigNil is returned when an option is applied to a nil configuration.
var ErrConfigNil = errors.New("engine config is nil")

type config struct {
	level     logx.Level
	chLevels  map[string]logx.Level
	output    io.Writer
	format    string
	caller    bool
	timestamp bool
	exitFunc  func(int)
}

// Option configures an Engine during New.
type Option interface {
	apply(*config) error
}

type optFunc struct {
	name      string
	applyFunc func(*config) error
}

func (o *optFunc) apply(cfg *config) error { return o.applyFunc(cfg) }

func newOptFunc(name string, f func(*config) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

// WithLevel sets the engine-wide minimum level.
//
// The default value is logx.InfoLevel.
func WithLevel(level logx.Level) Option {
	return newOptFunc("WithLevel", func(cfg *config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if !validLevel(level) {
			return fmt.Errorf("invalid level: %d", level)
		}
		cfg.level = level

		return nil
	})
}

// WithChannelLevel overrides the minimum level for one named channel.
// The option may be repeated for different channels.
func WithChannelLevel(name string, level logx.Level) Option {
	return newOptFunc("WithChannelLevel", func(cfg *config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if name == "" {
			return errors.New("channel name is empty")
		}
		if !validLevel(level) {
			return fmt.Errorf("invalid level for channel %s: %d", name, level)
		}
		cfg.chLevels[name] = level

		return nil
	})
}

// WithOutput directs the engine's output to w.
//
// The default output is os.Stderr.
func WithOutput(w io.Writer) Option {
	return newOptFunc("WithOutput", func(cfg *config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if w == nil {
			return errors.New("output writer is nil")
		}
		cfg.output = w

		return nil
	})
}

// WithFormat selects the output format, FormatJSON or FormatConsole.
//
// The default value is FormatJSON.
func WithFormat(format string) Option {
	return newOptFunc("WithFormat", func(cfg *config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if format != FormatJSON && format != FormatConsole {
			return fmt.Errorf("unknown format: %q", format)
		}
		cfg.format = format

		return nil
	})
}

// WithCaller enables or disables caller annotation on every event.
//
// The default value is false.
func WithCaller(val bool) Option {
	return newOptFunc("WithCaller", func(cfg *config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.caller = val

		return nil
	})
}

// WithTimestamp enables or disables event timestamps.
//
// The default value is true.
func WithTimestamp(val bool) Option {
	return newOptFunc("WithTimestamp", func(cfg *config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.timestamp = val

		return nil
	})
}

// WithExitFunc replaces the function called after a fatal event is written.
// Tests use this to observe fatal behavior without terminating the process.
//
// The default value is os.Exit.
func WithExitFunc(fn func(int)) Option {
	return newOptFunc("WithExitFunc", func(cfg *config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if fn == nil {
			return errors.New("exit func is nil")
		}
		cfg.exitFunc = fn

		return nil
	})
}

func validLevel(level logx.Level) bool {
	return level >= logx.TraceLevel && level <= logx.Disabled
}
