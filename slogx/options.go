package slogx

import (
	"errors"
	"io"

	"github.com/arloliu/go-logx"
)

// ErrConfigNil is returned when an option is applied to a nil configuration.
var ErrConfigNil = errors.New("engine config is nil")

type config struct {
	level       logx.Level
	chLevels    map[string]logx.Level
	output      io.Writer
	development bool
	source      bool
	exitFunc    func(int)
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
			return errors.New("invalid level")
		}

		cfg.level = level

		return nil
	})
}

// WithChannelLevel overrides the minimum level for a single named channel.
func WithChannelLevel(name string, level logx.Level) Option {
	return newOptFunc("WithChannelLevel", func(cfg *config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if name == "" {
			return errors.New("channel name is empty")
		}
		if !validLevel(level) {
			return errors.New("invalid level")
		}

		cfg.chLevels[name] = level

		return nil
	})
}

// WithOutput sets the destination records are written to.
//
// The default value is os.Stdout.
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

// WithDevelopment selects console output regardless of the ENV environment
// variable.
func WithDevelopment(val bool) Option {
	return newOptFunc("WithDevelopment", func(cfg *config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.development = val

		return nil
	})
}

// WithSource annotates records with the file and line of the call site.
func WithSource(val bool) Option {
	return newOptFunc("WithSource", func(cfg *config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.source = val

		return nil
	})
}

// WithExitFunc replaces the function invoked after a fatal record is written.
//
// The default value is os.Exit.
func WithExitFunc(fn func(int)) Option {
	return newOptFunc("WithExitFunc", func(cfg *config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if fn == nil {
			return errors.New("exit function is nil")
		}

		cfg.exitFunc = fn

		return nil
	})
}

func validLevel(level logx.Level) bool {
	return level >= logx.TraceLevel && level <= logx.Disabled
}
