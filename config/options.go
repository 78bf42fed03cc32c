package config

import "errors"

// LoadOption adjusts how Load assembles its layered sources.
type LoadOption interface {
	apply(*loader) error
}

type loader struct {
	path      string
	envPrefix string
}

type loadOptFunc struct {
	name      string
	applyFunc func(*loader) error
}

func (o *loadOptFunc) apply(ld *loader) error { return o.applyFunc(ld) }

func newLoadOptFunc(name string, f func(*loader) error) *loadOptFunc {
	return &loadOptFunc{name: name, applyFunc: f}
}

// WithFile forces a specific config file instead of the discovery order.
func WithFile(path string) LoadOption {
	return newLoadOptFunc("WithFile", func(ld *loader) error {
		if ld == nil {
			return errors.New("loader is nil")
		}

		if path == "" {
			return errors.New("config file path is empty")
		}

		ld.path = path

		return nil
	})
}

// WithEnvPrefix changes the prefix environment overrides are read under.
//
// The default value is DefaultEnvPrefix.
func WithEnvPrefix(prefix string) LoadOption {
	return newLoadOptFunc("WithEnvPrefix", func(ld *loader) error {
		if ld == nil {
			return errors.New("loader is nil")
		}

		if prefix == "" {
			return errors.New("env prefix is empty")
		}

		ld.envPrefix = prefix

		return nil
	})
}
