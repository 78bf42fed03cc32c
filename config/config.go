// Package config loads engine settings from layered sources: built-in
// defaults, an optional YAML file, and environment variables, with later
// layers taking precedence. The result applies to any engine through the
// logx.Reconfigurable surface, so the package never owns engine policy.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/arloliu/go-logx"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"logx.yaml",
	"logx.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config
// file path.
const ConfigPathEnvVar = "LOGX_CONFIG"

// DefaultEnvPrefix is the prefix environment overrides are read under,
// e.g. LOGX_LEVEL=debug or LOGX_CHANNELS_WORKER=trace.
const DefaultEnvPrefix = "LOGX_"

// Output formats accepted in the format field.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// keyDelim separates koanf key paths. Channel names derived from owner
// types contain dots, e.g. "mypkg.Worker", so the delimiter must not be
// a dot or those names would be split into nested paths.
const keyDelim = "::"

// Config carries the engine settings loadable from file and environment.
type Config struct {
	// Level is the engine-wide minimum level name, parsed by logx.ParseLevel.
	Level string `koanf:"level"`
	// Format selects the output encoding, "json" or "console".
	Format string `koanf:"format"`
	// Caller annotates records with the call site when the engine supports it.
	Caller bool `koanf:"caller"`
	// Channels maps channel names to per-channel level names.
	Channels map[string]string `koanf:"channels"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() Config {
	return Config{
		Level:    "info",
		Format:   FormatJSON,
		Caller:   false,
		Channels: map[string]string{},
	}
}

// Load builds a Config from layered sources:
//  1. Defaults from Default.
//  2. An optional YAML config file, discovered via the LOGX_CONFIG
//     environment variable and then DefaultConfigPaths, or forced by
//     WithFile.
//  3. Environment variables under the LOGX_ prefix.
func Load(opts ...LoadOption) (*Config, error) {
	ld := &loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt.apply(ld); err != nil {
			return nil, err
		}
	}

	k := koanf.New(keyDelim)

	defaults := Default()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := ld.path
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(ld.envPrefix, keyDelim, envTransform(ld.envPrefix))
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate reports whether every field parses into an engine setting.
func (c *Config) Validate() error {
	if _, err := logx.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("level: %w", err)
	}

	if c.Format != FormatJSON && c.Format != FormatConsole {
		return fmt.Errorf("format: unknown output format %q", c.Format)
	}

	for name, raw := range c.Channels {
		if name == "" {
			return errors.New("channels: empty channel name")
		}
		if _, err := logx.ParseLevel(raw); err != nil {
			return fmt.Errorf("channel %s: %w", name, err)
		}
	}

	return nil
}

// Apply pushes the configured levels into target. The engine-wide level is
// set first so per-channel overrides survive it.
func (c *Config) Apply(target logx.Reconfigurable) error {
	if target == nil {
		return errors.New("apply target is nil")
	}

	level, err := logx.ParseLevel(c.Level)
	if err != nil {
		return fmt.Errorf("level: %w", err)
	}
	target.SetLevel(level)

	for name, raw := range c.Channels {
		chLevel, err := logx.ParseLevel(raw)
		if err != nil {
			return fmt.Errorf("channel %s: %w", name, err)
		}
		target.SetChannelLevel(name, chLevel)
	}

	return nil
}

// Watch reloads the config file whenever it changes and feeds the result to
// onReload. Reloads that fail to parse or validate are dropped, keeping the
// last good configuration in effect.
func Watch(path string, onReload func(*Config)) error {
	if path == "" {
		return errors.New("watch path is empty")
	}
	if onReload == nil {
		return errors.New("reload callback is nil")
	}

	provider := file.Provider(path)

	return provider.Watch(func(event any, err error) {
		lg := logx.Of[Config]()
		if err != nil {
			lg.WarnErr(context.Background(), err, "config watch error")
			return
		}

		cfg, err := Load(WithFile(path))
		if err != nil {
			lg.WarnErr(context.Background(), err, "config reload failed")
			return
		}

		onReload(cfg)
	})
}

// findConfigFile searches for a config file, returning the first path that
// exists or an empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransform maps prefixed environment variable names to koanf paths:
//
//	LOGX_LEVEL          -> level
//	LOGX_FORMAT         -> format
//	LOGX_CALLER         -> caller
//	LOGX_CHANNELS_<X>   -> channels::<x>
//
// Unmapped keys are dropped so unrelated variables cannot pollute the
// configuration. Channel names are lowercased by the mapping; names that
// contain dots can only be set through the config file.
func envTransform(prefix string) func(string) string {
	return func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, prefix))

		switch key {
		case "level", "format", "caller":
			return key
		}

		if name, ok := strings.CutPrefix(key, "channels_"); ok && name != "" {
			return "channels" + keyDelim + name
		}

		return ""
	}
}
