package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables → bound flags
	Load() (*Config, error)
}

// Option customizes the viper instance before the config file is read.
type Option func(v *viper.Viper) error

// WithConfigFile reads an explicit config file instead of searching the
// root directory. The file must exist.
func WithConfigFile(path string) Option {
	return func(v *viper.Viper) error {
		if path != "" {
			v.SetConfigFile(path)
		}
		return nil
	}
}

type loader struct {
	rootDir string
	opts    []Option
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...Option) Loader {
	return &loader{
		rootDir: rootDir,
		opts:    opts,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Flags bound through options
// 2. Environment variables (AUTOHEADERS_*)
// 3. Config file (.autoheaders.yml or .autoheaders.yaml)
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".autoheaders")
	v.SetConfigType("yaml")
	v.AddConfigPath(l.rootDir)

	// Enable environment variable overrides
	v.SetEnvPrefix("AUTOHEADERS")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., AUTOHEADERS_GUARD_FALLBACK)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"guard.name",
		"guard.fallback",
		"guard.prefix",
		"guard.suffix",
		"markers.public",
		"markers.private",
		"generate.extern_variables",
		"output.public_suffix",
		"output.private_suffix",
		"batch.concurrency",
		"watch.debounce_ms",
		"watch.cache_size",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	setDefaults(v)

	for _, opt := range l.opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("guard.name", defaults.Guard.Name)
	v.SetDefault("guard.fallback", defaults.Guard.Fallback)
	v.SetDefault("guard.prefix", defaults.Guard.Prefix)
	v.SetDefault("guard.suffix", defaults.Guard.Suffix)

	v.SetDefault("markers.public", defaults.Markers.Public)
	v.SetDefault("markers.private", defaults.Markers.Private)

	v.SetDefault("generate.extern_variables", defaults.Generate.ExternVariables)

	v.SetDefault("output.public_suffix", defaults.Output.PublicSuffix)
	v.SetDefault("output.private_suffix", defaults.Output.PrivateSuffix)

	v.SetDefault("paths.sources", defaults.Paths.Sources)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("batch.concurrency", defaults.Batch.Concurrency)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMS)
	v.SetDefault("watch.cache_size", defaults.Watch.CacheSize)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}
