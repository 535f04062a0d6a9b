// Package config provides configuration loading for autoheaders.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Command-line flags bound by the CLI
//  2. Environment variables (AUTOHEADERS_*)
//  3. Project config (.autoheaders.yml or .autoheaders.yaml)
//  4. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: AUTOHEADERS_
//   - Nested fields: Use underscores (AUTOHEADERS_GUARD_FALLBACK)
package config

// Guard fallback conventions.
const (
	FallbackNone     = "none"
	FallbackBasename = "basename"
	FallbackPath     = "path"
)

// Config represents the complete autoheaders configuration.
type Config struct {
	Guard    GuardConfig    `yaml:"guard" mapstructure:"guard"`
	Markers  MarkersConfig  `yaml:"markers" mapstructure:"markers"`
	Generate GenerateConfig `yaml:"generate" mapstructure:"generate"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Watch    WatchConfig    `yaml:"watch" mapstructure:"watch"`
}

// GuardConfig controls the public header's include guard when the source
// has no @guard annotation.
type GuardConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`         // fixed guard name, wins over Fallback
	Fallback string `yaml:"fallback" mapstructure:"fallback"` // "none", "basename" or "path"
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`     // prepended to derived names
	Suffix   string `yaml:"suffix" mapstructure:"suffix"`     // appended to derived names
}

// MarkersConfig names the macros of the marker blocks.
type MarkersConfig struct {
	Public  string `yaml:"public" mapstructure:"public"`
	Private string `yaml:"private" mapstructure:"private"`
}

// GenerateConfig toggles optional generation rules.
type GenerateConfig struct {
	ExternVariables bool `yaml:"extern_variables" mapstructure:"extern_variables"`
}

// OutputConfig names generated files relative to their source.
type OutputConfig struct {
	PublicSuffix  string `yaml:"public_suffix" mapstructure:"public_suffix"`
	PrivateSuffix string `yaml:"private_suffix" mapstructure:"private_suffix"`
}

// PathsConfig defines which sources batch and watch process.
type PathsConfig struct {
	Sources []string `yaml:"sources" mapstructure:"sources"` // glob patterns for C sources
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// BatchConfig tunes batch generation.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
	CacheSize  int `yaml:"cache_size" mapstructure:"cache_size"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Guard: GuardConfig{
			Fallback: FallbackBasename,
			Suffix:   "_H",
		},
		Markers: MarkersConfig{
			Public:  "HEADER",
			Private: "PRIVATE_HEADER",
		},
		Output: OutputConfig{
			PublicSuffix:  ".h",
			PrivateSuffix: ".priv.h",
		},
		Paths: PathsConfig{
			Sources: []string{"**/*.c"},
			Ignore: []string{
				".git/**",
				"build/**",
				"dist/**",
				"vendor/**",
				"third_party/**",
			},
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Watch: WatchConfig{
			DebounceMS: 500,
			CacheSize:  256,
		},
	}
}

// SourceExtensions extracts unique file extensions from the source patterns.
// Returns extensions with leading dot (e.g., []string{".c"}).
func (c *Config) SourceExtensions() []string {
	extMap := make(map[string]bool)
	var extensions []string
	for _, pattern := range c.Paths.Sources {
		if ext := extractExtension(pattern); ext != "" && !extMap[ext] {
			extMap[ext] = true
			extensions = append(extensions, ext)
		}
	}
	return extensions
}

// extractExtension extracts the file extension from a glob pattern.
// Returns empty string if pattern doesn't match a simple extension pattern.
// Examples: "**/*.c" -> ".c", "src/*.c" -> ".c"
func extractExtension(pattern string) string {
	for i := len(pattern) - 1; i >= 1; i-- {
		if pattern[i] == '.' && pattern[i-1] == '*' {
			return pattern[i:]
		}
	}
	return ""
}
