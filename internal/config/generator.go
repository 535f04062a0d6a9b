package config

import (
	"strings"

	"github.com/mvp-joe/autoheaders/internal/cdecl"
	"github.com/mvp-joe/autoheaders/internal/generator"
)

// ToGeneratorOptions converts a Config to generator.Options.
// The rootDir parameter anchors the "path" guard convention.
func (c *Config) ToGeneratorOptions(rootDir string) generator.Options {
	return generator.Options{
		Markers: cdecl.Markers{
			Public:  c.Markers.Public,
			Private: c.Markers.Private,
		},
		GuardFallback:   c.GuardNamer(rootDir),
		ExternVariables: c.Generate.ExternVariables,
	}
}

// GuardNamer returns the fallback guard convention. A fixed guard name
// wins over the configured convention.
func (c *Config) GuardNamer(rootDir string) generator.GuardNamer {
	if c.Guard.Name != "" {
		return generator.FixedGuard(c.Guard.Name)
	}
	switch strings.ToLower(c.Guard.Fallback) {
	case FallbackBasename:
		return generator.BasenameGuard(c.Guard.Prefix, c.Guard.Suffix)
	case FallbackPath:
		return generator.PathGuard(rootDir, c.Guard.Prefix, c.Guard.Suffix)
	default:
		return generator.NoGuard
	}
}
