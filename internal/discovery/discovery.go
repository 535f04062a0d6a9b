// Package discovery finds the C sources that batch and watch mode process.
package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches files in the root directory for "**/" patterns
	rootGlob glob.Glob
}

// Discovery handles source discovery with glob patterns and ignore rules.
type Discovery struct {
	rootDir        string
	sourcePatterns []compiledPattern
	ignorePatterns []compiledPattern
}

// New creates a discovery instance rooted at rootDir. Patterns are
// slash-separated and relative to rootDir.
func New(rootDir string, sourcePatterns, ignorePatterns []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	var err error
	if d.sourcePatterns, err = compile(sourcePatterns); err != nil {
		return nil, err
	}
	if d.ignorePatterns, err = compile(ignorePatterns); err != nil {
		return nil, err
	}
	return d, nil
}

func compile(patterns []string) ([]compiledPattern, error) {
	var out []compiledPattern
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}

		// "**/*.c" should match both "main.c" and "src/main.c"
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(simplified, '/'); err == nil {
				cp.rootGlob = rg
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// RootDir returns the directory discovery is rooted at.
func (d *Discovery) RootDir() string {
	return d.rootDir
}

// Discover walks the directory tree and returns matching sources in
// lexical order. Ignored directories are not descended into.
func (d *Discovery) Discover() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(d.rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if relPath != "." && d.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.shouldIgnore(relPath) {
			return nil
		}
		if matchesAnyPattern(relPath, d.sourcePatterns) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover sources in %s: %w", d.rootDir, err)
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether path, absolute or relative to the root, is a
// source that Discover would return.
func (d *Discovery) Matches(path string) bool {
	relPath := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(d.rootDir, path)
		if err != nil || strings.HasPrefix(r, "..") {
			return false
		}
		relPath = r
	}
	relPath = filepath.ToSlash(relPath)

	return !d.shouldIgnore(relPath) && matchesAnyPattern(relPath, d.sourcePatterns)
}

// SkipDir reports whether the directory at path, absolute or relative to
// the root, is excluded by an ignore pattern. The root itself never is.
func (d *Discovery) SkipDir(path string) bool {
	relPath := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(d.rootDir, path)
		if err != nil || strings.HasPrefix(r, "..") {
			return true
		}
		relPath = r
	}
	relPath = filepath.ToSlash(relPath)

	return relPath != "." && d.shouldIgnore(relPath)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	if matchesAnyPattern(relPath, d.ignorePatterns) {
		return true
	}

	// A directory "build" should match pattern "build/**"
	if matchesAnyPattern(relPath+"/**", d.ignorePatterns) {
		return true
	}

	// Files below an ignored directory
	for dir := filepath.ToSlash(filepath.Dir(relPath)); dir != "." && dir != "/"; dir = filepath.ToSlash(filepath.Dir(dir)) {
		if matchesAnyPattern(dir+"/**", d.ignorePatterns) {
			return true
		}
	}
	return false
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	inRoot := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if inRoot && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}
