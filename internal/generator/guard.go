package generator

import (
	"path/filepath"
	"strings"

	"github.com/mvp-joe/autoheaders/internal/source"
)

// GuardNamer derives a fallback include guard for a unit that has no @guard
// annotation. It returns "" when it cannot name one.
type GuardNamer func(u *source.Unit) string

// NoGuard never supplies a fallback.
func NoGuard(*source.Unit) string {
	return ""
}

// FixedGuard always returns name.
func FixedGuard(name string) GuardNamer {
	return func(*source.Unit) string {
		return name
	}
}

// BasenameGuard names the guard after the file name: example.c becomes
// prefix + "EXAMPLE" + suffix.
func BasenameGuard(prefix, suffix string) GuardNamer {
	return func(u *source.Unit) string {
		base := u.Base()
		if base == "" {
			return ""
		}
		return macroName(prefix + stem(base) + suffix)
	}
}

// PathGuard names the guard after the slash-separated path relative to
// root, so that src/util/list.c becomes SRC_UTIL_LIST plus the suffix.
func PathGuard(root, prefix, suffix string) GuardNamer {
	return func(u *source.Unit) string {
		if u.Base() == "" {
			return ""
		}
		rel := u.Path
		if root != "" {
			if r, err := filepath.Rel(root, u.Path); err == nil && !strings.HasPrefix(r, "..") {
				rel = r
			}
		}
		rel = filepath.ToSlash(rel)
		rel = strings.TrimPrefix(rel, "./")
		rel = strings.TrimPrefix(rel, "/")
		return macroName(prefix + stem(rel) + suffix)
	}
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// macroName upper-cases s and replaces characters that cannot appear in a
// macro name with underscores.
func macroName(s string) string {
	var b strings.Builder
	for i, r := range strings.ToUpper(s) {
		switch {
		case r == '_' || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
