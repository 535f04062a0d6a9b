// Package shim neutralizes compiler-extension syntax before C parsing.
//
// Every substitution preserves the byte length of the input and the position
// of every newline, so offsets and line numbers computed against the shimmed
// text are valid for the original. Rendering always copies from the original.
package shim

import "bytes"

type action uint8

const (
	// blank the keyword only
	blankKeyword action = iota
	// blank the keyword and its parenthesized argument list
	blankCall
	// blank the keyword, its argument list and a following ';'
	blankStatement
	// blank the keyword and the parentheses, keeping what is inside
	unwrapCall
	// replace the keyword with a standard spelling padded with spaces
	rename
)

type rule struct {
	action      action
	replacement string
}

var rules = map[string]rule{
	"__attribute__":  {action: blankCall},
	"__attribute":    {action: blankCall},
	"__declspec":     {action: blankCall},
	"__asm__":        {action: blankCall},
	"__asm":          {action: blankCall},
	"_Alignas":       {action: blankCall},
	"_Static_assert": {action: blankStatement},
	"static_assert":  {action: blankStatement},
	"__extension__":  {action: blankKeyword},
	"__extension":    {action: blankKeyword},
	"_Noreturn":      {action: blankKeyword},
	"__thread":       {action: blankKeyword},
	"_Thread_local":  {action: blankKeyword},
	"_Atomic":        {action: unwrapCall},
	"__restrict__":   {action: rename, replacement: "restrict"},
	"__restrict":     {action: rename, replacement: "restrict"},
	"__inline__":     {action: rename, replacement: "inline"},
	"__inline":       {action: rename, replacement: "inline"},
	"__const":        {action: rename, replacement: "const"},
	"__volatile__":   {action: rename, replacement: "volatile"},
	"__volatile":     {action: rename, replacement: "volatile"},
	"__signed__":     {action: rename, replacement: "signed"},
	"__signed":       {action: rename, replacement: "signed"},
}

// Neutralize returns a shimmed copy of src. Comments are blanked as well,
// since they are recovered separately by a text pass. Preprocessor directive
// lines keep their code untouched.
func Neutralize(src []byte) []byte {
	out := bytes.Clone(src)
	n := len(src)

	lineStart := true
	directive := false

	i := 0
	for i < n {
		c := src[i]
		switch {
		case c == '\n':
			if !(i > 0 && src[i-1] == '\\') {
				directive = false
			}
			lineStart = true
			i++
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			i++
			continue
		case c == '/' && i+1 < n && src[i+1] == '/':
			end := i + 2
			for end < n && src[end] != '\n' {
				if src[end] == '\\' && end+1 < n && src[end+1] == '\n' {
					end += 2
					continue
				}
				end++
			}
			blank(out, i, end)
			i = end
			continue
		case c == '/' && i+1 < n && src[i+1] == '*':
			end := i + 2
			for end < n && !(src[end] == '*' && end+1 < n && src[end+1] == '/') {
				end++
			}
			end = min(end+2, n)
			blank(out, i, end)
			i = end
			continue
		}

		if lineStart && c == '#' {
			directive = true
		}
		lineStart = false

		switch {
		case c == '"' || c == '\'':
			i = skipLiteral(src, i)
		case isIdentStart(c):
			end := i + 1
			for end < n && isIdentPart(src[end]) {
				end++
			}
			if !directive {
				if r, ok := rules[string(src[i:end])]; ok {
					end = apply(out, src, i, end, r)
				}
			}
			i = end
		default:
			i++
		}
	}
	return out
}

// apply rewrites the keyword at src[start:end] and returns the offset at
// which scanning resumes.
func apply(out, src []byte, start, end int, r rule) int {
	switch r.action {
	case rename:
		copy(out[start:end], r.replacement)
		blank(out, start+len(r.replacement), end)
		return end
	case blankKeyword:
		blank(out, start, end)
		return end
	}

	open := skipSpace(src, end)
	if open >= len(src) || src[open] != '(' {
		blank(out, start, end)
		return end
	}
	closing := matchParen(src, open)

	switch r.action {
	case unwrapCall:
		blank(out, start, open+1)
		if closing < len(src) {
			blank(out, closing, closing+1)
		}
		return open + 1
	case blankStatement:
		stop := min(closing+1, len(src))
		if semi := skipSpace(src, stop); semi < len(src) && src[semi] == ';' {
			stop = semi + 1
		}
		blank(out, start, stop)
		return stop
	default:
		stop := min(closing+1, len(src))
		blank(out, start, stop)
		return stop
	}
}

// matchParen returns the offset of the ')' matching the '(' at open, or
// len(src) when it is unbalanced.
func matchParen(src []byte, open int) int {
	depth := 0
	i := open
	for i < len(src) {
		switch src[i] {
		case '"', '\'':
			i = skipLiteral(src, i)
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return len(src)
}

func skipSpace(src []byte, i int) int {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			i++
		default:
			return i
		}
	}
	return i
}

func skipLiteral(src []byte, i int) int {
	quote := src[i]
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		case '\n':
			return i
		}
		i++
	}
	return len(src)
}

func blank(out []byte, start, end int) {
	for j := start; j < end && j < len(out); j++ {
		if out[j] != '\n' {
			out[j] = ' '
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
