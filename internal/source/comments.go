package source

import "strings"

// Comment is one C comment found by the text pass.
type Comment struct {
	Span      Span
	Block     bool   // /* ... */ rather than // ...
	StartLine uint32 // 1-based
	EndLine   uint32 // 1-based, line holding the last byte of the comment
	OwnLine   bool   // nothing but whitespace precedes it on StartLine
}

// Body returns the comment text without its delimiters.
func (c Comment) Body(u *Unit) string {
	text := u.Text(c.Span)
	if c.Block {
		text = strings.TrimPrefix(text, "/*")
		return strings.TrimSuffix(text, "*/")
	}
	return strings.TrimPrefix(text, "//")
}

// Lines returns the body split into lines with surrounding whitespace and
// block-comment continuation stars removed.
func (c Comment) Lines(u *Unit) []string {
	raw := strings.Split(c.Body(u), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if c.Block {
			line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		}
		lines = append(lines, line)
	}
	return lines
}

// Comments lexes the unit and returns every comment in source order.
// String and character literals are skipped so that "//" or "/*" inside
// them does not start a comment. Line splices continue a // comment.
func (u *Unit) Comments() []Comment {
	src := u.Content
	n := len(src)
	var out []Comment

	i := 0
	for i < n {
		switch c := src[i]; {
		case c == '"' || c == '\'':
			i = skipLiteral(src, i)
		case c == '/' && i+1 < n && src[i+1] == '/':
			start := i
			i += 2
			for i < n && src[i] != '\n' {
				if src[i] == '\\' && i+1 < n && src[i+1] == '\n' {
					i += 2
					continue
				}
				i++
			}
			out = append(out, u.newComment(start, i, false))
		case c == '/' && i+1 < n && src[i+1] == '*':
			start := i
			i += 2
			for i < n && !(src[i] == '*' && i+1 < n && src[i+1] == '/') {
				i++
			}
			i = min(i+2, n)
			out = append(out, u.newComment(start, i, true))
		default:
			i++
		}
	}
	return out
}

func (u *Unit) newComment(start, end int, block bool) Comment {
	span := Span{Start: uint32(start), End: uint32(end)}
	last := span.End
	if last > span.Start {
		last--
	}
	return Comment{
		Span:      span,
		Block:     block,
		StartLine: u.Position(span.Start).Line,
		EndLine:   u.Position(last).Line,
		OwnLine:   u.IsBlankBefore(span.Start),
	}
}

// skipLiteral returns the offset just past the string or character literal
// starting at i. Unterminated literals stop at the end of the line.
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
