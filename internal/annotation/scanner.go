// Package annotation recognizes the @guard and @include markers written in
// C comments and attaches them to declarations.
package annotation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mvp-joe/autoheaders/internal/cdecl"
	"github.com/mvp-joe/autoheaders/internal/diag"
	"github.com/mvp-joe/autoheaders/internal/source"
)

// Kind is the marker type.
type Kind int

const (
	Guard Kind = iota
	Include
)

func (k Kind) String() string {
	if k == Guard {
		return "@guard"
	}
	return "@include"
}

// Annotation is one recognized marker.
type Annotation struct {
	Kind  Kind
	Value string // guard macro name, empty for @include
	Pos   source.LineCol
	// Target is the index of the declaration the marker is attached to,
	// or -1 when nothing follows it.
	Target int
}

// Result holds the annotations of one translation unit.
type Result struct {
	Guard  *Annotation
	ByDecl map[int][]Annotation
	All    []Annotation
}

// Has reports whether the declaration at idx carries an annotation of kind.
func (r *Result) Has(idx int, kind Kind) bool {
	for _, a := range r.ByDecl[idx] {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Scan finds annotations in the comments of unit and attaches them to decls.
func Scan(unit *source.Unit, decls []cdecl.Declaration) (*Result, error) {
	r := &Result{ByDecl: make(map[int][]Annotation)}

	for _, cm := range unit.Comments() {
		guards, err := scanGuards(unit, cm)
		if err != nil {
			return nil, err
		}
		for _, g := range guards {
			g.Target = following(decls, cm.Span.End)
			if r.Guard != nil {
				related := r.Guard.Pos
				return nil, &diag.AnnotationError{
					Pos:     g.Pos,
					Message: fmt.Sprintf("multiple @guard annotations (%s and %s)", r.Guard.Value, g.Value),
					Related: &related,
				}
			}
			r.add(g)
			guard := g
			r.Guard = &guard
		}

		if pos, ok := findInclude(unit, cm); ok {
			if idx := includeOnLine(decls, cm); idx >= 0 {
				r.add(Annotation{Kind: Include, Pos: pos, Target: idx})
			}
		}
	}
	return r, nil
}

func (r *Result) add(a Annotation) {
	r.All = append(r.All, a)
	if a.Target >= 0 {
		r.ByDecl[a.Target] = append(r.ByDecl[a.Target], a)
	}
}

// scanGuards parses every comment line that starts with @guard.
func scanGuards(unit *source.Unit, cm source.Comment) ([]Annotation, error) {
	var out []Annotation
	for i, line := range cm.Lines(unit) {
		rest, ok := strings.CutPrefix(line, "@guard")
		if !ok || (rest != "" && !isSpace(rest[0])) {
			continue
		}

		pos := linePosition(unit, cm, i, "@guard")
		fields := strings.Fields(rest)
		if len(fields) != 1 || !IsIdentifier(fields[0]) {
			return nil, &diag.AnnotationError{
				Pos:     pos,
				Message: "malformed @guard annotation, expected @guard <NAME>",
			}
		}
		out = append(out, Annotation{Kind: Guard, Value: fields[0], Pos: pos})
	}
	return out, nil
}

// findInclude locates a word-bounded @include token inside the comment.
func findInclude(unit *source.Unit, cm source.Comment) (source.LineCol, bool) {
	body := unit.Text(cm.Span)
	from := 0
	for {
		i := strings.Index(body[from:], "@include")
		if i < 0 {
			return source.LineCol{}, false
		}
		i += from
		end := i + len("@include")
		if end == len(body) || !isIdentChar(body[end]) {
			return unit.Position(cm.Span.Start + uint32(i)), true
		}
		from = end
	}
}

// includeOnLine returns the include declaration that the comment trails.
func includeOnLine(decls []cdecl.Declaration, cm source.Comment) int {
	for i, d := range decls {
		if d.Kind == cdecl.KindInclude && d.Line == cm.StartLine && d.Span.Start < cm.Span.Start {
			return i
		}
	}
	return -1
}

// following returns the index of the first declaration starting at or
// after off.
func following(decls []cdecl.Declaration, off uint32) int {
	i := sort.Search(len(decls), func(i int) bool {
		return decls[i].Span.Start >= off
	})
	if i == len(decls) {
		return -1
	}
	return i
}

// linePosition finds where marker appears on the i-th line of a comment.
func linePosition(unit *source.Unit, cm source.Comment, i int, marker string) source.LineCol {
	line := cm.StartLine + uint32(i)
	start := max(unit.LineStart(line), cm.Span.Start)
	text := unit.Text(source.Span{Start: start, End: unit.LineEnd(line)})
	if col := strings.Index(text, marker); col >= 0 {
		return unit.Position(start + uint32(col))
	}
	return unit.Position(start)
}

// IsGuardLine reports whether line is a comment line holding nothing but a
// @guard annotation: a // comment, a one-line block comment, or an inner
// line of a block comment.
func IsGuardLine(line string) bool {
	t := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(t, "//"):
		t = t[2:]
	case len(t) >= 4 && strings.HasPrefix(t, "/*") && strings.HasSuffix(t, "*/"):
		t = strings.TrimPrefix(strings.TrimSpace(t[2:len(t)-2]), "*")
	case strings.HasPrefix(t, "*") && !strings.Contains(t, "*/"):
		t = t[1:]
	default:
		return false
	}

	rest, ok := strings.CutPrefix(strings.TrimSpace(t), "@guard")
	if !ok || rest == "" || !isSpace(rest[0]) {
		return false
	}
	fields := strings.Fields(rest)
	return len(fields) == 1 && IsIdentifier(fields[0])
}

// IsIdentifier reports whether s is a valid C identifier.
func IsIdentifier(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}
