// Package assembler renders classified declarations into header text.
package assembler

import (
	"strings"

	"github.com/lithammer/dedent"

	"github.com/mvp-joe/autoheaders/internal/annotation"
	"github.com/mvp-joe/autoheaders/internal/cdecl"
	"github.com/mvp-joe/autoheaders/internal/diag"
	"github.com/mvp-joe/autoheaders/internal/visibility"
)

// Header is one generated header.
type Header struct {
	Target visibility.Target
	Guard  string // empty for private headers
	Blocks []string
}

// String renders the header. Blocks are separated by one blank line and the
// text ends with a newline. An empty private header renders as "".
func (h *Header) String() string {
	var b strings.Builder
	if h.Target == visibility.Public {
		b.WriteString("#ifndef " + h.Guard + "\n")
		b.WriteString("#define " + h.Guard + "\n\n")
	}
	b.WriteString(strings.Join(h.Blocks, "\n"))
	if h.Target == visibility.Public {
		if len(h.Blocks) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("#endif\n")
	}
	return b.String()
}

// Bytes returns String as a byte slice.
func (h *Header) Bytes() []byte {
	return []byte(h.String())
}

// Assemble builds the header for target from classified declarations in
// source order. A public header requires a valid guard name.
func Assemble(classified []visibility.Classified, target visibility.Target, guard string) (*Header, error) {
	h := &Header{Target: target}
	if target == visibility.Public {
		if guard == "" {
			return nil, &diag.ConfigurationError{Message: "public header needs an include guard: add a @guard annotation or configure a fallback"}
		}
		if !annotation.IsIdentifier(guard) {
			return nil, &diag.ConfigurationError{Message: "invalid include guard name " + guard}
		}
		h.Guard = guard
	}

	seen := make(map[*cdecl.Chunk]bool)
	for _, c := range classified {
		if !c.Targets.Has(target) {
			continue
		}
		if ch := c.Decl.Chunk; ch != nil {
			if !seen[ch] {
				seen[ch] = true
				h.Blocks = append(h.Blocks, renderChunk(ch))
			}
			continue
		}
		h.Blocks = append(h.Blocks, renderBlock(c))
	}
	return h, nil
}

// renderChunk copies a marker block body, de-indented as a whole.
func renderChunk(ch *cdecl.Chunk) string {
	return dedent.Dedent(withoutGuardLines(ch.Text))
}

// renderBlock writes the leading comment and the declaration body. Text
// from inside an indented block is de-indented as a whole.
func renderBlock(c visibility.Classified) string {
	d := c.Decl
	block := withoutGuardLines(d.Comment) + d.Indent + body(c) + "\n"
	if d.Indent != "" {
		block = dedent.Dedent(block)
	}
	return block
}

// withoutGuardLines drops comment lines that only carry a @guard marker.
func withoutGuardLines(text string) string {
	if !strings.Contains(text, "@guard") {
		return text
	}
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if !annotation.IsGuardLine(line) {
			b.WriteString(line)
		}
	}
	return b.String()
}

func body(c visibility.Classified) string {
	d := c.Decl
	switch c.Render {
	case visibility.Prototype:
		if d.Kind == cdecl.KindFunction {
			return d.Prototype + ";"
		}
	case visibility.ExternVariable:
		return "extern " + d.Bare + ";"
	case visibility.StaticVariable:
		return "static " + d.Bare + ";"
	}
	return d.Text
}
