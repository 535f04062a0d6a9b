// Package cdecl extracts the top-level constructs of a C translation unit.
//
// The source is passed through the extension shim and parsed with the
// tree-sitter C grammar. Every declaration keeps byte spans into the
// original text so that headers can reproduce it verbatim.
package cdecl

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/mvp-joe/autoheaders/internal/diag"
	"github.com/mvp-joe/autoheaders/internal/shim"
	"github.com/mvp-joe/autoheaders/internal/source"
)

// Parser extracts declarations from C source.
type Parser struct {
	language *sitter.Language
	markers  Markers
}

// NewParser creates a parser recognizing the given marker block names.
func NewParser(markers Markers) *Parser {
	return &Parser{
		language: sitter.NewLanguage(c.Language()),
		markers:  markers,
	}
}

// Parse returns the top-level declarations of unit in source order.
func (p *Parser) Parse(ctx context.Context, unit *source.Unit) ([]Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to load C grammar: %w", err)
	}

	shimmed := shim.Neutralize(unit.Content)
	tree := parser.Parse(shimmed, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", unit.Name())
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, parseError(unit, root)
	}

	e := &extractor{
		unit:     unit,
		shimmed:  shimmed,
		markers:  p.markers,
		comments: unit.Comments(),
	}
	if err := e.items(root, BlockNone, nil, nil, 0); err != nil {
		return nil, err
	}
	return e.decls, nil
}

// parseError reports the first ERROR or MISSING node in document order.
func parseError(unit *source.Unit, root *sitter.Node) error {
	var bad *sitter.Node
	walkTree(root, func(n *sitter.Node) bool {
		if bad != nil {
			return false
		}
		if n.IsError() || n.IsMissing() {
			bad = n
			return false
		}
		return n.HasError()
	})
	if bad == nil {
		bad = root
	}

	pos := source.LineCol{
		Line: uint32(bad.StartPosition().Row) + 1,
		Col:  uint32(bad.StartPosition().Column) + 1,
	}

	var msg string
	switch {
	case bad.IsMissing():
		msg = fmt.Sprintf("missing %q", bad.Kind())
	case bad.IsError():
		text := extractNodeText(bad, unit.Content)
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if len(text) > 40 {
			text = text[:40] + "..."
		}
		msg = fmt.Sprintf("unexpected %q", text)
	default:
		msg = "syntax error"
	}
	return &diag.ParseError{Pos: pos, Message: msg}
}

type extractor struct {
	unit     *source.Unit
	shimmed  []byte
	markers  Markers
	comments []source.Comment
	decls    []Declaration
}

// items extracts the children of a translation unit or marker block. floor
// is the offset below which leading comments belong to something else.
func (e *extractor) items(parent *sitter.Node, block Block, opener *source.LineCol, chunk *Chunk, floor uint32) error {
	var skip *sitter.Node
	if parent.Kind() == "preproc_ifdef" {
		if skip = parent.ChildByFieldName("name"); skip != nil {
			floor = uint32(skip.EndByte())
		}
	}

	count := parent.ChildCount()
	for i := uint(0); i < count; i++ {
		child := parent.Child(i)
		if !child.IsNamed() || sameNode(child, skip) {
			continue
		}

		switch child.Kind() {
		case "comment", "preproc_else", "preproc_elif", "preproc_elifdef":
			continue
		case "preproc_ifdef":
			if nested := e.markerBlock(child); nested != BlockNone {
				pos := e.unit.Position(uint32(child.StartByte()))
				if block != BlockNone && block != nested {
					return &diag.AnnotationError{
						Pos:     pos,
						Message: fmt.Sprintf("%s block nested inside %s block", nested, block),
						Related: opener,
					}
				}
				inner := chunk
				if nested != block {
					inner = e.chunk(child, nested)
				}
				n := len(e.decls)
				if err := e.items(child, nested, &pos, inner, floor); err != nil {
					return err
				}
				// A block holding only comments still reaches the header
				if len(e.decls) == n && inner != chunk && inner.Text != "" {
					e.decls = append(e.decls, Declaration{
						Kind:    KindOther,
						Span:    inner.Span,
						Line:    inner.Line,
						EndLine: e.unit.Position(inner.Span.End - 1).Line,
						Text:    inner.Text,
						Block:   nested,
						Chunk:   inner,
					})
				}
				floor = uint32(child.EndByte())
				continue
			}
		}

		end := uint32(child.EndByte())
		switch child.Kind() {
		case "struct_specifier", "union_specifier", "enum_specifier":
			if i+1 < count && parent.Child(i+1).Kind() == ";" {
				i++
				end = uint32(parent.Child(i).EndByte())
			}
		}

		d := e.declaration(child, end, block, floor)
		d.Chunk = chunk
		e.decls = append(e.decls, d)
		floor = end
	}
	return nil
}

// markerBlock returns the block opened by an #ifdef of a marker name.
func (e *extractor) markerBlock(node *sitter.Node) Block {
	if node.ChildCount() == 0 || node.Child(0).Kind() != "#ifdef" {
		return BlockNone
	}
	switch extractNodeText(node.ChildByFieldName("name"), e.unit.Content) {
	case e.markers.Public:
		return BlockHeader
	case e.markers.Private:
		return BlockPrivateHeader
	}
	return BlockNone
}

// chunk captures the body of a marker block.
func (e *extractor) chunk(node *sitter.Node, block Block) *Chunk {
	src := e.unit.Content
	start := uint32(node.StartByte())
	if name := node.ChildByFieldName("name"); name != nil {
		start = uint32(name.EndByte())
	}
	start = e.unit.LineStart(e.unit.Position(start).Line + 1)

	end := uint32(node.EndByte())
	closer := node.ChildByFieldName("alternative")
	if closer == nil {
		closer = findChildByType(node, "#endif")
	}
	if closer != nil {
		end = e.unit.LineStart(e.unit.Position(uint32(closer.StartByte())).Line)
	}
	start = min(start, end)

	for start < end {
		nl := bytes.IndexByte(src[start:end], '\n')
		if nl < 0 || len(bytes.TrimSpace(src[start:start+uint32(nl)])) > 0 {
			break
		}
		start += uint32(nl) + 1
	}
	end = e.trimEnd(start, end)

	ch := &Chunk{
		Block: block,
		Span:  source.Span{Start: start, End: end},
		Line:  e.unit.Position(start).Line,
	}
	if end > start {
		ch.Text = e.unit.Text(ch.Span) + "\n"
	}
	return ch
}

func (e *extractor) declaration(node *sitter.Node, end uint32, block Block, floor uint32) Declaration {
	src := e.unit.Content
	start := e.reclaimBlanked(uint32(node.StartByte()), floor)
	end = e.trimEnd(start, e.extendOverComments(end))

	d := Declaration{
		Kind:  KindOther,
		Span:  source.Span{Start: start, End: end},
		Block: block,
	}
	d.Text = e.unit.Text(d.Span)
	d.Line = e.unit.Position(start).Line
	d.EndLine = d.Line
	if end > start {
		d.EndLine = e.unit.Position(end - 1).Line
	}
	if e.unit.IsBlankBefore(start) {
		d.Indent = e.unit.Text(source.Span{Start: e.unit.LineStart(d.Line), End: start})
	}
	d.Comment = e.leadingComment(start, d.Line, floor)

	switch node.Kind() {
	case "type_definition":
		d.Kind = KindTypedef
		d.Name = findDeclaredName(node.ChildByFieldName("declarator"), src)
	case "struct_specifier", "union_specifier", "enum_specifier":
		d.Kind = KindTag
		d.Name = extractNodeText(node.ChildByFieldName("name"), src)
	case "declaration":
		d.Storage = storageOf(node, src)
		decls := declarators(node)
		if len(decls) > 0 {
			d.Name = findDeclaredName(decls[0], src)
		}
		if len(decls) > 0 && declaresFunction(decls[0]) {
			d.Kind = KindPrototype
		} else {
			d.Kind = KindVariable
			d.Bare = e.bareDeclaration(node)
		}
	case "function_definition":
		d.Kind = KindFunction
		d.Storage = storageOf(node, src)
		d.Name = findDeclaredName(node.ChildByFieldName("declarator"), src)
		d.Prototype = e.prototype(node, start)
	case "preproc_def", "preproc_function_def":
		d.Kind = KindMacro
		d.Name = extractNodeText(node.ChildByFieldName("name"), src)
	case "preproc_include":
		d.Kind = KindInclude
		d.Path = extractNodeText(node.ChildByFieldName("path"), src)
	case "preproc_if", "preproc_ifdef":
		d.Kind = KindConditional
		if name := node.ChildByFieldName("name"); name != nil {
			d.Name = extractNodeText(name, src)
		} else {
			d.Name = strings.TrimSpace(extractNodeText(node.ChildByFieldName("condition"), src))
		}
	}
	return d
}

// prototype returns the text of a definition up to its body. An old-style
// definition keeps only the part before its identifier list and declares
// the function with an empty parameter list, since the identifier list and
// the parameter declarations after it cannot appear in a declaration.
func (e *extractor) prototype(node *sitter.Node, start uint32) string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return ""
	}

	if findChildByType(node, "declaration") != nil {
		if params := findFunctionParameters(node.ChildByFieldName("declarator")); params != nil {
			head := e.unit.Text(source.Span{Start: start, End: uint32(params.StartByte())})
			return strings.TrimRight(head, " \t\n") + "()"
		}
	}

	return strings.TrimRight(e.unit.Text(source.Span{Start: start, End: uint32(body.StartByte())}), " \t\n")
}

// storageOf returns the storage class of a declaration or definition.
func storageOf(node *sitter.Node, src []byte) Storage {
	for _, spec := range findChildrenByType(node, "storage_class_specifier") {
		switch extractNodeText(spec, src) {
		case "static":
			return StorageStatic
		case "extern":
			return StorageExtern
		}
	}
	return StorageNone
}

// bareDeclaration renders a variable declaration without its storage class,
// initializers and semicolon.
func (e *extractor) bareDeclaration(node *sitter.Node) string {
	src := e.unit.Content
	start := uint32(node.StartByte())
	end := uint32(node.EndByte())
	if semi := findChildByType(node, ";"); semi != nil {
		end = uint32(semi.StartByte())
	}

	var cuts []source.Span
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "storage_class_specifier":
			if s := extractNodeText(child, src); s != "static" && s != "extern" {
				continue
			}
			stop := uint32(child.EndByte())
			for stop < end && isSpace(src[stop]) {
				stop++
			}
			cuts = append(cuts, source.Span{Start: uint32(child.StartByte()), End: stop})
		case "init_declarator":
			if d := child.ChildByFieldName("declarator"); d != nil {
				cuts = append(cuts, source.Span{Start: uint32(d.EndByte()), End: uint32(child.EndByte())})
			}
		}
	}

	var b strings.Builder
	pos := start
	for _, cut := range cuts {
		b.WriteString(e.unit.Text(source.Span{Start: pos, End: cut.Start}))
		pos = cut.End
	}
	b.WriteString(e.unit.Text(source.Span{Start: pos, End: end}))
	return strings.TrimSpace(b.String())
}

// extendOverComments moves end past a comment it would cut in two. A
// directive ends at its newline, which can fall inside a trailing block
// comment that the shim blanked.
func (e *extractor) extendOverComments(end uint32) uint32 {
	i := sort.Search(len(e.comments), func(i int) bool {
		return e.comments[i].Span.End > end
	})
	if i < len(e.comments) && e.comments[i].Span.Start < end {
		return e.comments[i].Span.End
	}
	return end
}

// reclaimBlanked moves start back over extension syntax that the shim
// blanked in front of the construct, such as a leading __attribute__.
func (e *extractor) reclaimBlanked(start, floor uint32) uint32 {
	out := start
	for i := start; i > floor; i-- {
		off := i - 1
		if !isSpace(e.shimmed[off]) {
			break
		}
		if isSpace(e.unit.Content[off]) {
			continue
		}
		if e.unit.Content[off] == ';' || e.inComment(off) {
			break
		}
		out = off
	}
	return out
}

func (e *extractor) inComment(off uint32) bool {
	i := sort.Search(len(e.comments), func(i int) bool {
		return e.comments[i].Span.End > off
	})
	return i < len(e.comments) && e.comments[i].Span.Start <= off
}

func (e *extractor) trimEnd(start, end uint32) uint32 {
	for end > start && isSpace(e.unit.Content[end-1]) {
		end--
	}
	return end
}

// leadingComment returns the source lines of the comment run directly above
// line. Each comment must stand on its own line, the run may not contain
// blank lines, and it may not begin before floor.
func (e *extractor) leadingComment(start, line, floor uint32) string {
	i := sort.Search(len(e.comments), func(i int) bool {
		return e.comments[i].Span.End > start
	})

	first := -1
	cur := line
	for j := i - 1; j >= 0; j-- {
		cm := e.comments[j]
		if !cm.OwnLine || cm.EndLine+1 != cur || cm.Span.Start < floor {
			break
		}
		first = j
		cur = cm.StartLine
	}
	if first < 0 {
		return ""
	}
	return e.unit.Text(source.Span{
		Start: e.unit.LineStart(e.comments[first].StartLine),
		End:   e.unit.LineStart(line),
	})
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
