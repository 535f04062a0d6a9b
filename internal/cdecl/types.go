package cdecl

import "github.com/mvp-joe/autoheaders/internal/source"

// Kind classifies a top-level construct.
type Kind int

const (
	KindOther Kind = iota
	KindTypedef
	KindTag // struct, union or enum specifier at top level
	KindPrototype
	KindFunction // definition with a body
	KindVariable
	KindMacro
	KindInclude
	KindConditional // any #if/#ifdef/#ifndef that is not a marker block
)

var kindNames = map[Kind]string{
	KindOther:       "other",
	KindTypedef:     "typedef",
	KindTag:         "tag",
	KindPrototype:   "prototype",
	KindFunction:    "function",
	KindVariable:    "variable",
	KindMacro:       "macro",
	KindInclude:     "include",
	KindConditional: "conditional",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsFunction reports whether the kind is a function prototype or definition.
func (k Kind) IsFunction() bool {
	return k == KindPrototype || k == KindFunction
}

// Storage is the storage-class qualifier that matters for visibility.
type Storage int

const (
	StorageNone Storage = iota
	StorageStatic
	StorageExtern
)

func (s Storage) String() string {
	switch s {
	case StorageStatic:
		return "static"
	case StorageExtern:
		return "extern"
	default:
		return "none"
	}
}

// Block is the marker conditional enclosing a declaration.
type Block int

const (
	BlockNone Block = iota
	BlockHeader
	BlockPrivateHeader
)

func (b Block) String() string {
	switch b {
	case BlockHeader:
		return "header"
	case BlockPrivateHeader:
		return "private_header"
	default:
		return "none"
	}
}

// Markers are the macro names that open marker blocks.
type Markers struct {
	Public  string
	Private string
}

// DefaultMarkers returns HEADER and PRIVATE_HEADER.
func DefaultMarkers() Markers {
	return Markers{Public: "HEADER", Private: "PRIVATE_HEADER"}
}

// Chunk is the body of a marker block: the source lines between the
// #ifdef line and its #else or #endif, without surrounding blank lines.
// Headers copy it as written.
type Chunk struct {
	Block Block
	Span  source.Span
	Line  uint32 // first line of the body
	Text  string
}

// Declaration is one top-level construct with its provenance. All text
// fields are copied from the original source, never from the shimmed text.
type Declaration struct {
	Kind    Kind
	Name    string
	Span    source.Span // trailing whitespace excluded
	Line    uint32
	EndLine uint32

	// Text is the verbatim source of the construct.
	Text string
	// Prototype is the definition's text up to its body, for KindFunction.
	Prototype string
	// Bare is a variable declaration without storage class, initializers
	// or the terminating semicolon, for KindVariable.
	Bare string
	// Comment holds the full source lines of the leading comment run,
	// including indentation and the final newline.
	Comment string
	// Indent is the whitespace preceding the construct on its first line.
	Indent string

	Storage Storage
	Block   Block
	// Chunk is the marker block enclosing the declaration, shared by every
	// declaration inside it. Nil outside marker blocks.
	Chunk *Chunk
	// Path is the include target including its delimiters, for KindInclude.
	Path string
}

// Position returns the location of the first byte of the declaration.
func (d Declaration) Position(u *source.Unit) source.LineCol {
	return u.Position(d.Span.Start)
}
