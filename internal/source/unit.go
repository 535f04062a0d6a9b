package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// StdinName is the display name used for a unit read from standard input.
const StdinName = "<stdin>"

// Unit is the text of one C translation unit. It is immutable once built.
type Unit struct {
	Path    string
	Content []byte
	lineIdx []uint32 // offsets of every '\n'
}

// NewUnit normalizes CRLF line endings and a leading BOM, then indexes lines.
func NewUnit(path string, content []byte) (*Unit, error) {
	content, _ = removeBOM(content)
	content, _ = normalizeCRLF(content)

	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		return nil, fmt.Errorf("%s: source too large: %w", displayName(path), err)
	}

	return &Unit{
		Path:    path,
		Content: content,
		lineIdx: buildLineIndex(content),
	}, nil
}

// Load reads a translation unit from disk.
func Load(path string) (*Unit, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return NewUnit(path, content)
}

// Read reads a translation unit from r. path is used for display and guard naming only.
func Read(path string, r io.Reader) (*Unit, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", displayName(path), err)
	}
	return NewUnit(path, content)
}

// Name returns the path for display, or StdinName when the unit has no path.
func (u *Unit) Name() string {
	return displayName(u.Path)
}

// Base returns the file name without directory, or "" for stdin.
func (u *Unit) Base() string {
	if displayName(u.Path) == StdinName {
		return ""
	}
	return filepath.Base(u.Path)
}

// Len returns the content length in bytes.
func (u *Unit) Len() uint32 {
	return uint32(len(u.Content))
}

// Text returns the source text covered by span.
func (u *Unit) Text(span Span) string {
	end := min(span.End, u.Len())
	if span.Start >= end {
		return ""
	}
	return string(u.Content[span.Start:end])
}

// Position converts a byte offset into a 1-based line and column.
func (u *Unit) Position(off uint32) LineCol {
	return toLineCol(u.lineIdx, off)
}

// LineCount returns the number of lines. A trailing newline does not start a new line.
func (u *Unit) LineCount() uint32 {
	n := uint32(len(u.lineIdx))
	if len(u.Content) > 0 && u.Content[len(u.Content)-1] != '\n' {
		n++
	}
	return n
}

// LineStart returns the offset of the first byte of the given 1-based line.
func (u *Unit) LineStart(line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	idx := int(line - 2)
	if idx < len(u.lineIdx) {
		return u.lineIdx[idx] + 1
	}
	return u.Len()
}

// LineEnd returns the offset of the '\n' terminating the given line, or the content length.
func (u *Unit) LineEnd(line uint32) uint32 {
	if line == 0 {
		return 0
	}
	idx := int(line - 1)
	if idx < len(u.lineIdx) {
		return u.lineIdx[idx]
	}
	return u.Len()
}

// Line returns the text of a 1-based line without its newline.
func (u *Unit) Line(line uint32) string {
	return u.Text(Span{Start: u.LineStart(line), End: u.LineEnd(line)})
}

// IsBlankBefore reports whether only spaces and tabs precede off on its line.
func (u *Unit) IsBlankBefore(off uint32) bool {
	start := u.LineStart(u.Position(off).Line)
	for i := start; i < off; i++ {
		if c := u.Content[i]; c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return StdinName
	}
	return path
}
