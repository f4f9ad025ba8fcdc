// Package region implements the position and span types used throughout
// the CSL toolchain: the lexer stamps every token with a Region, the
// parser stamps every AST node with one, and the language server adapter
// translates Regions to and from LSP ranges.
package region

import "fmt"

// Position is a 0-based (line, column) location in a source file.
//
// Lines and columns are counted in UTF-16 code units, to match the LSP
// specification's position encoding; the lexer is responsible for
// advancing columns correctly across multi-byte runes.
type Position struct {
	Line   uint32
	Column uint32
}

// Less reports whether p sorts strictly before other, using the total
// lexicographic order on (Line, Column).
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// LessEqual reports whether p sorts at or before other.
func (p Position) LessEqual(other Position) bool {
	return !other.Less(p)
}

// String implements fmt.Stringer, rendering 1-based line/column the way
// editors and the CLI diagnostic printer display positions to users.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Region is a half-open [Start, End) span of source text.
type Region struct {
	Start Position
	End   Position
}

// Contains reports whether p falls within this region: start <= p < end.
func (r Region) Contains(p Position) bool {
	return r.Start.LessEqual(p) && p.Less(r.End)
}

// LineSpan returns the number of lines this region covers past its first.
// A region entirely on one line has LineSpan() == 0.
func (r Region) LineSpan() uint32 {
	return r.End.Line - r.Start.Line
}

// ColSpan returns End.Column - Start.Column. Only meaningful when
// LineSpan() == 0; callers that need multi-line width should use
// LineSpan first.
func (r Region) ColSpan() uint32 {
	return r.End.Column - r.Start.Column
}

// Grow extends r so that it also covers p. Used by the lexer's
// buffered-unknown-token accumulator, which grows a Region one character
// at a time.
func (r Region) Grow(p Position) Region {
	end := Position{Line: p.Line, Column: p.Column + 1}
	if r == (Region{}) {
		return Region{Start: p, End: end}
	}
	r.End = end
	return r
}

// Smaller reports whether r is strictly smaller than other by
// (LineSpan, ColSpan) — used by the language server to find the
// innermost enclosing table type at a cursor position, per spec.md
// §4.6's handleCompletion / findDeepestTableTypeAtPosition behavior.
func (r Region) Smaller(other Region) bool {
	if r.LineSpan() != other.LineSpan() {
		return r.LineSpan() < other.LineSpan()
	}
	return r.ColSpan() < other.ColSpan()
}

// String renders a region as "line:col-line:col" for debug/log output.
func (r Region) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}
