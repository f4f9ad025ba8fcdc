// Package formatter turns the Printer's canonical output into a minimal
// set of line-level text edits against a document's current text, per
// spec.md §4.4. This is the shape the LSP `textDocument/formatting`
// handler returns: a list of replacements instead of a single "replace
// the whole document" edit, so editors can show (and undo) a reviewable
// diff instead of a full-file rewrite.
package formatter

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/csl-lang/csl/ast"
	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/printer"
)

// Edit is one line-range replacement: the half-open [StartLine, EndLine)
// range of existing lines (0-based) to delete, and the text to insert
// in their place.
type Edit struct {
	StartLine uint32
	EndLine   uint32
	NewText   string
}

// splitLines splits text into lines, keeping the trailing terminator off
// each entry (difflib diffs content, not terminators) but preserving a
// final empty line when text ends with one, so line counts line up with
// editor buffers.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	return lines
}

// Format computes the edits that transform currentText into the
// canonical rendering of f. Diff granularity is line-based throughout
// (spec.md §4.4): even a single-character change inside a line is
// reported as a whole-line replacement, keeping edits reviewable rather
// than byte-precise.
func Format(currentText string, f *ast.File) []Edit {
	canonical := printer.Print(f)
	return diffLines(currentText, canonical)
}

func diffLines(oldText, newText string) []Edit {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	sm := difflib.NewMatcher(oldLines, newLines)
	var edits []Edit
	for _, op := range sm.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		replacement := strings.Join(newLines[op.J1:op.J2], "\n")
		if op.J2 > op.J1 {
			replacement += "\n"
		}
		edits = append(edits, Edit{
			StartLine: uint32(op.I1),
			EndLine:   uint32(op.I2),
			NewText:   replacement,
		})
	}
	return edits
}

// Apply replays edits against currentText, for callers (such as the
// formatter tests) that need the resulting text rather than an LSP edit
// list.
func Apply(currentText string, edits []Edit) string {
	lines := splitLines(currentText)
	var out []string
	cursor := uint32(0)
	for _, e := range edits {
		out = append(out, lines[cursor:e.StartLine]...)
		if e.NewText != "" {
			out = append(out, strings.Split(strings.TrimSuffix(e.NewText, "\n"), "\n")...)
		}
		cursor = e.EndLine
	}
	out = append(out, lines[cursor:]...)
	return strings.Join(out, "\n")
}

// ToRegion converts an Edit's line range to a region.Region spanning
// whole lines, for the LSP adapter's TextEdit translation.
func (e Edit) ToRegion() region.Region {
	return region.Region{
		Start: region.Position{Line: e.StartLine, Column: 0},
		End:   region.Position{Line: e.EndLine, Column: 0},
	}
}
