package langsvr

import "github.com/csl-lang/csl/internal/region"

// lspPosition is the wire shape of an LSP Position: 0-based line and
// UTF-16-code-unit character offset, which is exactly how region.Position
// already counts columns (see internal/region's doc comment), so no
// re-encoding is needed in either direction.
type lspPosition struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

type lspRange struct {
	Start lspPosition `json:"start"`
	End   lspPosition `json:"end"`
}

type lspLocation struct {
	URI   string   `json:"uri"`
	Range lspRange `json:"range"`
}

type lspTextEdit struct {
	Range   lspRange `json:"range"`
	NewText string   `json:"newText"`
}

func toLSPPosition(p region.Position) lspPosition {
	return lspPosition{Line: p.Line, Character: p.Column}
}

func fromLSPPosition(p lspPosition) region.Position {
	return region.Position{Line: p.Line, Column: p.Character}
}

func toLSPRange(r region.Region) lspRange {
	return lspRange{Start: toLSPPosition(r.Start), End: toLSPPosition(r.End)}
}

func toLSPLocation(uri string, r region.Region) lspLocation {
	return lspLocation{URI: uri, Range: toLSPRange(r)}
}
