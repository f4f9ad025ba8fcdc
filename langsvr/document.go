package langsvr

import (
	"github.com/csl-lang/csl/ast"
	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/internal/report"
	"github.com/csl-lang/csl/internal/token"
	"github.com/csl-lang/csl/lexer"
	"github.com/csl-lang/csl/parser"
)

// document is the cached analysis of one open text document, mirroring
// CslLangSvr.cpp's DocumentData: the raw text plus the token streams
// and AST derived from it, recomputed in full on every didOpen/didChange
// (CSL documents are small configuration schemas, not whole source
// trees, so incremental reanalysis is not worth the complexity spec.md
// leaves as a non-goal).
type document struct {
	text string

	tokensWithComments []token.Token
	file               *ast.File
	report             *report.Report
}

func analyze(text string) *document {
	tokensWithComments, _ := lexer.Lex(text, true)
	f, rep := parser.Parse(text)
	return &document{
		text:               text,
		tokensWithComments: tokensWithComments,
		file:               f,
		report:             rep,
	}
}

// tokenAt returns the token whose region contains pos, if any.
func (d *document) tokenAt(pos region.Position) (token.Token, bool) {
	for _, t := range d.tokensWithComments {
		if t.Region.Contains(pos) {
			return t, true
		}
	}
	return token.Token{}, false
}

// keyByID dereferences a KeyID recorded in a DefRef, or nil if absent.
func (d *document) keyByID(id ast.KeyID) *ast.KeyDefinition {
	if id.Nil() {
		return nil
	}
	return d.file.Key(id)
}
