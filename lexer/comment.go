package lexer

import (
	"fmt"
	"strings"

	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/internal/report"
	"github.com/csl-lang/csl/internal/token"
)

// tryComment scans a "// ..." line comment, per spec.md §4.1 class 2.
// The comment runs to end of line (exclusive of the terminator). Control
// characters other than tab are rejected, matching CslLexer.cpp's content
// validation for comments.
func (l *Lexer) tryComment() bool {
	if !l.hasPrefix("//") {
		return false
	}
	start := l.position()
	startIdx := l.pos
	l.advance()
	l.advance()

	var text strings.Builder
	for !l.atEOF() {
		r := l.peek()
		if r == '\n' || r == '\r' {
			break
		}
		if (r < 0x20 && r != '\t') || r == 0x7F {
			at := l.position()
			l.report.Error(fmt.Errorf("Invalid character in comment."), report.At(region.Region{Start: at, End: at}))
		}
		text.WriteRune(r)
		l.advance()
	}
	if l.hasInvalidUTF8(startIdx, l.pos) {
		l.report.Error(fmt.Errorf("Invalid UTF-8 in comment."), report.At(region.Region{Start: start, End: l.position()}))
	}

	if l.preserveComment {
		l.push("//"+text.String(), token.Comment, token.Descriptor{}, start)
	} else {
		// Still flush any pending unknown-token buffer even though this
		// token isn't retained, since a comment is a recognized token class.
		l.stream.Flush()
	}
	return true
}
