// Package lexer turns CSL source text into a token.Stream plus
// lexical diagnostics, per spec.md §4.1.
//
// The scanning style (a cursor over the full input with Peek/HasPrefix/
// Advance primitives feeding a big priority-ordered switch) is grounded
// on bufbuild/protocompile's ast2/lexer.go, which scans a whole file in
// one pass rather than protocompile's older line-oriented goyacc lexer
// (parser/lexer.go). Unlike the original C++ implementation — which
// reads one line at a time and explicitly glues continuation lines for
// unterminated strings/identifiers (CslLexer.cpp's customGetline) — this
// lexer scans the entire decoded rune slice in one pass, so a string or
// identifier that spans a newline falls out naturally: there is nothing
// to "glue", the scan simply keeps consuming runes, embedded newlines
// included, until it finds the closing delimiter or reaches EOF.
package lexer

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/internal/report"
	"github.com/csl-lang/csl/internal/token"
)

// punctuators are checked before the operator class (CslLexer.cpp tries
// ParsePunctuator before ParseOperator in its main loop, even though
// spec.md's doc table numbers the operator class before the punctuator
// class — that numbering is descriptive, not the scan order). This is
// what lets two-character "=>" win over the single-character "=" and
// "[", "]", "{", "}", ",", ":", ";", "@" get a stable Punctuator kind:
// those characters are also listed among spec.md's operators, but since
// punctuator matching runs first they never reach the operator check.
var punctuators = []string{"=>", "{", "}", "[", "]", ",", ":", ";", "@"}

// operators, longest match first, per spec.md §4.1 class 11. "(" and
// ")" only ever resolve here (they are not in the punctuator set above).
var operators = []string{
	"==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
	"~", "!", "+", "-", ".", "@", "[", "(",
	"*", "/", "%", "<", ">", "&", "^", "|", "=", "]", ")", "?", ":",
}

// Lexer scans one CSL source text.
type Lexer struct {
	src  []rune
	pos  int // index into src
	line uint32
	col  uint32 // UTF-16 code units since the start of the current line

	// invalidUTF8[i] is true when src[i] stands in for a byte sequence
	// that could not be decoded as UTF-8 (as opposed to a legitimately
	// encoded U+FFFD). Kept alongside src because []rune(text) alone is
	// lossy: it replaces bad sequences with utf8.RuneError, leaving no
	// way for a later scan to tell "invalid input" apart from "valid
	// input that happens to be U+FFFD".
	invalidUTF8 []bool

	preserveComment bool
	stream          token.Stream
	report          report.Report
}

// Lex runs the lexer over text and returns the resulting token stream
// and diagnostics. When preserveComment is false, Comment tokens are
// scanned (so they still terminate whitespace/identifier runs and flush
// the unknown-token buffer) but are not appended to the stream — this
// is the "twice per document" split spec.md §4.6 requires: langsvr
// calls Lex(text, false) to feed the parser and Lex(text, true)
// separately for semantic highlighting.
func Lex(text string, preserveComment bool) ([]token.Token, *report.Report) {
	src, invalid := decodeRunes(text)
	l := &Lexer{src: src, invalidUTF8: invalid, preserveComment: preserveComment}
	l.run()
	return l.stream.Tokens(), &l.report
}

// decodeRunes decodes text one rune at a time, recording (separately
// from the decoded rune slice) which indices came from a byte sequence
// that failed to decode, so string/comment scans can still detect
// invalid UTF-8 even though the decoded rune itself is indistinguishable
// from a genuine U+FFFD.
func decodeRunes(text string) ([]rune, []bool) {
	src := make([]rune, 0, len(text))
	invalid := make([]bool, 0, len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		src = append(src, r)
		invalid = append(invalid, r == utf8.RuneError && size == 1)
		i += size
	}
	return src, invalid
}

// hasInvalidUTF8 reports whether any rune in src[from:to) stands in for
// an invalid byte sequence.
func (l *Lexer) hasInvalidUTF8(from, to int) bool {
	if to > len(l.invalidUTF8) {
		to = len(l.invalidUTF8)
	}
	for i := from; i < to; i++ {
		if l.invalidUTF8[i] {
			return true
		}
	}
	return false
}

func (l *Lexer) run() {
	for !l.atEOF() {
		if l.tryWhitespace() {
			continue
		}
		if l.tryComment() {
			continue
		}
		if l.tryStringLiteral() {
			continue
		}
		if l.tryDatetime() {
			continue
		}
		if l.tryDuration() {
			continue
		}
		if l.tryNumber() {
			continue
		}
		if l.tryWord() { // boolean, type keyword, reserved keyword, identifier
			continue
		}
		if l.tryPunctOrOperator(punctuators, token.Punctuator) {
			continue
		}
		if l.tryPunctOrOperator(operators, token.Operator) {
			continue
		}

		// Unrecognized character: accumulate into the buffered unknown run.
		r := l.peek()
		at := l.position()
		l.advance()
		l.stream.AppendUnknown(r, at)
	}
	l.stream.Flush()

	for _, t := range l.stream.Tokens() {
		if t.Kind == token.Unknown {
			l.report.Error(fmt.Errorf("Unknown token: %s.", t.Value), report.At(t.Region))
		}
	}
}

// ---- cursor primitives ----

func (l *Lexer) atEOF() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() rune {
	if l.atEOF() {
		return utf8.RuneError
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return utf8.RuneError
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) position() region.Position {
	return region.Position{Line: l.line, Column: l.col}
}

// advance consumes one rune and updates line/column, treating "\r\n" and
// "\n" as line terminators. A lone '\r' is reported as an error but the
// cursor still advances past it as if it were whitespace.
func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	switch r {
	case '\n':
		l.line++
		l.col = 0
	case '\r':
		if !l.atEOF() && l.src[l.pos] == '\n' {
			// Swallow the '\n' as part of the same terminator.
			l.pos++
			l.line++
			l.col = 0
		} else {
			at := l.position()
			l.report.Error(fmt.Errorf("line ending not valid"), report.At(region.Region{Start: at, End: at}))
			l.col++
		}
	default:
		l.col += uint32(utf16.RuneLen(r))
	}
	return r
}

func (l *Lexer) hasPrefix(s string) bool {
	rs := []rune(s)
	if l.pos+len(rs) > len(l.src) {
		return false
	}
	for i, r := range rs {
		if l.src[l.pos+i] != r {
			return false
		}
	}
	return true
}

// rest returns the unscanned remainder as a string, for regexp-based
// matching (datetime/duration).
func (l *Lexer) rest() string {
	return string(l.src[l.pos:])
}

func (l *Lexer) tryWhitespace() bool {
	r := l.peek()
	if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
		return false
	}
	for {
		r = l.peek()
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			break
		}
		l.advance()
		if l.atEOF() {
			break
		}
	}
	return true
}

// regionFor computes the region a match of the given text would occupy
// if scanned starting at the cursor's current position, without
// actually consuming it — used when a diagnostic must be attached to a
// match before deciding whether to emit it as a token.
func (l *Lexer) regionFor(match string) region.Region {
	start := l.position()
	line, col := start.Line, start.Column
	for _, r := range match {
		if r == '\n' {
			line++
			col = 0
		} else {
			col += uint32(utf16.RuneLen(r))
		}
	}
	return region.Region{Start: start, End: region.Position{Line: line, Column: col}}
}

// push flushes the buffer and appends a finished token whose region runs
// from start to the lexer's current position.
func (l *Lexer) push(value string, kind token.Kind, prop token.Descriptor, start region.Position) {
	l.stream.Push(value, kind, prop, region.Region{Start: start, End: l.position()})
}

func (l *Lexer) tryPunctOrOperator(set []string, kind token.Kind) bool {
	for _, op := range set {
		if l.hasPrefix(op) {
			start := l.position()
			for range []rune(op) {
				l.advance()
			}
			l.push(op, kind, token.Descriptor{}, start)
			return true
		}
	}
	return false
}

// isIdentStart/isIdentCont match CslLexer.cpp's bare-identifier regex
// `[a-zA-Z_][a-zA-Z0-9_]*` exactly — ASCII only, not Unicode letters.
func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
