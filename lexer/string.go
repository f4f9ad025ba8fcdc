package lexer

import (
	"fmt"
	"strings"

	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/internal/report"
	"github.com/csl-lang/csl/internal/token"
)

// rawTagChar is the raw-string/raw-identifier tag alphabet from spec.md
// §4.1 class 3: `[a-zA-Z0-9!"#%&'*+,\-./:;<=>?\[\]^_{|}~]`.
func isRawTagChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(`!"#%&'*+,-./:;<=>?[]^_{|}~`, r)
}

const maxRawTagLen = 16

// tryStringLiteral scans spec.md §4.1 class 3's `"..."` and `R"tag(...)tag"`
// forms. Because the whole source is scanned as one rune slice rather
// than line by line, an unterminated string's "glue the next line and
// keep scanning" behavior falls out for free: the inner scan loop simply
// keeps consuming runes, embedded newlines included, stopping only at
// the closing delimiter or EOF.
func (l *Lexer) tryStringLiteral() bool {
	if l.peek() == '"' {
		return l.scanDelimited('"', false)
	}
	if l.peek() == 'R' && l.peekAt(1) == '"' {
		return l.scanRawDelimited('"', false)
	}
	return false
}

// tryIdentifier scans spec.md §4.1 class 10: bare, backtick-quoted, or
// raw-backtick-quoted identifiers.
func (l *Lexer) tryIdentifier() bool {
	if isIdentStart(l.peek()) {
		start := l.position()
		var b strings.Builder
		for !l.atEOF() && isIdentCont(l.peek()) {
			b.WriteRune(l.advance())
		}
		l.push(b.String(), token.Identifier, token.Descriptor{}, start)
		return true
	}
	if l.peek() == '`' {
		return l.scanDelimited('`', true)
	}
	if l.peek() == 'R' && l.peekAt(1) == '`' {
		return l.scanRawDelimited('`', true)
	}
	return false
}

// scanDelimited scans a basic (escaped) string or backtick identifier:
// open and close are the same character, backslash-escapes are honored
// so an escaped delimiter doesn't end the token early.
func (l *Lexer) scanDelimited(quote rune, isIdent bool) bool {
	start := l.position()
	startIdx := l.pos
	l.advance() // opening delimiter

	var raw strings.Builder
	if !isIdent {
		raw.WriteRune(quote)
	}
	closed := false
	for !l.atEOF() {
		r := l.peek()
		if r == quote {
			l.advance()
			closed = true
			break
		}
		if r == '\\' {
			l.advance()
			if l.atEOF() {
				break
			}
			raw.WriteByte('\\')
			raw.WriteRune(l.peek())
			l.validateEscape()
			continue
		}
		if !isIdent && r < 0x20 && r != '\t' {
			at := l.position()
			l.report.Error(fmt.Errorf("Invalid character in string literal."), report.At(region.Region{Start: at, End: at}))
		}
		raw.WriteRune(r)
		l.advance()
	}
	if closed && !isIdent {
		raw.WriteRune(quote)
	}

	content := raw.String()
	if !closed {
		kind := "string"
		if isIdent {
			kind = "identifier"
		}
		l.report.Error(fmt.Errorf("Unterminated %s literal.", kind), report.At(region.Region{Start: start, End: l.position()}))
	}
	if l.hasInvalidUTF8(startIdx, l.pos) {
		l.report.Error(fmt.Errorf("Invalid UTF-8 in %s.", map[bool]string{true: "identifier", false: "string literal"}[isIdent]), report.At(region.Region{Start: start, End: l.position()}))
	}

	if isIdent {
		l.push(content, token.Identifier, token.Descriptor{}, start)
		return true
	}

	kind := token.Basic
	if strings.Contains(content, "\n") || strings.Contains(content, `\n`) {
		kind = token.MultiLineBasic
	}
	l.push(content, token.String, token.Descriptor{Category: token.StringCategory, Str: kind}, start)
	return true
}

// validateEscape checks the escape character currently at the cursor
// (just after a consumed backslash) and advances past it (and any
// additional digits it requires), per spec.md §4.1's escape table. An
// unrecognized single-character escape is not an error (spec.md: "Unknown
// escape \c produces c").
func (l *Lexer) validateEscape() {
	r := l.peek()
	switch r {
	case 'a', 'b', 't', 'n', 'v', 'f', 'r', '"', '\'', '?', '\\', '`':
		l.advance()
	case '0', '1', '2', '3', '4', '5', '6', '7':
		l.advance()
		for i := 0; i < 2 && isOctalDigit(l.peek()); i++ {
			l.advance()
		}
	case 'x':
		start := l.position()
		l.advance()
		n := 0
		for isHexDigit(l.peek()) {
			l.advance()
			n++
		}
		if n == 0 {
			l.report.Error(fmt.Errorf("Invalid hex escape sequence."), report.At(region.Region{Start: start, End: l.position()}))
		}
	case 'u':
		l.requireHexDigits(4)
	case 'U':
		l.requireHexDigits(8)
	default:
		if !l.atEOF() {
			l.advance()
		}
	}
}

func (l *Lexer) requireHexDigits(n int) {
	start := l.position()
	l.advance()
	got := 0
	for got < n && isHexDigit(l.peek()) {
		l.advance()
		got++
	}
	if got != n {
		l.report.Error(fmt.Errorf("Invalid unicode escape sequence."), report.At(region.Region{Start: start, End: l.position()}))
	}
}

func isOctalDigit(r rune) bool { return r >= '0' && r <= '7' }
func isHexDigit(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

// scanRawDelimited scans `R"tag(...)tag"` or “ R`tag(...)tag` “. The
// tag is read up to maxRawTagLen characters from the raw-tag alphabet; a
// longer tag is an error but parsing still proceeds using whatever was
// scanned, per spec.md's "emits diagnostics and continues" philosophy.
func (l *Lexer) scanRawDelimited(quote rune, isIdent bool) bool {
	start := l.position()
	l.advance() // 'R'
	l.advance() // opening quote/backtick

	tagStart := l.position()
	var tag strings.Builder
	for !l.atEOF() && isRawTagChar(l.peek()) {
		tag.WriteRune(l.advance())
	}
	if tag.Len() > maxRawTagLen {
		l.report.Error(fmt.Errorf("Raw %s tag exceeds maximum length of %d.", map[bool]string{true: "identifier", false: "string"}[isIdent], maxRawTagLen),
			report.At(region.Region{Start: tagStart, End: l.position()}))
	}
	tagStr := tag.String()

	if l.peek() != '(' {
		l.report.Error(fmt.Errorf("Malformed raw literal: expected '(' after tag."), report.At(region.Region{Start: start, End: l.position()}))
		l.push("R"+tagStr, token.Unknown, token.Descriptor{}, start)
		return true
	}
	l.advance()

	closer := ")" + tagStr + string(quote)
	var content strings.Builder
	closed := false
	for !l.atEOF() {
		if l.hasPrefix(closer) {
			for range []rune(closer) {
				l.advance()
			}
			closed = true
			break
		}
		content.WriteRune(l.peek())
		l.advance()
	}

	text := content.String()
	if !closed {
		l.report.Error(fmt.Errorf("Unterminated raw literal."), report.At(region.Region{Start: start, End: l.position()}))
	}
	if !isRawContentValid(text) {
		l.report.Error(fmt.Errorf("Invalid character in raw literal."), report.At(region.Region{Start: start, End: l.position()}))
	}

	if isIdent {
		l.push(text, token.Identifier, token.Descriptor{}, start)
		return true
	}
	kind := token.Raw
	if strings.Contains(text, "\n") {
		kind = token.MultiLineRaw
	}
	l.push(text, token.String, token.Descriptor{Category: token.StringCategory, Str: kind}, start)
	return true
}

// isRawContentValid rejects the control characters CslLexer.cpp bans
// from raw string/identifier content, while allowing embedded tabs and
// well-formed CRLF sequences (the whole point of the raw form is to
// carry verbatim multi-line text).
func isRawContentValid(s string) bool {
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r >= 0x00 && r <= 0x08:
			return false
		case r == 0x0B || r == 0x0C:
			return false
		case r >= 0x0E && r <= 0x1F:
			return false
		case r == 0x7F:
			return false
		case r == 0x0D:
			if i+1 >= len(runes) || runes[i+1] != 0x0A {
				return false
			}
		}
	}
	return true
}
