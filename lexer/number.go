package lexer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/csl-lang/csl/internal/report"
	"github.com/csl-lang/csl/internal/token"
)

// Number patterns ported from CslLexer.cpp's ParseNumericLiteral. Signs
// are deliberately not part of these patterns: the original regexes
// never capture a leading '+'/'-' either, so a signed default value
// (spec.md §4.3's "leading +/- followed by a number literal") is always
// two tokens — an Operator and a Number — joined by the parser, not the
// lexer.
// Go's RE2 engine has no negative lookahead, so the original's
// `0(?![xob])` ("a lone zero, provided it isn't the start of a 0x/0o/0b
// prefix") is implemented as a small hand-written check (decimalZero)
// instead of being folded into these patterns.
var (
	hexIntRe      = regexp.MustCompile(`^0x[\da-fA-F]+(?:_?[\da-fA-F]+)*`)
	octIntRe      = regexp.MustCompile(`^0o[0-7]+(?:_?[0-7]+)*`)
	binIntRe      = regexp.MustCompile(`^0b[01]+(?:_?[01]+)*`)
	decimalIntRe  = regexp.MustCompile(`^[1-9]+(?:_?\d+)*`)
	fracRe        = regexp.MustCompile(`^\.(?:\d+_)*\d+`)
	exponentRe    = regexp.MustCompile(`^e[-+]?\d+(?:_?\d+)*`)
	specialNumRe  = regexp.MustCompile(`^(nan|inf)`)
	identBoundary = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
)

// decimalZero matches a lone "0" digit, but only when not immediately
// followed by 'x', 'o', or 'b' (which would instead start a prefixed
// integer form, possibly a malformed one that matches nothing at all).
func decimalZero(rest string) string {
	if len(rest) == 0 || rest[0] != '0' {
		return ""
	}
	if len(rest) > 1 && (rest[1] == 'x' || rest[1] == 'o' || rest[1] == 'b') {
		return ""
	}
	return "0"
}

// matchInteger tries the prefixed forms, then plain decimal.
func matchInteger(rest string) string {
	if m := hexIntRe.FindString(rest); m != "" {
		return m
	}
	if m := octIntRe.FindString(rest); m != "" {
		return m
	}
	if m := binIntRe.FindString(rest); m != "" {
		return m
	}
	if m := decimalIntRe.FindString(rest); m != "" {
		return m
	}
	return decimalZero(rest)
}

// matchFloat tries a decimal integer part (never a prefixed form — hex/
// octal/binary floats don't exist) followed by an optional fraction and
// exponent; a match with neither fraction nor exponent is not a genuine
// float (the bare integer part always wins that tie in tryNumber).
func matchFloat(rest string) string {
	base := decimalIntRe.FindString(rest)
	if base == "" {
		base = decimalZero(rest)
	}
	if base == "" {
		return ""
	}
	m := base
	if frac := fracRe.FindString(rest[len(m):]); frac != "" {
		m += frac
	}
	if exp := exponentRe.FindString(rest[len(m):]); exp != "" {
		m += exp
	}
	return m
}

// tryNumber scans spec.md §4.1 class 6: integers in decimal/hex/octal/
// binary, floats with fraction and exponent, and the nan/inf special
// forms. When an identifier match at the same position would be longer
// than the numeric match, the number is discarded entirely ("letters
// win over number prefix"). A bare identifier cannot start with a digit,
// so digit-led text is never claimed this way: `2players` lexes as the
// number `2` followed by the identifier `players`.
func (l *Lexer) tryNumber() bool {
	rest := l.rest()

	if m := specialNumRe.FindString(rest); m != "" && wordBoundaryOK(rest, len(m)) {
		kind := token.NaN
		if m == "inf" {
			kind = token.Infinity
		}
		return l.emitNumber(m, token.Descriptor{Category: token.NumericCategory, Numeric: kind})
	}

	intMatch := matchInteger(rest)
	floatMatch := matchFloat(rest)

	var m string
	var kind token.NumericKind
	switch {
	case intMatch == "" && floatMatch == "":
		return false
	case len(intMatch) >= len(floatMatch):
		m, kind = intMatch, token.Integer
	default:
		m, kind = floatMatch, token.Float
	}

	if identMatch := identBoundary.FindString(rest); len(identMatch) > len(m) {
		return false // letters win over number prefix
	}

	if !isNumberReasonablyGrouped(m) {
		l.report.Warn(fmt.Errorf("Number literal is not grouped reasonably."), report.At(l.regionFor(m)))
	}
	return l.emitNumber(m, token.Descriptor{Category: token.NumericCategory, Numeric: kind})
}

func wordBoundaryOK(rest string, matchLen int) bool {
	if matchLen >= len(rest) {
		return true
	}
	r := rune(rest[matchLen])
	return !(r == '_' || r == '-' || isIdentCont(r))
}

func (l *Lexer) emitNumber(m string, prop token.Descriptor) bool {
	start := l.position()
	for range []rune(m) {
		l.advance()
	}
	l.push(m, token.Number, prop, start)
	return true
}

// isNumberReasonablyGrouped ports CslLexer.cpp's isNumberReasonablyGrouped.
// On each side of the decimal point the leading underscore-separated group
// may have any length; every later group must be the same length (and
// that length must be >= 2), or — before the point only — the later
// groups must be length 2 with a final group of length 3 (thousands
// grouping). So `1_000_000` passes and `1_0_0_0` does not.
func isNumberReasonablyGrouped(content string) bool {
	dot := strings.IndexByte(content, '.')
	var beforeDot, afterDot string
	if dot < 0 {
		beforeDot = content
	} else {
		beforeDot = content[:dot]
		afterDot = content[dot+1:]
	}
	if len(beforeDot) > 2 && beforeDot[0] == '0' && (beforeDot[1] == 'b' || beforeDot[1] == 'o' || beforeDot[1] == 'x') {
		beforeDot = beforeDot[2:]
	}

	if !groupsOK(beforeDot, true) {
		return false
	}
	return groupsOK(afterDot, false)
}

// groupsOK checks one side of the decimal point. allowThousands permits
// the "groups of 2, final group of 3" shape (only meaningful before the
// point); after the point every group past the first must share one
// uniform length.
func groupsOK(s string, allowThousands bool) bool {
	if s == "" {
		return true
	}
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return true // no underscores
	}
	for _, p := range parts {
		if p == "" {
			return false // "1__000"
		}
	}
	sizes := make([]int, len(parts))
	for i, p := range parts {
		sizes[i] = len(p)
	}

	allSame := true
	for i := 1; i < len(sizes); i++ {
		if sizes[i] != sizes[1] {
			allSame = false
			break
		}
	}
	if allSame {
		return sizes[1] != 1
	}
	if !allowThousands {
		return false
	}

	for i := 1; i < len(sizes)-1; i++ {
		if sizes[i] != 2 {
			return false
		}
	}
	return sizes[len(sizes)-1] == 3
}
