package lexer

import "github.com/csl-lang/csl/internal/token"

// reservedKeywordOrder and typeKeywordOrder fix an iteration order over
// the keyword sets; none of the literals is a prefix of another, so
// order has no effect on matching, only on determinism of the loop.
var reservedKeywordOrder = []string{
	"config", "constraints", "requires", "conflicts", "with",
	"validate", "exists", "count_keys", "all_keys", "wildcard_keys", "subset", "*",
}

var typeKeywordOrder = []string{"any{}", "any[]", "string", "number", "boolean", "datetime", "duration"}

// tryWord dispatches spec.md §4.1 classes 7-10: boolean, type keyword,
// reserved keyword (including the wildcard-key token `*`), then
// identifier. A word-class literal only matches when it is not
// immediately followed by another identifier character or `-`
// (CslLexer.cpp's `(?![-\w])` lookahead) — so `stringify` lexes as one
// identifier, not the type keyword `string` plus identifier `ify`.
func (l *Lexer) tryWord() bool {
	rest := l.rest()

	if lit, ok := matchWordBoundary(rest, "true", "false"); ok {
		return l.emitWord(lit, token.Boolean, token.Descriptor{Category: token.BooleanCategory})
	}
	if lit, ok := matchWordBoundary(rest, reservedKeywordOrder...); ok {
		return l.emitWord(lit, token.Keyword, token.Descriptor{})
	}
	if lit, ok := matchWordBoundary(rest, typeKeywordOrder...); ok {
		return l.emitWord(lit, token.Type, token.Descriptor{})
	}
	return l.tryIdentifier()
}

// matchWordBoundary returns the first candidate in order that is a
// prefix of rest and not followed by another word character or '-'. The
// check applies to every candidate, "*" and "any{}"/"any[]" included: in
// `a*b` the "*" is followed by a word character, so it is not taken as
// the wildcard keyword and lexes as the operator "*" instead.
func matchWordBoundary(rest string, candidates ...string) (string, bool) {
	for _, c := range candidates {
		if len(rest) < len(c) || rest[:len(c)] != c {
			continue
		}
		if !wordBoundaryOK(rest, len(c)) {
			continue
		}
		return c, true
	}
	return "", false
}

func (l *Lexer) emitWord(lit string, kind token.Kind, prop token.Descriptor) bool {
	start := l.position()
	for range []rune(lit) {
		l.advance()
	}
	l.push(lit, kind, prop, start)
	return true
}
