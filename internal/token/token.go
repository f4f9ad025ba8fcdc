package token

import "github.com/csl-lang/csl/internal/region"

// Token is one lexical element of CSL source text.
//
// Unlike ast2.Token in the teacher repository, this Token is a plain
// value type, not an arena handle: CSL's token stream is flat (no
// nested/non-leaf tokens), so there is nothing to gain from compressed
// arena pointers here — the arena treatment from spec.md §9 is reserved
// for the AST (the arena.Arena values held by ast.File), whose nodes
// genuinely do form a graph that
// both the tree and the token↦definition map need to reference.
type Token struct {
	Value  string
	Kind   Kind
	Prop   Descriptor
	Region region.Region
}

// Stream is an ordered list of Tokens plus the buffered-unknown-run
// accumulator described in spec.md §4.1/§9 and grounded on
// original_source/impl/core/shared/Token.h's TokenList.
//
// The accumulator exists so that an arbitrary run of unrecognized
// characters collapses into exactly one Unknown token (and one
// diagnostic) instead of one token per rune.
type Stream struct {
	tokens []Token

	buffered    bool
	bufValue    string
	bufRegion   region.Region
	bufPropKind Kind
}

// Push appends a fully-formed token, first flushing any buffered
// unknown run (mirroring TokenList::AddTokenToList).
func (s *Stream) Push(value string, kind Kind, prop Descriptor, r region.Region) {
	s.Flush()
	s.tokens = append(s.tokens, Token{Value: value, Kind: kind, Prop: prop, Region: r})
}

// AppendUnknown grows the current buffered unknown run by one character,
// mirroring TokenList::AppendBufferedToken.
func (s *Stream) AppendUnknown(ch rune, at region.Position) {
	s.bufValue += string(ch)
	s.bufRegion = s.bufRegion.Grow(at)
	s.buffered = true
}

// Buffered reports whether an unknown run is currently accumulating.
func (s *Stream) Buffered() bool {
	return s.buffered
}

// Flush pushes the accumulated unknown run, if any, as a single Unknown
// token and clears the accumulator. Called before every successfully
// recognized token and once more at end of input.
func (s *Stream) Flush() {
	if s.bufValue == "" {
		return
	}
	s.tokens = append(s.tokens, Token{
		Value:  s.bufValue,
		Kind:   Unknown,
		Region: s.bufRegion,
	})
	s.bufValue = ""
	s.bufRegion = region.Region{}
	s.buffered = false
}

// Tokens returns the finalized token slice. Callers must call Flush
// first if they have been using AppendUnknown directly (the lexer
// always does this at EOF).
func (s *Stream) Tokens() []Token {
	return s.tokens
}

// Len returns the number of complete tokens, plus one more if a run is
// currently buffered (mirroring TokenList::size()).
func (s *Stream) Len() int {
	n := len(s.tokens)
	if s.buffered {
		n++
	}
	return n
}
