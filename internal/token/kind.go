// Package token defines the lexical token and type-descriptor
// vocabulary shared by the lexer, parser, and language server.
//
// The design follows bufbuild/protocompile's ast2.TokenKind (a small
// byte enum with a String method) adapted from a non-leaf, tree-shaped
// token stream (protobuf source needs matched-delimiter non-leaf tokens)
// down to CSL's flat token stream: every CSL token is a leaf, so there
// is no analogue of ast2's IsOpen/IsClose/Children machinery here.
package token

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind byte

const (
	// Unknown marks a run of characters the lexer could not classify.
	// It is the flushed contents of the buffered-unknown-run
	// accumulator described in spec.md §4.1 and §9.
	Unknown Kind = iota
	Comment
	String
	Datetime
	Duration
	Number
	Boolean
	Keyword
	Type
	Identifier
	Operator
	Punctuator
)

// legendOrder is the exact order spec.md §4.6 requires for the LSP
// semanticTokensProvider legend's tokenTypes array. It is declared here,
// next to Kind, so the two can never drift apart.
var legendOrder = [...]Kind{
	Datetime, Duration, Number, Boolean, Keyword, Type,
	Identifier, Punctuator, Operator, Comment, String, Unknown,
}

// LegendTokenTypes returns the fixed legend string array advertised in
// the LSP initialize response, in spec.md §4.6's required order.
func LegendTokenTypes() []string {
	names := make([]string, len(legendOrder))
	for i, k := range legendOrder {
		names[i] = k.legendName()
	}
	return names
}

// LegendIndex returns this Kind's position in the fixed semantic token
// legend. Every Kind, including Unknown, maps to an explicit index; the
// original C++ implementation falls back to a magic default (the
// "operator" slot) for unrecognized type strings, which this
// implementation does not replicate.
func (k Kind) LegendIndex() int {
	for i, lk := range legendOrder {
		if lk == k {
			return i
		}
	}
	// Unreachable: every Kind constant appears in legendOrder.
	panic(fmt.Sprintf("token: kind %v has no legend entry", k))
}

func (k Kind) legendName() string {
	switch k {
	case Datetime:
		return "datetime"
	case Duration:
		return "duration"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Keyword:
		return "keyword"
	case Type:
		return "type"
	case Identifier:
		return "identifier"
	case Punctuator:
		return "punctuator"
	case Operator:
		return "operator"
	case Comment:
		return "comment"
	case String:
		return "string"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return k.legendName()
}

// IsSkippable reports whether tokens of this kind are skipped by the
// parser's default lookahead (whitespace has no Kind of its own — it is
// never appended to the token stream at all, per spec.md §4.1 — so only
// comments are skippable here, and only when the token stream being
// consumed is the no-comments stream).
func (k Kind) IsSkippable() bool {
	return k == Comment
}
