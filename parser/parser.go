// Package parser turns a CSL token stream into an *ast.File: top-level
// config schemas, their table/primitive/array/union types, key
// definitions, annotations, and constraints blocks, per spec.md §4.2.
//
// The cursor style (a flat token slice with Peek/Check/Expect/Advance
// primitives, recursive-descent entry points per grammar production,
// and a Report that accumulates diagnostics instead of aborting) is
// grounded on bufbuild/protocompile's ast2 parser package, adapted from
// protocompile's token-tree cursor (which walks matched-delimiter
// groups) down to CSL's flat token stream, where every open/close
// delimiter is just another token the parser matches explicitly.
package parser

import (
	"fmt"

	"github.com/csl-lang/csl/ast"
	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/internal/report"
	"github.com/csl-lang/csl/internal/token"
	"github.com/csl-lang/csl/lexer"
)

// globalAnnotations is the fixed name set spec.md §4.2 routes to
// Annotation.IsGlobal = true; every other `@name` is local to the key
// or type it decorates.
var globalAnnotations = map[string]bool{
	"deprecated": true,
}

// functionKeywords are the reserved words that may appear as a
// function-call primary expression: `exists(...)`, `count_keys(...)`,
// and so on.
var functionKeywords = map[string]bool{
	"exists":        true,
	"count_keys":    true,
	"all_keys":      true,
	"wildcard_keys": true,
	"subset":        true,
}

// Parser consumes a fixed token slice and builds one ast.File.
type Parser struct {
	toks []token.Token
	pos  int

	file   *ast.File
	report report.Report
}

// Parse lexes and parses a complete CSL document, returning its File and
// the merged lex+parse diagnostics. The parser always runs a semantic
// resolution pass afterward (building the token↦definition index and
// running the checks spec.md §4.2 lists), even when lexing produced
// errors — CSL never aborts on diagnostics.
func Parse(text string) (*ast.File, *report.Report) {
	toks, lexRep := lexer.Lex(text, false)

	p := &Parser{toks: toks, file: ast.NewFile()}
	p.parseFile()
	resolve(p.file, &p.report)

	p.report.Merge(lexRep)
	return p.file, &p.report
}

// ---- cursor primitives ----

func (p *Parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *Parser) peek() token.Token {
	if p.atEnd() {
		return token.Token{}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	if p.pos+offset >= len(p.toks) {
		return token.Token{}
	}
	return p.toks[p.pos+offset]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *Parser) check(kind token.Kind, value string) bool {
	t := p.peek()
	return t.Kind == kind && t.Value == value
}

func (p *Parser) checkKind(kind token.Kind) bool {
	return p.peek().Kind == kind
}

// expect consumes a token of the given kind/value, or reports an error
// at the current position and leaves the cursor in place (the caller
// decides how to recover).
func (p *Parser) expect(kind token.Kind, value string) (token.Token, bool) {
	if p.check(kind, value) {
		return p.advance(), true
	}
	p.errorf("Expected '%s', found '%s'.", value, p.describeCurrent())
	return token.Token{}, false
}

func (p *Parser) describeCurrent() string {
	if p.atEnd() {
		return "end of file"
	}
	return p.peek().Value
}

func (p *Parser) here() region.Region {
	if p.atEnd() {
		if len(p.toks) == 0 {
			return region.Region{}
		}
		last := p.toks[len(p.toks)-1]
		return region.Region{Start: last.Region.End, End: last.Region.End}
	}
	return p.peek().Region
}

func (p *Parser) errorf(format string, args ...any) {
	p.report.Error(fmt.Errorf(format, args...), report.At(p.here()))
}

// synchronize advances past tokens until one that plausibly starts a
// new construct at the current nesting level, or a block terminator —
// spec.md §4.2's "the parser never aborts" recovery strategy.
func (p *Parser) synchronize(stopValues ...string) {
	for !p.atEnd() {
		t := p.peek()
		for _, v := range stopValues {
			if t.Value == v {
				return
			}
		}
		p.advance()
	}
}

// ---- file / schema ----

func (p *Parser) parseFile() {
	for !p.atEnd() {
		if p.check(token.Keyword, "config") {
			p.parseSchema()
			continue
		}
		p.errorf("Expected 'config', found '%s'.", p.describeCurrent())
		p.advance()
	}
}

func (p *Parser) parseSchema() {
	start := p.peek().Region
	p.advance() // 'config'

	var nameTok token.Token
	ok := p.checkKind(token.Identifier)
	if ok {
		nameTok = p.advance()
	} else {
		p.errorf("Expected schema name, found '%s'.", p.describeCurrent())
	}
	var nameRegion region.Region
	name := "<error>"
	if ok {
		name = nameTok.Value
		nameRegion = nameTok.Region
	}

	root := p.parseTableType()

	end := p.here()
	schema := ast.ConfigSchema{
		Name:       name,
		RootTable:  root,
		Region:     region.Region{Start: start.Start, End: end.Start},
		NameRegion: nameRegion,
	}
	id := p.file.Schemas.New(schema)
	p.file.SchemaOrder = append(p.file.SchemaOrder, id)
}

// ---- table body ----

// parseTableType parses '{' (keyDef | wildcardKey | constraintsBlock)* '}'.
func (p *Parser) parseTableType() ast.TypeID {
	start := p.peek().Region
	if _, ok := p.expect(token.Punctuator, "{"); !ok {
		return p.file.Types.New(ast.Type{Kind: ast.TableKind, Region: start})
	}

	var explicit []ast.KeyID
	var wildcard ast.KeyID
	var constraints []ast.ConstraintID
	constraintsBlocks := 0

	for !p.atEnd() && !p.check(token.Punctuator, "}") {
		switch {
		case p.check(token.Keyword, "constraints"):
			constraintsBlocks++
			if constraintsBlocks > 1 {
				p.errorf("Duplicate 'constraints' block in table.")
			}
			constraints = append(constraints, p.parseConstraintsBlock()...)
		case p.check(token.Keyword, "*"):
			wildcard = p.parseWildcardKey()
		case p.checkKind(token.Identifier):
			explicit = append(explicit, p.parseKeyDef())
		default:
			p.errorf("Unexpected token '%s' in table body.", p.describeCurrent())
			p.synchronize(";", "}")
			if p.check(token.Punctuator, ";") {
				p.advance()
			}
		}
	}

	end := p.peek().Region
	p.expect(token.Punctuator, "}")

	return p.file.Types.New(ast.Type{
		Kind:         ast.TableKind,
		Region:       region.Region{Start: start.Start, End: end.End},
		ExplicitKeys: explicit,
		WildcardKey:  wildcard,
		Constraints:  constraints,
	})
}

// consumeTerminator tolerates a missing ';' between keys when the next
// token plausibly begins a new key or ends the block, per spec.md
// §4.2's recovery rule.
func (p *Parser) consumeTerminator() {
	if p.check(token.Punctuator, ";") {
		p.advance()
		return
	}
	if p.checkKind(token.Identifier) || p.check(token.Keyword, "*") ||
		p.check(token.Keyword, "constraints") || p.check(token.Punctuator, "}") || p.atEnd() {
		p.errorf("Expected ';' after key definition.")
		return
	}
	p.errorf("Expected ';' after key definition.")
	p.synchronize(";", "}")
	if p.check(token.Punctuator, ";") {
		p.advance()
	}
}

// parseKeyDef parses:
//
//	IDENT ('?')? ':' type annotations* ('=' defaultLit)? ';'
//	IDENT ('?')? '=' defaultLit annotations* ';'
func (p *Parser) parseKeyDef() ast.KeyID {
	nameTok := p.advance()
	optional := false
	if p.check(token.Operator, "?") {
		p.advance()
		optional = true
	}

	var typ ast.TypeID
	var anns []ast.AnnotationID
	var def *ast.LiteralValue

	switch {
	case p.check(token.Punctuator, ":"):
		p.advance()
		typ = p.parseType()
		anns = p.parseAnnotations()
		if p.check(token.Operator, "=") {
			p.advance()
			def = p.parseDefaultLiteral()
		}
	case p.check(token.Operator, "="):
		p.advance()
		def = p.parseDefaultLiteral()
		anns = p.parseAnnotations()
		if def != nil {
			prim, _ := def.Prop.Primitive()
			typ = p.file.Types.New(ast.Type{
				Kind:      ast.PrimitiveKind,
				Region:    nameTok.Region,
				Primitive: primitiveFromName(prim),
			})
		}
	default:
		p.errorf("Expected ':' or '=' after key name '%s'.", nameTok.Value)
	}

	end := p.here()
	p.consumeTerminator()

	return p.file.Keys.New(ast.KeyDefinition{
		Name:             nameTok.Value,
		IsOptional:       optional,
		Type:             typ,
		Annotations:      anns,
		Default:          def,
		NameRegion:       nameTok.Region,
		DefinitionRegion: region.Region{Start: nameTok.Region.Start, End: end.Start},
	})
}

// parseWildcardKey parses '*' ':' type annotations* ';'.
func (p *Parser) parseWildcardKey() ast.KeyID {
	star := p.advance()
	var typ ast.TypeID
	var anns []ast.AnnotationID

	if _, ok := p.expect(token.Punctuator, ":"); ok {
		typ = p.parseType()
		anns = p.parseAnnotations()
	} else {
		p.synchronize(";", "}")
	}

	end := p.here()
	p.consumeTerminator()

	return p.file.Keys.New(ast.KeyDefinition{
		Name:             "*",
		IsWildcard:       true,
		Type:             typ,
		Annotations:      anns,
		NameRegion:       star.Region,
		DefinitionRegion: region.Region{Start: star.Region.Start, End: end.Start},
	})
}

// parseDefaultLiteral parses a literal value, optionally preceded by a
// leading '+'/'-' applied to a number literal (spec.md §4.2's signed
// numeric default rule — the lexer never captures the sign itself).
func (p *Parser) parseDefaultLiteral() *ast.LiteralValue {
	sign := ""
	if p.check(token.Operator, "+") || p.check(token.Operator, "-") {
		sign = p.advance().Value
	}

	t := p.peek()
	switch t.Kind {
	case token.String, token.Number, token.Boolean, token.Datetime, token.Duration:
		p.advance()
		text := t.Value
		if sign != "" {
			if t.Kind != token.Number {
				p.errorf("Sign prefix is only valid on a number literal default.")
			}
			text = sign + text
		}
		return &ast.LiteralValue{Text: text, Prop: t.Prop}
	default:
		p.errorf("Expected a literal default value, found '%s'.", p.describeCurrent())
		return nil
	}
}

func primitiveFromName(name string) ast.Primitive {
	switch name {
	case "string":
		return ast.StringPrimitive
	case "number":
		return ast.NumberPrimitive
	case "boolean":
		return ast.BooleanPrimitive
	case "datetime":
		return ast.DatetimePrimitive
	case "duration":
		return ast.DurationPrimitive
	default:
		return ast.NoPrimitive
	}
}

// ---- annotations ----

// parseAnnotations parses a run of `@name(args...)` annotations, per
// spec.md §4.2's grammar and its name-based local/global split.
func (p *Parser) parseAnnotations() []ast.AnnotationID {
	var out []ast.AnnotationID
	for p.check(token.Punctuator, "@") {
		out = append(out, p.parseAnnotation())
	}
	return out
}

func (p *Parser) parseAnnotation() ast.AnnotationID {
	at := p.advance() // '@'

	nameTok := token.Token{}
	if p.checkKind(token.Identifier) || p.checkKind(token.Keyword) || p.checkKind(token.Type) {
		nameTok = p.advance()
	} else {
		p.errorf("Expected annotation name after '@'.")
	}

	var args []ast.ExprID
	end := nameTok.Region
	if p.check(token.Operator, "(") {
		p.advance()
		args = p.parseExprList(")")
		closeTok, _ := p.expect(token.Operator, ")")
		end = closeTok.Region
	}

	return p.file.Annotations.New(ast.Annotation{
		Name:     nameTok.Value,
		Args:     args,
		Region:   region.Region{Start: at.Region.Start, End: end.End},
		IsGlobal: globalAnnotations[nameTok.Value],
	})
}
