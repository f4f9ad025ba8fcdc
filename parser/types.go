package parser

import (
	"fmt"

	"github.com/csl-lang/csl/ast"
	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/internal/report"
	"github.com/csl-lang/csl/internal/token"
)

// parseType parses `postfixType ('|' postfixType)*`, per spec.md §4.2.
// Nested Unions (from a parenthesized union inside a postfixType) are
// flattened into this Union's member list rather than nested one level
// deeper. After the Union is built, a bare primitive mixed with a
// literal of the same primitive among its members is reported as an
// error (still added to the AST, per spec.md §4.2's recovery policy).
func (p *Parser) parseType() ast.TypeID {
	start := p.peek().Region
	first := p.parsePostfixType()

	if !p.check(token.Operator, "|") {
		return first
	}

	members := flattenUnionMember(p.file, first)
	for p.check(token.Operator, "|") {
		p.advance()
		next := p.parsePostfixType()
		members = append(members, flattenUnionMember(p.file, next)...)
	}

	checkUnionLiteralConflict(p.file, &p.report, members)

	end := p.here()
	return p.file.Types.New(ast.Type{
		Kind:    ast.UnionKind,
		Region:  region.Region{Start: start.Start, End: end.Start},
		Members: members,
	})
}

func flattenUnionMember(f *ast.File, id ast.TypeID) []ast.TypeID {
	t := f.Type(id)
	if t.Kind == ast.UnionKind {
		return t.Members
	}
	return []ast.TypeID{id}
}

// checkUnionLiteralConflict implements spec.md §4.2: "if it contains
// both a primitive type T and a literal whose descriptor belongs to T,
// an error is emitted (for string and number)".
func checkUnionLiteralConflict(f *ast.File, rep *report.Report, members []ast.TypeID) {
	bare := map[ast.Primitive]bool{}
	literal := map[ast.Primitive][]ast.TypeID{}
	for _, id := range members {
		t := f.Type(id)
		if t.Kind != ast.PrimitiveKind {
			continue
		}
		if len(t.AllowedValues) == 0 {
			bare[t.Primitive] = true
		} else {
			literal[t.Primitive] = append(literal[t.Primitive], id)
		}
	}
	for prim, lits := range literal {
		if prim != ast.StringPrimitive && prim != ast.NumberPrimitive {
			continue
		}
		if !bare[prim] {
			continue
		}
		for _, id := range lits {
			t := f.Type(id)
			rep.Error(fmt.Errorf("Union mixes bare '%s' with a literal of the same type.", prim), report.At(t.Region))
		}
	}
}

// parsePostfixType parses `primaryType ('[' ']')*`, wrapping the base
// type in one ArrayType per bracket pair (so `number[][]` is an array
// of arrays).
func (p *Parser) parsePostfixType() ast.TypeID {
	start := p.peek().Region
	elem := p.parsePrimaryType()

	for p.check(token.Punctuator, "[") {
		p.advance()
		end, ok := p.expect(token.Punctuator, "]")
		if !ok {
			p.synchronize("]", ";", "}")
			if p.check(token.Punctuator, "]") {
				end = p.advance()
			}
		}
		elem = p.file.Types.New(ast.Type{
			Kind:    ast.ArrayKind,
			Region:  region.Region{Start: start.Start, End: end.Region.End},
			Element: elem,
		})
	}
	return elem
}

// parsePrimaryType parses a literal type, a named primitive with its
// annotations, `any{}`/`any[]`, a nested table type, or a parenthesized
// type.
func (p *Parser) parsePrimaryType() ast.TypeID {
	t := p.peek()

	switch t.Kind {
	case token.String, token.Number, token.Boolean, token.Datetime, token.Duration:
		p.advance()
		prim, _ := t.Prop.Primitive()
		return p.file.Types.New(ast.Type{
			Kind:          ast.PrimitiveKind,
			Region:        t.Region,
			Primitive:     primitiveFromName(prim),
			AllowedValues: []ast.LiteralValue{{Text: t.Value, Prop: t.Prop}},
		})

	case token.Type:
		switch t.Value {
		case "any{}":
			p.advance()
			return p.file.Types.New(ast.Type{Kind: ast.AnyTableKind, Region: t.Region})
		case "any[]":
			p.advance()
			return p.file.Types.New(ast.Type{Kind: ast.AnyArrayKind, Region: t.Region})
		default:
			p.advance()
			anns := p.parseAnnotations()
			return p.file.Types.New(ast.Type{
				Kind:        ast.PrimitiveKind,
				Region:      t.Region,
				Primitive:   primitiveFromName(t.Value),
				Annotations: anns,
			})
		}

	case token.Punctuator:
		if t.Value == "{" {
			return p.parseTableType()
		}

	case token.Operator:
		if t.Value == "(" {
			p.advance()
			inner := p.parseType()
			p.expect(token.Operator, ")")
			return inner
		}
	}

	p.errorf("Expected a type, found '%s'.", p.describeCurrent())
	return p.file.Types.New(ast.Type{Kind: ast.InvalidType, Region: t.Region})
}
