package parser

import (
	"github.com/csl-lang/csl/ast"
	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/internal/token"
)

// parseConstraintsBlock parses `'constraints' '{' constraint* '}' ';'?`.
// A second constraints block within the same table is flagged by the
// caller, parseTableType, which counts the blocks it sees; this function
// itself stays a pure production.
func (p *Parser) parseConstraintsBlock() []ast.ConstraintID {
	p.advance() // 'constraints'
	p.expect(token.Punctuator, "{")

	var out []ast.ConstraintID
	for !p.atEnd() && !p.check(token.Punctuator, "}") {
		switch {
		case p.check(token.Keyword, "conflicts"):
			out = append(out, p.parseConflictConstraint())
		case p.check(token.Keyword, "requires"):
			out = append(out, p.parseDependencyConstraint())
		case p.check(token.Keyword, "validate"):
			out = append(out, p.parseValidateConstraint())
		default:
			p.errorf("Unexpected token '%s' in constraints block.", p.describeCurrent())
			p.synchronize(";", "}")
			if p.check(token.Punctuator, ";") {
				p.advance()
			}
		}
	}
	p.expect(token.Punctuator, "}")
	if p.check(token.Punctuator, ";") {
		p.advance()
	}
	return out
}

func (p *Parser) parseConflictConstraint() ast.ConstraintID {
	start := p.advance().Region // 'conflicts'
	first := p.parseExpr()
	p.expect(token.Keyword, "with")
	second := p.parseExpr()
	end := p.here()
	p.consumeTerminator()
	return p.file.Constraints.New(ast.Constraint{
		Kind:   ast.ConflictConstraint,
		Region: region.Region{Start: start.Start, End: end.Start},
		First:  first,
		Second: second,
	})
}

func (p *Parser) parseDependencyConstraint() ast.ConstraintID {
	start := p.advance().Region // 'requires'
	dependent := p.parseExpr()
	p.expect(token.Punctuator, "=>")
	condition := p.parseExpr()
	end := p.here()
	p.consumeTerminator()
	return p.file.Constraints.New(ast.Constraint{
		Kind:   ast.DependencyConstraint,
		Region: region.Region{Start: start.Start, End: end.Start},
		First:  dependent,
		Second: condition,
	})
}

func (p *Parser) parseValidateConstraint() ast.ConstraintID {
	start := p.advance().Region // 'validate'
	expr := p.parseExpr()
	end := p.here()
	p.consumeTerminator()
	return p.file.Constraints.New(ast.Constraint{
		Kind:   ast.ValidateConstraint,
		Region: region.Region{Start: start.Start, End: end.Start},
		Expr:   expr,
	})
}
