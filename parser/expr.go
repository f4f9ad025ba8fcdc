package parser

import (
	"github.com/csl-lang/csl/ast"
	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/internal/token"
)

// binOpInfo reports the precedence level and associativity of t, per
// spec.md §4.2's operator table (lower level number binds tighter).
// Only levels 5-15 are handled here; level 1 ('.'/'@') and level 2
// ('['/'(') are postfix productions (parsePostfix), and level 3 (unary
// '~ ! + -') is parseUnary.
func binOpInfo(t token.Token) (level int, rightAssoc, ok bool) {
	switch t.Value {
	case "*", "/", "%":
		return 5, false, true
	case "+", "-":
		return 6, false, true
	case "<<", ">>":
		return 7, false, true
	case "<", "<=", ">", ">=":
		return 8, false, true
	case "==", "!=":
		return 9, false, true
	case "&":
		return 10, false, true
	case "^":
		return 11, false, true
	case "|":
		return 12, false, true
	case "&&":
		return 13, false, true
	case "||":
		return 14, false, true
	case "=":
		return 15, true, true
	default:
		return 0, false, false
	}
}

// parseExpr parses `ternary := precClimb '?' expr ':' expr | precClimb`.
func (p *Parser) parseExpr() ast.ExprID {
	start := p.peek().Region
	cond := p.parseBinary(15)

	if !p.check(token.Operator, "?") {
		return cond
	}
	p.advance()
	then := p.parseExpr()
	p.expect(token.Punctuator, ":")
	els := p.parseExpr()

	end := p.here()
	return p.file.Exprs.New(ast.Expr{
		Kind:   ast.TernaryExpr,
		Region: region.Region{Start: start.Start, End: end.Start},
		Cond:   cond, Then: then, Else: els,
	})
}

// parseBinary climbs spec.md §4.2's operator table, recursing with
// level-1 for left-associative operators (stopping at same-precedence
// runs) and level for right-associative ones (allowing them to chain).
func (p *Parser) parseBinary(maxLevel int) ast.ExprID {
	start := p.peek().Region
	lhs := p.parseUnary()

	for {
		level, rightAssoc, ok := binOpInfo(p.peek())
		if !ok || level > maxLevel {
			break
		}
		op := p.advance().Value

		nextMax := level - 1
		if rightAssoc {
			nextMax = level
		}
		rhs := p.parseBinary(nextMax)

		end := p.here()
		lhs = p.file.Exprs.New(ast.Expr{
			Kind:   ast.BinaryExpr,
			Region: region.Region{Start: start.Start, End: end.Start},
			Op:     op, LHS: lhs, RHS: rhs,
		})
	}
	return lhs
}

// parseUnary parses `('~'|'!'|'+'|'-') expr | primary`, binding the
// prefix operator to the next unary-level operand (level 3, tighter
// than every binary operator).
func (p *Parser) parseUnary() ast.ExprID {
	t := p.peek()
	if t.Kind == token.Operator && (t.Value == "~" || t.Value == "!" || t.Value == "+" || t.Value == "-") {
		p.advance()
		operand := p.parseUnary()
		end := p.here()
		return p.file.Exprs.New(ast.Expr{
			Kind:    ast.UnaryExpr,
			Region:  region.Region{Start: t.Region.Start, End: end.Start},
			Op:      t.Value,
			Operand: operand,
		})
	}
	return p.parsePostfix()
}

// parsePostfix parses level 1 ('.' member access, '@' inline
// annotation) and level 2 ('[' indexing) atop a primary expression.
func (p *Parser) parsePostfix() ast.ExprID {
	start := p.peek().Region
	e := p.parsePrimary()

	for {
		switch {
		case p.check(token.Operator, "."):
			p.advance()
			nameTok := p.peek()
			if nameTok.Kind != token.Identifier && nameTok.Kind != token.Keyword {
				p.errorf("Expected a property name after '.'.")
				break
			}
			p.advance()
			rhs := p.file.Exprs.New(ast.Expr{Kind: ast.IdentifierExpr, Region: nameTok.Region, Name: nameTok.Value})
			end := p.here()
			e = p.file.Exprs.New(ast.Expr{
				Kind: ast.BinaryExpr, Region: region.Region{Start: start.Start, End: end.Start},
				Op: ".", LHS: e, RHS: rhs,
			})
			continue

		case p.check(token.Punctuator, "["):
			p.advance()
			idx := p.parseExpr()
			p.expect(token.Punctuator, "]")
			end := p.here()
			e = p.file.Exprs.New(ast.Expr{
				Kind: ast.BinaryExpr, Region: region.Region{Start: start.Start, End: end.Start},
				Op: "[]", LHS: e, RHS: idx,
			})
			continue

		case p.check(token.Punctuator, "@"):
			ann := p.parseAnnotation()
			end := p.here()
			e = p.file.Exprs.New(ast.Expr{
				Kind: ast.AnnotationExpr, Region: region.Region{Start: start.Start, End: end.Start},
				Target: e, Annotation: ann,
			})
			continue
		}
		break
	}
	return e
}

// parsePrimary parses `literal | IDENT | KEYWORD '(' args ')' | '(' expr ')'`.
func (p *Parser) parsePrimary() ast.ExprID {
	t := p.peek()

	switch t.Kind {
	case token.String, token.Number, token.Boolean, token.Datetime, token.Duration:
		p.advance()
		return p.file.Exprs.New(ast.Expr{
			Kind: ast.LiteralExpr, Region: t.Region,
			Literal: ast.LiteralValue{Text: t.Value, Prop: t.Prop},
		})

	case token.Identifier:
		p.advance()
		return p.file.Exprs.New(ast.Expr{Kind: ast.IdentifierExpr, Region: t.Region, Name: t.Value})

	case token.Keyword:
		if functionKeywords[t.Value] {
			return p.parseFunctionCall()
		}
		p.errorf("Keyword '%s' is not valid in an expression.", t.Value)
		p.advance()
		return p.file.Exprs.New(ast.Expr{Kind: ast.IdentifierExpr, Region: t.Region, Name: t.Value})

	case token.Operator:
		if t.Value == "(" {
			p.advance()
			inner := p.parseExpr()
			p.expect(token.Operator, ")")
			return inner
		}
	}

	p.errorf("Expected an expression, found '%s'.", p.describeCurrent())
	p.advance()
	return p.file.Exprs.New(ast.Expr{Kind: ast.IdentifierExpr, Region: t.Region, Name: "<error>"})
}

// parseFunctionCall parses `KEYWORD '(' args ')'` where
// `args := (expr | '[' expr,* ']') (',' …)*`.
func (p *Parser) parseFunctionCall() ast.ExprID {
	nameTok := p.advance()
	p.expect(token.Operator, "(")

	var args []ast.ExprID
	for !p.atEnd() && !p.check(token.Operator, ")") {
		args = append(args, p.parseFunctionArg())
		if p.check(token.Punctuator, ",") {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expect(token.Operator, ")")

	return p.file.Exprs.New(ast.Expr{
		Kind:     ast.FunctionCallExpr,
		Region:   region.Region{Start: nameTok.Region.Start, End: end.Region.End},
		FuncName: nameTok.Value,
		Args:     args,
	})
}

// parseFunctionArg parses one element of a function's argument list:
// either a plain expression or a bracketed list of expressions.
func (p *Parser) parseFunctionArg() ast.ExprID {
	start := p.peek().Region
	if p.check(token.Punctuator, "[") {
		p.advance()
		var list []ast.ExprID
		for !p.atEnd() && !p.check(token.Punctuator, "]") {
			list = append(list, p.parseExpr())
			if p.check(token.Punctuator, ",") {
				p.advance()
				continue
			}
			break
		}
		end, _ := p.expect(token.Punctuator, "]")
		return p.file.Exprs.New(ast.Expr{
			Kind: ast.FunctionArgExpr, Region: region.Region{Start: start.Start, End: end.Region.End},
			List: list, IsList: true,
		})
	}

	v := p.parseExpr()
	end := p.here()
	return p.file.Exprs.New(ast.Expr{
		Kind: ast.FunctionArgExpr, Region: region.Region{Start: start.Start, End: end.Start},
		Value: v,
	})
}

// parseExprList parses a comma-separated list of plain expressions up
// to (but not consuming) the token with value close — used for
// annotation argument lists.
func (p *Parser) parseExprList(close string) []ast.ExprID {
	var out []ast.ExprID
	for !p.atEnd() && p.peek().Value != close {
		out = append(out, p.parseExpr())
		if p.check(token.Punctuator, ",") {
			p.advance()
			continue
		}
		break
	}
	return out
}
