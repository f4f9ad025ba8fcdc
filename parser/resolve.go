package parser

import (
	"fmt"

	"github.com/csl-lang/csl/ast"
	"github.com/csl-lang/csl/internal/report"
)

// numericAnnotations and stringAnnotations are the two annotation-kind
// families spec.md §4.2 requires a matching primitive for.
var numericAnnotations = map[string]bool{
	"min": true, "max": true, "range": true, "int": true, "float": true,
}

var stringAnnotations = map[string]bool{
	"regex": true, "start_with": true, "end_with": true, "contain": true,
	"min_length": true, "max_length": true, "length": true, "format": true,
}

// resolve runs spec.md §4.2's post-parse semantic pass over every
// top-level schema: it builds the token↦definition index and checks
// annotation-kind/primitive compatibility, default-literal/primitive
// compatibility, and constraint identifier resolution. Every violation
// is reported but never stops the walk — CSL diagnostics are always
// additive.
func resolve(f *ast.File, rep *report.Report) {
	for _, sid := range f.SchemaOrder {
		s := f.Schema(sid)
		if !s.RootTable.Nil() {
			f.Defs.Set(s.NameRegion.Start, ast.DefRef{Kind: ast.SchemaDef, Schema: sid})
			resolveTable(f, rep, s.RootTable)
		}
	}
}

// resolveTable processes one table type: registers its keys in the
// definition index, checks each key's annotations and default, recurses
// into nested types, and resolves every constraint's expressions
// against a scope made of this table's own explicit keys only (spec.md
// §4.2: "a fresh scope stack derived from enclosing table's explicit
// keys").
func resolveTable(f *ast.File, rep *report.Report, id ast.TypeID) {
	t := f.Type(id)
	if t.Kind != ast.TableKind {
		return
	}

	scope := make(map[string]ast.KeyID, len(t.ExplicitKeys))
	for _, kid := range t.ExplicitKeys {
		k := f.Key(kid)
		scope[k.Name] = kid
		f.Defs.Set(k.NameRegion.Start, ast.DefRef{Kind: ast.KeyDef, Key: kid})
		resolveKey(f, rep, kid)
	}
	if !t.WildcardKey.Nil() {
		resolveKey(f, rep, t.WildcardKey)
	}

	for _, cid := range t.Constraints {
		resolveConstraint(f, rep, cid, scope)
	}
}

func resolveKey(f *ast.File, rep *report.Report, kid ast.KeyID) {
	k := f.Key(kid)
	if !k.Type.Nil() {
		checkAnnotations(f, rep, k.Type)
		checkDefaultPrimitive(f, rep, k)
		resolveType(f, rep, k.Type)
	}
	for _, aid := range k.Annotations {
		checkAnnotationKindFor(f, rep, aid, k.Type)
	}
}

// resolveType recurses into a type's nested tables/arrays/unions so
// every nested table's own keys and constraints get resolved too, and
// checks annotation kinds carried directly on a primitive type.
func resolveType(f *ast.File, rep *report.Report, id ast.TypeID) {
	if id.Nil() {
		return
	}
	t := f.Type(id)
	switch t.Kind {
	case ast.PrimitiveKind:
		for _, aid := range t.Annotations {
			checkAnnotationKindFor(f, rep, aid, id)
		}
	case ast.TableKind:
		resolveTable(f, rep, id)
	case ast.ArrayKind:
		resolveType(f, rep, t.Element)
	case ast.UnionKind:
		for _, m := range t.Members {
			resolveType(f, rep, m)
		}
	}
}

// checkAnnotations checks the annotations carried by a key's own type
// node (the common case: `x: number @min(0)`).
func checkAnnotations(f *ast.File, rep *report.Report, typeID ast.TypeID) {
	t := f.Type(typeID)
	if t.Kind != ast.PrimitiveKind {
		return
	}
	for _, aid := range t.Annotations {
		checkAnnotationKindFor(f, rep, aid, typeID)
	}
}

func checkAnnotationKindFor(f *ast.File, rep *report.Report, aid ast.AnnotationID, typeID ast.TypeID) {
	ann := f.Ann(aid)
	if typeID.Nil() {
		return
	}
	t := f.Type(typeID)
	if t.Kind != ast.PrimitiveKind {
		return
	}
	if numericAnnotations[ann.Name] && t.Primitive != ast.NumberPrimitive {
		rep.Error(fmt.Errorf("Annotation '@%s' requires a number primitive, found '%s'.", ann.Name, t.Primitive), report.At(ann.Region))
	}
	if stringAnnotations[ann.Name] && t.Primitive != ast.StringPrimitive {
		rep.Error(fmt.Errorf("Annotation '@%s' requires a string primitive, found '%s'.", ann.Name, t.Primitive), report.At(ann.Region))
	}
}

// checkDefaultPrimitive implements spec.md §4.2: "Default literal
// descriptor must match declared primitive."
func checkDefaultPrimitive(f *ast.File, rep *report.Report, k *ast.KeyDefinition) {
	if k.Default == nil || k.Type.Nil() {
		return
	}
	t := f.Type(k.Type)
	if t.Kind != ast.PrimitiveKind {
		return
	}
	want, ok := k.Default.Prop.Primitive()
	if !ok {
		return
	}
	if primitiveFromName(want) != t.Primitive {
		rep.Error(fmt.Errorf("Default value for '%s' has type '%s' but key is declared '%s'.", k.Name, want, t.Primitive),
			report.At(k.DefinitionRegion))
	}
}

func resolveConstraint(f *ast.File, rep *report.Report, cid ast.ConstraintID, scope map[string]ast.KeyID) {
	c := f.Constraint(cid)
	switch c.Kind {
	case ast.ConflictConstraint, ast.DependencyConstraint:
		resolveConstraintExpr(f, rep, c.First, scope)
		resolveConstraintExpr(f, rep, c.Second, scope)
	case ast.ValidateConstraint:
		resolveConstraintExpr(f, rep, c.Expr, scope)
	}
}

// resolveConstraintExpr walks an expression tree resolving plain
// identifiers against scope and recording definition-index entries.
// Binary '.' is handled specially: only the left side is checked for
// an unknown-identifier diagnostic; the right side is treated as a
// property name of whatever the left side resolves to (spec.md §4.2).
func resolveConstraintExpr(f *ast.File, rep *report.Report, id ast.ExprID, scope map[string]ast.KeyID) {
	if id.Nil() {
		return
	}
	e := f.Expr(id)
	switch e.Kind {
	case ast.IdentifierExpr:
		if kid, ok := scope[e.Name]; ok {
			f.Defs.Set(e.Region.Start, ast.DefRef{Kind: ast.KeyDef, Key: kid})
		} else {
			rep.Error(fmt.Errorf("Unknown identifier '%s' in constraint.", e.Name), report.At(e.Region))
		}

	case ast.BinaryExpr:
		if e.Op == "." {
			resolveConstraintExpr(f, rep, e.LHS, scope)
			resolveDottedProperty(f, e.LHS, e.RHS, scope)
		} else {
			resolveConstraintExpr(f, rep, e.LHS, scope)
			resolveConstraintExpr(f, rep, e.RHS, scope)
		}

	case ast.UnaryExpr:
		resolveConstraintExpr(f, rep, e.Operand, scope)

	case ast.TernaryExpr:
		resolveConstraintExpr(f, rep, e.Cond, scope)
		resolveConstraintExpr(f, rep, e.Then, scope)
		resolveConstraintExpr(f, rep, e.Else, scope)

	case ast.FunctionCallExpr:
		for i, a := range e.Args {
			if e.FuncName == "subset" && i == 2 {
				continue // property names of the array elements' tables, not sibling keys
			}
			resolveConstraintExpr(f, rep, a, scope)
		}
		if e.FuncName == "subset" {
			checkSubsetCall(f, rep, e, scope)
		}

	case ast.FunctionArgExpr:
		if e.IsList {
			for _, x := range e.List {
				resolveConstraintExpr(f, rep, x, scope)
			}
		} else {
			resolveConstraintExpr(f, rep, e.Value, scope)
		}

	case ast.AnnotationExpr:
		resolveConstraintExpr(f, rep, e.Target, scope)
	}
}

// resolveDottedProperty maps the right-hand identifier of `a.b` to a
// KeyID when the left-hand side resolves to a sibling key whose type is
// a table, without ever flagging `b` itself as unknown.
func resolveDottedProperty(f *ast.File, lhsID, rhsID ast.ExprID, scope map[string]ast.KeyID) {
	if lhsID.Nil() || rhsID.Nil() {
		return
	}
	lhs := f.Expr(lhsID)
	if lhs.Kind != ast.IdentifierExpr {
		return
	}
	kid, ok := scope[lhs.Name]
	if !ok {
		return
	}
	k := f.Key(kid)
	if k.Type.Nil() {
		return
	}
	t := f.Type(k.Type)
	if t.Kind != ast.TableKind {
		return
	}
	rhs := f.Expr(rhsID)
	if rhs.Kind != ast.IdentifierExpr {
		return
	}
	for _, ckid := range t.ExplicitKeys {
		ck := f.Key(ckid)
		if ck.Name == rhs.Name {
			f.Defs.Set(rhs.Region.Start, ast.DefRef{Kind: ast.KeyDef, Key: ckid})
			return
		}
	}
}

// checkSubsetCall implements spec.md §4.2's `subset(a, b, [props])`
// rule: when a property list is given, both a and b must resolve to
// sibling keys typed as arrays of tables.
func checkSubsetCall(f *ast.File, rep *report.Report, call *ast.Expr, scope map[string]ast.KeyID) {
	if len(call.Args) < 3 {
		return
	}
	hasPropList := false
	if arg := f.Expr(call.Args[2]); arg.Kind == ast.FunctionArgExpr && arg.IsList {
		hasPropList = true
	}
	if !hasPropList {
		return
	}
	for _, argID := range call.Args[:2] {
		arg := f.Expr(argID)
		if arg.IsList || arg.Value.Nil() {
			continue
		}
		val := f.Expr(arg.Value)
		if val.Kind != ast.IdentifierExpr {
			continue
		}
		kid, ok := scope[val.Name]
		if !ok {
			continue
		}
		k := f.Key(kid)
		if k.Type.Nil() {
			continue
		}
		t := f.Type(k.Type)
		if t.Kind != ast.ArrayKind {
			rep.Error(fmt.Errorf("subset() argument '%s' must be an array of tables when a property list is given.", val.Name), report.At(val.Region))
			continue
		}
		elem := f.Type(t.Element)
		if elem.Kind != ast.TableKind {
			rep.Error(fmt.Errorf("subset() argument '%s' must be an array of tables when a property list is given.", val.Name), report.At(val.Region))
		}
	}
}
