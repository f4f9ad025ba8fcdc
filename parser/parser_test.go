package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csl-lang/csl/ast"
	"github.com/csl-lang/csl/parser"
)

func TestMinimalSchema(t *testing.T) {
	f, rep := parser.Parse(`config Server {
  port: number = 8080;
  host: string = "localhost";
}`)
	require.Empty(t, rep.Errors())
	require.Len(t, f.SchemaList(), 1)

	s := f.SchemaList()[0]
	assert.Equal(t, "Server", s.Name)
	root := f.Type(s.RootTable)
	require.Equal(t, ast.TableKind, root.Kind)
	require.Len(t, root.ExplicitKeys, 2)

	port := f.Key(root.ExplicitKeys[0])
	assert.Equal(t, "port", port.Name)
	assert.NotNil(t, port.Default)
	assert.Equal(t, "8080", port.Default.Text)
}

func TestEnumWithDefaultAndOptionality(t *testing.T) {
	f, rep := parser.Parse(`config A {
  env?: "dev" | "prod" = "dev";
}`)
	require.Empty(t, rep.Errors())
	root := f.Type(f.SchemaList()[0].RootTable)
	k := f.Key(root.ExplicitKeys[0])
	assert.True(t, k.IsOptional)
	require.NotNil(t, k.Default)
	assert.Equal(t, `"dev"`, k.Default.Text)

	typ := f.Type(k.Type)
	require.Equal(t, ast.UnionKind, typ.Kind)
	require.Len(t, typ.Members, 2)
	for _, m := range typ.Members {
		mt := f.Type(m)
		assert.True(t, mt.IsEnum())
	}
}

func TestConflictingUnionIsError(t *testing.T) {
	_, rep := parser.Parse(`config A {
  x: string | "dev";
}`)
	require.NotEmpty(t, rep.Errors())
}

func TestDottedReferenceInConstraint(t *testing.T) {
	f, rep := parser.Parse(`config A {
  db: { ssl: boolean; };
  insecure: boolean;
  constraints { conflicts db.ssl with insecure; }
}`)
	require.Empty(t, rep.Errors())
	root := f.Type(f.SchemaList()[0].RootTable)
	require.Len(t, root.Constraints, 1)

	c := f.Constraint(root.Constraints[0])
	assert.Equal(t, ast.ConflictConstraint, c.Kind)
	first := f.Expr(c.First)
	require.Equal(t, ast.BinaryExpr, first.Kind)
	assert.Equal(t, ".", first.Op)
}

func TestWildcardWithExplicitOverride(t *testing.T) {
	f, rep := parser.Parse(`config A {
  known: string;
  *: number;
}`)
	require.Empty(t, rep.Errors())
	root := f.Type(f.SchemaList()[0].RootTable)
	require.Len(t, root.ExplicitKeys, 1)
	require.False(t, root.WildcardKey.Nil())
	wk := f.Key(root.WildcardKey)
	assert.True(t, wk.IsWildcard)
}

func TestUnterminatedStringRecoversAndContinuesParsing(t *testing.T) {
	f, rep := parser.Parse(`config A {
  x: string = "abc;
  y: number;
}`)
	require.NotEmpty(t, rep.Errors())
	require.Len(t, f.SchemaList(), 1)
}

func TestAnnotationLocalGlobalSplit(t *testing.T) {
	f, rep := parser.Parse(`config A {
  port: number @min(1) @max(65535) @deprecated;
}`)
	require.Empty(t, rep.Errors())
	root := f.Type(f.SchemaList()[0].RootTable)
	k := f.Key(root.ExplicitKeys[0])
	typ := f.Type(k.Type)
	require.Len(t, typ.Annotations, 3)

	var sawGlobal bool
	for _, aid := range typ.Annotations {
		ann := f.Ann(aid)
		if ann.Name == "deprecated" {
			sawGlobal = true
			assert.True(t, ann.IsGlobal)
		} else {
			assert.False(t, ann.IsGlobal)
		}
	}
	assert.True(t, sawGlobal)
}

func TestAnnotationKindMismatchReported(t *testing.T) {
	_, rep := parser.Parse(`config A {
  name: string @min(1);
}`)
	require.NotEmpty(t, rep.Errors())
}

func TestDefaultPrimitiveMismatchReported(t *testing.T) {
	_, rep := parser.Parse(`config A {
  x: number = "oops";
}`)
	require.NotEmpty(t, rep.Errors())
}

func TestDuplicateConstraintsBlockReported(t *testing.T) {
	_, rep := parser.Parse(`config A {
  a: boolean;
  b: boolean;
  constraints { conflicts a with b; }
  constraints { validate a; }
}`)
	require.NotEmpty(t, rep.Errors())
}

func TestAnyTableAndAnyArray(t *testing.T) {
	f, rep := parser.Parse(`config A {
  meta: any{};
  tags: any[];
}`)
	require.Empty(t, rep.Errors())
	root := f.Type(f.SchemaList()[0].RootTable)
	meta := f.Type(f.Key(root.ExplicitKeys[0]).Type)
	tags := f.Type(f.Key(root.ExplicitKeys[1]).Type)
	assert.Equal(t, ast.AnyTableKind, meta.Kind)
	assert.Equal(t, ast.AnyArrayKind, tags.Kind)
}

func TestArrayOfTables(t *testing.T) {
	f, rep := parser.Parse(`config A {
  servers: { host: string; }[];
}`)
	require.Empty(t, rep.Errors())
	root := f.Type(f.SchemaList()[0].RootTable)
	arr := f.Type(f.Key(root.ExplicitKeys[0]).Type)
	require.Equal(t, ast.ArrayKind, arr.Kind)
	elem := f.Type(arr.Element)
	assert.Equal(t, ast.TableKind, elem.Kind)
}

func TestValidateWithSubsetCall(t *testing.T) {
	f, rep := parser.Parse(`config A {
  all: { name: string; }[];
  chosen: { name: string; }[];
  constraints { validate subset(chosen, all, [name]); }
}`)
	require.Empty(t, rep.Errors())
	root := f.Type(f.SchemaList()[0].RootTable)
	c := f.Constraint(root.Constraints[0])
	e := f.Expr(c.Expr)
	assert.Equal(t, ast.FunctionCallExpr, e.Kind)
	assert.Equal(t, "subset", e.FuncName)
}

func TestPrecedenceClimbing(t *testing.T) {
	f, rep := parser.Parse(`config A {
  b: boolean;
  constraints { validate 1 + 2 * 3 == 7 && b; }
}`)
	require.Empty(t, rep.Errors())
	root := f.Type(f.SchemaList()[0].RootTable)
	c := f.Constraint(root.Constraints[0])
	top := f.Expr(c.Expr)
	require.Equal(t, ast.BinaryExpr, top.Kind)
	assert.Equal(t, "&&", top.Op)

	eq := f.Expr(top.LHS)
	require.Equal(t, ast.BinaryExpr, eq.Kind)
	assert.Equal(t, "==", eq.Op)

	add := f.Expr(eq.LHS)
	require.Equal(t, ast.BinaryExpr, add.Kind)
	assert.Equal(t, "+", add.Op)

	mul := f.Expr(add.RHS)
	require.Equal(t, ast.BinaryExpr, mul.Kind)
	assert.Equal(t, "*", mul.Op)
}

func TestTernaryExpression(t *testing.T) {
	f, rep := parser.Parse(`config A {
  a: boolean;
  b: boolean;
  c: boolean;
  constraints { validate a ? b : c; }
}`)
	require.Empty(t, rep.Errors())
	root := f.Type(f.SchemaList()[0].RootTable)
	c := f.Constraint(root.Constraints[0])
	top := f.Expr(c.Expr)
	assert.Equal(t, ast.TernaryExpr, top.Kind)
}

func TestUnknownIdentifierInConstraintReported(t *testing.T) {
	_, rep := parser.Parse(`config A {
  a: boolean;
  constraints { conflicts a with ghost; }
}`)
	require.NotEmpty(t, rep.Errors())
}

func TestDefIndexMapsKeyUsages(t *testing.T) {
	f, rep := parser.Parse(`config A {
  a: boolean;
  b: boolean;
  constraints { conflicts a with b; }
}`)
	require.Empty(t, rep.Errors())
	assert.True(t, f.Defs.Len() > 0)
}
