package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csl-lang/csl/ast"
	"github.com/csl-lang/csl/internal/region"
)

func pos(line, col uint32) region.Position {
	return region.Position{Line: line, Column: col}
}

func TestFileArenasRoundTripNodes(t *testing.T) {
	f := ast.NewFile()

	tid := f.Types.New(ast.Type{Kind: ast.PrimitiveKind, Primitive: ast.StringPrimitive})
	kid := f.Keys.New(ast.KeyDefinition{Name: "host", Type: tid})

	assert.Equal(t, "host", f.Key(kid).Name)
	assert.Equal(t, ast.StringPrimitive, f.Type(f.Key(kid).Type).Primitive)
}

func TestSchemaListPreservesDeclarationOrder(t *testing.T) {
	f := ast.NewFile()

	root := f.Types.New(ast.Type{Kind: ast.TableKind})
	second := f.Schemas.New(ast.ConfigSchema{Name: "Second", RootTable: root})
	first := f.Schemas.New(ast.ConfigSchema{Name: "First", RootTable: root})
	f.SchemaOrder = []ast.SchemaID{second, first}

	names := []string{}
	for _, s := range f.SchemaList() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Second", "First"}, names)
}

func TestIsEnumRequiresNonEmptyAllowedValues(t *testing.T) {
	plain := ast.Type{Kind: ast.PrimitiveKind, Primitive: ast.StringPrimitive}
	assert.False(t, plain.IsEnum())

	enum := ast.Type{Kind: ast.PrimitiveKind, Primitive: ast.StringPrimitive,
		AllowedValues: []ast.LiteralValue{{Text: `"dev"`}}}
	assert.True(t, enum.IsEnum())

	table := ast.Type{Kind: ast.TableKind}
	assert.False(t, table.IsEnum())
}

func TestPrimitiveStringCoversAllFiveKeywords(t *testing.T) {
	cases := map[ast.Primitive]string{
		ast.StringPrimitive:   "string",
		ast.NumberPrimitive:   "number",
		ast.BooleanPrimitive:  "boolean",
		ast.DatetimePrimitive: "datetime",
		ast.DurationPrimitive: "duration",
	}
	for p, want := range cases {
		assert.Equal(t, want, p.String())
	}
	assert.Equal(t, "", ast.NoPrimitive.String())
}

func TestDefIndexLookupExactPositionOnly(t *testing.T) {
	idx := ast.NewDefIndex()
	idx.Set(pos(1, 2), ast.DefRef{Kind: ast.KeyDef})

	ref, ok := idx.Lookup(pos(1, 2))
	require.True(t, ok)
	assert.Equal(t, ast.KeyDef, ref.Kind)

	_, ok = idx.Lookup(pos(1, 3))
	assert.False(t, ok)
}

func TestDefIndexAscendVisitsInPositionOrder(t *testing.T) {
	idx := ast.NewDefIndex()
	idx.Set(pos(3, 0), ast.DefRef{Kind: ast.KeyDef})
	idx.Set(pos(1, 0), ast.DefRef{Kind: ast.SchemaDef})
	idx.Set(pos(2, 0), ast.DefRef{Kind: ast.KeyDef})

	var lines []uint32
	idx.Ascend(func(p region.Position, ref ast.DefRef) bool {
		lines = append(lines, p.Line)
		return true
	})
	assert.Equal(t, []uint32{1, 2, 3}, lines)
	assert.Equal(t, 3, idx.Len())
}

func TestDefIndexAscendStopsEarly(t *testing.T) {
	idx := ast.NewDefIndex()
	idx.Set(pos(1, 0), ast.DefRef{Kind: ast.KeyDef})
	idx.Set(pos(2, 0), ast.DefRef{Kind: ast.KeyDef})
	idx.Set(pos(3, 0), ast.DefRef{Kind: ast.KeyDef})

	count := 0
	idx.Ascend(func(region.Position, ast.DefRef) bool {
		count++
		return count < 1
	})
	assert.Equal(t, 1, count)
}

func TestDefRefNilForZeroValue(t *testing.T) {
	var d ast.DefRef
	assert.True(t, d.Nil())
	assert.False(t, (ast.DefRef{Kind: ast.KeyDef}).Nil())
}
