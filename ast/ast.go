// Package ast is the Config Schema Language's parsed representation:
// schemas, table/primitive/array/union types, key definitions,
// annotations, constraints, and expressions.
//
// Ownership follows spec.md §9's design note: the original C++
// implementation shares AST nodes through reference-counted pointers
// because both the tree itself and the token↦definition map retain
// references to the same nodes. Rather than port that with Go pointers
// (which would make "drop a document's AST" an exercise in convincing
// the garbage collector, not an explicit operation), every node lives
// in one of a handful of per-File arenas (github.com/csl-lang/csl's
// adaptation of bufbuild/protocompile's internal/arena.Arena), addressed
// by small integer-sized Pointer values. Dropping a File drops every
// node it owns in one assignment; the token↦definition map stores the
// same Pointer values the tree does; no node is ever copied or
// refcounted.
//
// Sum types (CSLType, Expr, Constraint) are modelled as single structs
// with a Kind discriminant and exhaustive-switch accessors, replacing
// the original's Kind-enum-plus-static_pointer_cast pattern per spec.md
// §9, rather than as Go interfaces: every variant here is a flat
// struct of value fields (no virtual dispatch is needed), so a tagged
// struct keeps allocation inside the arena instead of boxing each node
// behind an interface.
package ast

import (
	"github.com/csl-lang/csl/internal/arena"
	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/internal/token"
)

// Pointer aliases, one per arena-resident node type.
type (
	TypeID       = arena.Pointer[Type]
	KeyID        = arena.Pointer[KeyDefinition]
	ExprID       = arena.Pointer[Expr]
	ConstraintID = arena.Pointer[Constraint]
	AnnotationID = arena.Pointer[Annotation]
	SchemaID     = arena.Pointer[ConfigSchema]
)

// TypeKind discriminates CSLType's variants.
type TypeKind byte

const (
	InvalidType TypeKind = iota
	PrimitiveKind
	TableKind
	ArrayKind
	UnionKind
	AnyTableKind
	AnyArrayKind
)

// Primitive names the five CSL scalar primitives.
type Primitive byte

const (
	NoPrimitive Primitive = iota
	StringPrimitive
	NumberPrimitive
	BooleanPrimitive
	DatetimePrimitive
	DurationPrimitive
)

// String renders the primitive's CSL keyword spelling.
func (p Primitive) String() string {
	switch p {
	case StringPrimitive:
		return "string"
	case NumberPrimitive:
		return "number"
	case BooleanPrimitive:
		return "boolean"
	case DatetimePrimitive:
		return "datetime"
	case DurationPrimitive:
		return "duration"
	default:
		return ""
	}
}

// LiteralValue is a literal's source text paired with its type
// descriptor, used for allowedValues, default values, and Literal
// expressions (spec.md §3).
type LiteralValue struct {
	Text string
	Prop token.Descriptor
}

// Type is CSL's tagged CSLType variant. Every variant carries Region,
// its source span.
type Type struct {
	Kind   TypeKind
	Region region.Region

	// Primitive fields (Kind == PrimitiveKind).
	Primitive     Primitive
	AllowedValues []LiteralValue
	Annotations   []AnnotationID

	// Table fields (Kind == TableKind).
	ExplicitKeys []KeyID
	WildcardKey  KeyID // Nil() if absent.
	Constraints  []ConstraintID

	// Array fields (Kind == ArrayKind).
	Element TypeID

	// Union fields (Kind == UnionKind).
	Members []TypeID
}

// IsEnum reports whether a PrimitiveType carries a non-empty
// allowedValues literal-enum set.
func (t *Type) IsEnum() bool {
	return t.Kind == PrimitiveKind && len(t.AllowedValues) > 0
}

// KeyDefinition is one declared or wildcard key within a TableType.
type KeyDefinition struct {
	Name             string
	IsWildcard       bool
	IsOptional       bool
	Type             TypeID
	Annotations      []AnnotationID
	Default          *LiteralValue
	NameRegion       region.Region
	DefinitionRegion region.Region
}

// Annotation is an `@name(args...)` decorator (spec.md §3). IsGlobal
// reflects whether this annotation's name belongs to the global set
// ({deprecated}); it is computed once at parse time rather than
// recomputed from the name string on every access.
type Annotation struct {
	Name     string
	Args     []ExprID
	Region   region.Region
	IsGlobal bool
}

// ConstraintKind discriminates Constraint's variants.
type ConstraintKind byte

const (
	ConflictConstraint ConstraintKind = iota
	DependencyConstraint
	ValidateConstraint
)

// Constraint is one entry of a table's `constraints { }` block.
type Constraint struct {
	Kind   ConstraintKind
	Region region.Region

	// Conflict: First/Second. Dependency: Dependent/Condition (dependent => condition).
	First, Second ExprID
	// Validate: Expr.
	Expr ExprID
}

// ExprKind discriminates Expr's variants.
type ExprKind byte

const (
	LiteralExpr ExprKind = iota
	IdentifierExpr
	UnaryExpr
	BinaryExpr
	TernaryExpr
	FunctionCallExpr
	FunctionArgExpr
	AnnotationExpr
)

// Expr is CSL's expression tree node, used in annotation arguments,
// default-value-adjacent contexts, and constraints blocks.
type Expr struct {
	Kind   ExprKind
	Region region.Region

	// Literal.
	Literal LiteralValue
	// Identifier.
	Name string
	// Unary: Op, Operand. Binary: Op, LHS, RHS.
	Op       string
	LHS, RHS ExprID
	Operand  ExprID
	// Ternary.
	Cond, Then, Else ExprID
	// FunctionCall.
	FuncName string
	Args     []ExprID
	// FunctionArg: either Value (single expr) or List (bracketed list), never both.
	Value  ExprID
	List   []ExprID
	IsList bool
	// Annotation: Target plus the Annotation node it carries.
	Target     ExprID
	Annotation AnnotationID
}

// ConfigSchema is one top-level `config Name { ... }` declaration.
type ConfigSchema struct {
	Name       string
	RootTable  TypeID
	Region     region.Region
	NameRegion region.Region
}

// File owns every arena-resident node parsed from one CSL source text,
// plus the ordered list of top-level schemas and the token↦definition
// index built alongside them. Dropping a File (letting it become
// unreachable) drops everything it owns — there is no separate
// refcounted cleanup step, unlike the C++ original's shared_ptr graph.
type File struct {
	Types       arena.Arena[Type]
	Keys        arena.Arena[KeyDefinition]
	Exprs       arena.Arena[Expr]
	Constraints arena.Arena[Constraint]
	Annotations arena.Arena[Annotation]
	Schemas     arena.Arena[ConfigSchema]

	SchemaOrder []SchemaID
	Defs        *DefIndex
}

// NewFile allocates an empty File with an initialized definition index.
func NewFile() *File {
	return &File{Defs: NewDefIndex()}
}

func (f *File) Type(id TypeID) *Type                   { return id.In(&f.Types) }
func (f *File) Key(id KeyID) *KeyDefinition            { return id.In(&f.Keys) }
func (f *File) Expr(id ExprID) *Expr                   { return id.In(&f.Exprs) }
func (f *File) Constraint(id ConstraintID) *Constraint { return id.In(&f.Constraints) }
func (f *File) Ann(id AnnotationID) *Annotation        { return id.In(&f.Annotations) }
func (f *File) Schema(id SchemaID) *ConfigSchema       { return id.In(&f.Schemas) }

// SchemaList returns every top-level schema in declaration order.
func (f *File) SchemaList() []*ConfigSchema {
	out := make([]*ConfigSchema, len(f.SchemaOrder))
	for i, id := range f.SchemaOrder {
		out[i] = f.Schema(id)
	}
	return out
}
