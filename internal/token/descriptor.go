package token

// DescriptorCategory is the coarse family of a literal Descriptor.
type DescriptorCategory byte

const (
	Invalid DescriptorCategory = iota
	BooleanCategory
	NumericCategory
	StringCategory
	DateTimeCategory
	DurationCategory
)

// NumericKind distinguishes the numeric literal sub-variants, mirroring
// original_source/impl/core/shared/Type.h's Numeric hierarchy
// (Integer, Float, SpecialNumber{NaN, Infinity}).
type NumericKind byte

const (
	Integer NumericKind = iota
	Float
	NaN
	Infinity
)

// StringKind distinguishes the string literal sub-variants.
type StringKind byte

const (
	Basic StringKind = iota
	MultiLineBasic
	Raw
	MultiLineRaw
)

// DateTimeKind distinguishes the four ISO 8601 datetime sub-variants.
type DateTimeKind byte

const (
	OffsetDateTime DateTimeKind = iota
	LocalDateTime
	LocalDate
	LocalTime
)

// Descriptor is the literal "type descriptor" carried by number,
// string, boolean, and datetime/duration tokens and by Literal
// expressions, per spec.md §3's TypeDescriptor table.
//
// This is a tagged variant, represented as a single Go struct with a
// Category discriminant rather than as an interface hierarchy: there is
// no behavior attached to a Descriptor beyond inspecting which variant
// it is, so a closed struct suffices — the same tagged-struct form that
// ast.Type and ast.Expr use for CSLType and Expr — and it satisfies
// spec.md §9's "tagged variants over inheritance" guidance.
type Descriptor struct {
	Category DescriptorCategory
	Numeric  NumericKind
	Str      StringKind
	DateTime DateTimeKind
}

// String returns the descriptor's category name, matching the toString()
// strings original_source/impl/core/shared/Type.h's classes produce
// (e.g. "Integer", "Basic", "OffsetDateTime"), used in hover text and
// diagnostics.
func (d Descriptor) String() string {
	switch d.Category {
	case BooleanCategory:
		return "Boolean"
	case NumericCategory:
		switch d.Numeric {
		case Integer:
			return "Integer"
		case Float:
			return "Float"
		case NaN:
			return "NaN"
		case Infinity:
			return "Infinity"
		}
	case StringCategory:
		switch d.Str {
		case Basic:
			return "Basic"
		case MultiLineBasic:
			return "MultiLineBasic"
		case Raw:
			return "Raw"
		case MultiLineRaw:
			return "MultiLineRaw"
		}
	case DateTimeCategory:
		switch d.DateTime {
		case OffsetDateTime:
			return "OffsetDateTime"
		case LocalDateTime:
			return "LocalDateTime"
		case LocalDate:
			return "LocalDate"
		case LocalTime:
			return "LocalTime"
		}
	case DurationCategory:
		return "Duration"
	}
	return "Invalid"
}

// Primitive reports which of the five CSL primitives (string, number,
// boolean, datetime, duration) this descriptor belongs to, and false if
// it is Invalid. Used by the parser's default-value/primitive
// compatibility check (spec.md §4.2's "Default literal descriptor must
// match declared primitive").
func (d Descriptor) Primitive() (name string, ok bool) {
	switch d.Category {
	case BooleanCategory:
		return "boolean", true
	case NumericCategory:
		return "number", true
	case StringCategory:
		return "string", true
	case DateTimeCategory:
		return "datetime", true
	case DurationCategory:
		return "duration", true
	default:
		return "", false
	}
}
