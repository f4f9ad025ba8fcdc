package ast

import (
	"github.com/tidwall/btree"

	"github.com/csl-lang/csl/internal/region"
)

// DefKind discriminates what a DefRef points at.
type DefKind byte

const (
	NoDef DefKind = iota
	SchemaDef
	KeyDef
)

// DefRef is either a SchemaID or a KeyID — the "variant<shared_ptr<ConfigSchema>,
// shared_ptr<KeyDefinition>>" of the original implementation, represented
// here as a small tagged struct of two arena Pointers instead of an
// interface, since only two concrete cases ever occur and both are
// already cheap-to-copy integers.
type DefRef struct {
	Kind   DefKind
	Schema SchemaID
	Key    KeyID
}

// Nil reports whether this DefRef points at nothing.
func (d DefRef) Nil() bool { return d.Kind == NoDef }

// DefIndex maps an identifier token's starting Position to the
// definition it resolves to.
//
// original_source/impl/core/parser/CslParser.cpp's
// getIdentifierTokenIndexFromRegion does an O(n) linear scan over the
// token list to find a token at a given region — flagged directly by
// spec.md §9 as the kind of thing that should become index-based in an
// idiomatic rewrite. This implementation keys by Position instead, in
// an ordered B-tree (github.com/tidwall/btree, carried from the
// teacher's own go.mod and used the same way protocompile's linker/
// package uses it for ordered symbol tables), giving O(log n) inserts
// during parsing and O(log n) point lookups during LSP hover/definition/
// completion/rename/references — instead of a second linear scan per
// query.
type DefIndex struct {
	tree *btree.BTreeG[defEntry]
}

type defEntry struct {
	pos region.Position
	ref DefRef
}

func defLess(a, b defEntry) bool {
	return a.pos.Less(b.pos)
}

// NewDefIndex constructs an empty index.
func NewDefIndex() *DefIndex {
	return &DefIndex{tree: btree.NewBTreeG(defLess)}
}

// Set records that the identifier token starting at pos resolves to ref.
func (d *DefIndex) Set(pos region.Position, ref DefRef) {
	d.tree.Set(defEntry{pos: pos, ref: ref})
}

// Lookup returns the DefRef recorded at exactly pos, if any.
func (d *DefIndex) Lookup(pos region.Position) (DefRef, bool) {
	e, ok := d.tree.Get(defEntry{pos: pos})
	return e.ref, ok
}

// Len returns the number of mapped positions.
func (d *DefIndex) Len() int {
	return d.tree.Len()
}

// Ascend calls fn for every mapped (Position, DefRef) pair in position
// order, stopping early if fn returns false. Used by references/rename
// to collect every usage pointing at the same definition.
func (d *DefIndex) Ascend(fn func(pos region.Position, ref DefRef) bool) {
	d.tree.Scan(func(e defEntry) bool {
		return fn(e.pos, e.ref)
	})
}
