package ast

import "strings"

// IsBareIdentifier reports whether name can be written without backtick
// quoting: `[A-Za-z_][A-Za-z0-9_]*`, matching
// original_source/impl/core/shared/CslRepr2Csl.h's isIdentifier.
func IsBareIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '_':
			// always allowed
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// QuoteIdentifier renders name as it should appear in CSL source: bare
// if it already is one, the literal "*" unquoted for the wildcard key,
// or backtick-quoted with “ ` “ and `\` escaped otherwise.
//
// The original implementation has two of these (CslRepr2Csl.h's
// quoteIdentifier, which escapes correctly, and CslLangSvr.cpp's
// backtickIfNeeded, used for rename/hover, which does not escape
// embedded backticks or backslashes in the new name). This module uses
// one helper everywhere — the Printer, the rename handler, and the
// completion handler's insertText all call QuoteIdentifier — per
// spec.md §9's preference for a single correct implementation over
// replicating an inconsistency.
func QuoteIdentifier(name string) string {
	if name == "*" {
		return name
	}
	if IsBareIdentifier(name) {
		return name
	}
	var b strings.Builder
	b.WriteByte('`')
	for _, r := range name {
		if r == '`' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('`')
	return b.String()
}
