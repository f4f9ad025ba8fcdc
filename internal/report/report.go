// Package report implements the diagnostic-accumulation type shared by
// the lexer, parser, and language server.
//
// The API is adapted from bufbuild/protocompile's report2 package: a
// Report is a slice of leveled Diagnostics built with functional
// Option values (At, Note, Help). The adaptation trims
// report2's byte-offset Span/File/IndexedFile machinery (CSL's lexer
// already tracks line/column Positions directly while scanning, so
// there is no need to re-derive them from byte offsets after the fact)
// and replaces it with region.Region, and drops report2's debug stack
// trace capture (PROTOCOMPILE_DEBUG) and rich terminal rendering
// (report2/render.go), which have no CSL analogue — diagnostics here
// are rendered with the plain "Error/Warning (line L, col C): message"
// format spec.md §7 mandates, not a multi-snippet source-highlighted
// render.
package report

import (
	"fmt"

	"github.com/csl-lang/csl/internal/region"
)

// Level is the severity of a Diagnostic.
type Level int8

const (
	Error Level = 1 + iota
	Warning
)

// Diagnostic is a single lexical, syntactic, or semantic finding.
type Diagnostic struct {
	Err   error
	Level Level

	// Region is the diagnostic's primary source location. The zero
	// Region means "no specific location" (used rarely; every CSL
	// diagnostic in practice carries a Region).
	Region region.Region

	notes []string
	help  []string
}

// Message renders the diagnostic's message text (Err.Error()).
func (d Diagnostic) Message() string {
	return d.Err.Error()
}

// Notes returns any attached contextual notes, in the order attached.
func (d Diagnostic) Notes() []string { return d.notes }

// Help returns any attached suggestions, in the order attached.
func (d Diagnostic) Help() []string { return d.help }

// Option configures a Diagnostic at push time.
type Option func(*Diagnostic)

// At attaches the diagnostic's primary region.
func At(r region.Region) Option {
	return func(d *Diagnostic) { d.Region = r }
}

// Note attaches a contextual note, shown after the primary message.
func Note(format string, args ...any) Option {
	return func(d *Diagnostic) { d.notes = append(d.notes, fmt.Sprintf(format, args...)) }
}

// Help attaches a suggested fix.
func Help(format string, args ...any) Option {
	return func(d *Diagnostic) { d.help = append(d.help, fmt.Sprintf(format, args...)) }
}

// Report is an accumulated, ordered list of diagnostics. The lexer and
// parser never abort on error (spec.md §7): instead they each own a
// Report and keep going.
type Report struct {
	diagnostics []Diagnostic
}

// Error pushes an error-level diagnostic.
func (r *Report) Error(err error, opts ...Option) {
	r.push(Error, err, opts)
}

// Warn pushes a warning-level diagnostic.
func (r *Report) Warn(err error, opts ...Option) {
	r.push(Warning, err, opts)
}

func (r *Report) push(level Level, err error, opts []Option) {
	d := Diagnostic{Err: err, Level: level}
	for _, opt := range opts {
		opt(&d)
	}
	r.diagnostics = append(r.diagnostics, d)
}

// All returns every diagnostic, in emission order.
func (r *Report) All() []Diagnostic {
	return r.diagnostics
}

// Errors returns only the Error-level diagnostics, preserving order.
func (r *Report) Errors() []Diagnostic {
	return r.filter(Error)
}

// Warnings returns only the Warning-level diagnostics, preserving order.
func (r *Report) Warnings() []Diagnostic {
	return r.filter(Warning)
}

func (r *Report) filter(level Level) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.diagnostics {
		if d.Level == level {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any Error-level diagnostic was recorded.
func (r *Report) HasErrors() bool {
	for _, d := range r.diagnostics {
		if d.Level == Error {
			return true
		}
	}
	return false
}

// Merge appends another report's diagnostics onto this one, preserving
// relative order (used when the LSP adapter combines lex and parse
// reports for a single document).
func (r *Report) Merge(other *Report) {
	r.diagnostics = append(r.diagnostics, other.diagnostics...)
}

// Format renders a diagnostic using the CLI format spec.md §7 requires:
// "Error (line L, col C): message" with 1-based line/column.
func Format(d Diagnostic) string {
	kind := "Error"
	if d.Level == Warning {
		kind = "Warning"
	}
	return fmt.Sprintf("%s (line %d, col %d): %s", kind, d.Region.Start.Line+1, d.Region.Start.Column+1, d.Message())
}
