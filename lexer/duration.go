package lexer

import (
	"fmt"
	"regexp"

	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/internal/report"
	"github.com/csl-lang/csl/internal/token"
)

// Duration patterns ported from CslLexer.cpp's ParseDurationLiteral: a
// full ISO-8601 date+time duration, an ISO time-only duration, or a
// single-unit shorthand form.
var (
	isoDurationRe   = regexp.MustCompile(`^P(\d+Y|\d+M|\d+W|\d+D)+(T(\d+H|\d+M|\d+S)+)?`)
	isoTimeOnlyRe   = regexp.MustCompile(`^PT(\d+H|\d+M|\d+S)+`)
	shorthandRe     = regexp.MustCompile(`^\d+(ms|y|mo|w|d|h|m|s)`)
	leadingLetterRe = regexp.MustCompile(`^[A-Za-z]`)
)

// tryDuration scans spec.md §4.1 class 5. A trailing alphabetic
// character immediately following a successfully scanned duration is
// reported as an invalid suffix, but the duration token itself still
// stands (the lexer never retracts a match once emitted).
func (l *Lexer) tryDuration() bool {
	rest := l.rest()

	var m string
	if s := isoDurationRe.FindString(rest); s != "" {
		m = s
	} else if s := isoTimeOnlyRe.FindString(rest); s != "" {
		m = s
	} else if s := shorthandRe.FindString(rest); s != "" {
		m = s
	} else {
		return false
	}

	start := l.position()
	for range []rune(m) {
		l.advance()
	}
	l.push(m, token.Duration, token.Descriptor{Category: token.DurationCategory}, start)

	if leftover := l.rest(); leadingLetterRe.MatchString(leftover) {
		at := l.position()
		end := at
		end.Column++
		l.report.Error(fmt.Errorf("Duration literal contains invalid suffix"), report.At(region.Region{Start: at, End: end}))
	}
	return true
}
