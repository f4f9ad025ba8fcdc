package lexer

import (
	"regexp"

	"github.com/csl-lang/csl/internal/token"
)

// Datetime patterns, longest/most-specific first, ported from
// original_source/impl/core/lexer/CslLexer.cpp's ParseDateTimeLiteral.
var (
	offsetDateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[Tt ]([01]\d|2[0-3]):[0-5]\d:[0-5]\d(\.\d+)?([Zz]|[+-]([01]\d|2[0-3]):[0-5]\d)`)
	localDateTimeRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[Tt ]([01]\d|2[0-3]):[0-5]\d:[0-5]\d(\.\d+)?`)
	localDateRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	localTimeRe      = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d:[0-5]\d(\.\d+)?`)
	dateOnlyRe       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// isValidDate checks a "YYYY-MM-DD" substring for calendar validity:
// month in 1..12, day within that month's length, leap years honored.
func isValidDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	year := atoiDigits(s[0:4])
	month := atoiDigits(s[5:7])
	day := atoiDigits(s[8:10])
	if year < 1 || month < 1 || month > 12 {
		return false
	}
	daysInMonth := [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if isLeapYear(year) {
		daysInMonth[1] = 29
	}
	return day >= 1 && day <= daysInMonth[month-1]
}

func atoiDigits(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// tryDatetime scans spec.md §4.1 class 4. The four variants are tried in
// specificity order (offset, then local-datetime, then date, then
// time-only) so that e.g. a bare date isn't mistaken for a datetime
// missing its time part.
func (l *Lexer) tryDatetime() bool {
	rest := l.rest()

	if m := offsetDateTimeRe.FindString(rest); m != "" && isValidDate(dateOnlyRe.FindString(m)) {
		return l.emitDatetime(m, token.OffsetDateTime)
	}
	if m := localDateTimeRe.FindString(rest); m != "" && isValidDate(dateOnlyRe.FindString(m)) {
		return l.emitDatetime(m, token.LocalDateTime)
	}
	if m := localDateRe.FindString(rest); m != "" && isValidDate(m) {
		return l.emitDatetime(m, token.LocalDate)
	}
	if m := localTimeRe.FindString(rest); m != "" {
		return l.emitDatetime(m, token.LocalTime)
	}
	return false
}

func (l *Lexer) emitDatetime(match string, kind token.DateTimeKind) bool {
	start := l.position()
	for range []rune(match) {
		l.advance()
	}
	prop := token.Descriptor{Category: token.DateTimeCategory, DateTime: kind}
	l.push(match, token.Datetime, prop, start)
	return true
}
