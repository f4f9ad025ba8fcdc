package fixtures_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csl-lang/csl/internal/fixtures"
	"github.com/csl-lang/csl/internal/report"
	"github.com/csl-lang/csl/lexer"
	"github.com/csl-lang/csl/parser"
)

func TestAllReturnsSixScenarios(t *testing.T) {
	require.Len(t, fixtures.All(), 6)
}

func TestScenariosProduceExpectedDiagnosticCounts(t *testing.T) {
	for _, sc := range fixtures.All() {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			_, lexReport := lexer.Lex(sc.Input, false)
			_, parseReport := parser.Parse(sc.Input)

			var full report.Report
			full.Merge(lexReport)
			full.Merge(parseReport)

			// unterminated_string_recovery only guarantees "at least one
			// error" (spec.md §8): the lexer's recovery path may also
			// surface follow-on structural diagnostics past the break.
			if sc.Name == "unterminated_string_recovery" {
				assert.GreaterOrEqual(t, len(full.Errors()), sc.WantErrors, "errors for %s", sc.Name)
				return
			}
			assert.Len(t, full.Errors(), sc.WantErrors, "errors for %s", sc.Name)
			assert.Len(t, full.Warnings(), sc.WantWarnings, "warnings for %s", sc.Name)
		})
	}
}

func TestNamedLooksUpByName(t *testing.T) {
	sc, ok := fixtures.Named("conflicting_union")
	require.True(t, ok)
	assert.Contains(t, sc.Input, "string | \"dev\"")

	_, ok = fixtures.Named("does_not_exist")
	assert.False(t, ok)
}
