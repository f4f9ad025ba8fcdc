package formatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csl-lang/csl/formatter"
	"github.com/csl-lang/csl/parser"
	"github.com/csl-lang/csl/printer"
)

func TestFormatNoopOnCanonicalText(t *testing.T) {
	src := `config A {
  x: string;
}
`
	f, rep := parser.Parse(src)
	require.Empty(t, rep.Errors())
	canonical := printer.Print(f)
	edits := formatter.Format(canonical, f)
	assert.Empty(t, edits)
}

func TestFormatProducesEditsForMisformattedText(t *testing.T) {
	src := `config A {
x: string;
      y: number;
}`
	f, rep := parser.Parse(src)
	require.Empty(t, rep.Errors())
	edits := formatter.Format(src, f)
	require.NotEmpty(t, edits)

	applied := formatter.Apply(src, edits)
	assert.Equal(t, printer.Print(f), applied)
}

func TestFormatReordersKeysAndSortsWildcardLast(t *testing.T) {
	src := `config A {
*: number;
b: string;
a: string;
}`
	f, rep := parser.Parse(src)
	require.Empty(t, rep.Errors())
	edits := formatter.Format(src, f)
	applied := formatter.Apply(src, edits)
	assert.Equal(t, printer.Print(f), applied)
}
