package printer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csl-lang/csl/parser"
	"github.com/csl-lang/csl/printer"
)

func TestPrintMinimalSchema(t *testing.T) {
	f, rep := parser.Parse(`config Server {
  host: string = "localhost";
  port: number = 8080;
}`)
	require.Empty(t, rep.Errors())
	out := printer.Print(f)
	assert.Equal(t, `config Server {
  host: string = "localhost";
  port: number = 8080;
}
`, out)
}

func TestPrintSortsExplicitKeysAlphabetically(t *testing.T) {
	f, rep := parser.Parse(`config A {
  zeta: boolean;
  alpha: boolean;
}`)
	require.Empty(t, rep.Errors())
	out := printer.Print(f)
	assert.True(t, strings.Index(out, "alpha") < strings.Index(out, "zeta"))
}

func TestPrintWildcardLast(t *testing.T) {
	f, rep := parser.Parse(`config A {
  *: number;
  known: string;
}`)
	require.Empty(t, rep.Errors())
	out := printer.Print(f)
	assert.True(t, strings.Index(out, "known") < strings.Index(out, "*"))
}

func TestPrintConstraintsBlockLast(t *testing.T) {
	f, rep := parser.Parse(`config A {
  constraints { conflicts a with b; }
  a: boolean;
  b: boolean;
}`)
	require.Empty(t, rep.Errors())
	out := printer.Print(f)
	assert.True(t, strings.Index(out, "b: boolean") < strings.Index(out, "constraints"))
}

func TestPrintQuotesNonBareIdentifiers(t *testing.T) {
	f, rep := parser.Parse("config A {\n  `my key`: string;\n}")
	require.Empty(t, rep.Errors())
	out := printer.Print(f)
	assert.Contains(t, out, "`my key`")
}

func TestPrintIsIdempotent(t *testing.T) {
	f, rep := parser.Parse(`config A {
  db: { ssl: boolean; };
  insecure: boolean;
  constraints { conflicts db.ssl with insecure; }
}`)
	require.Empty(t, rep.Errors())
	once := printer.Print(f)

	f2, rep2 := parser.Parse(once)
	require.Empty(t, rep2.Errors())
	twice := printer.Print(f2)

	assert.Equal(t, once, twice)
}

func TestPrintOperatorSpacing(t *testing.T) {
	f, rep := parser.Parse(`config A {
  a: boolean;
  b: boolean;
  constraints { validate a && b; }
}`)
	require.Empty(t, rep.Errors())
	out := printer.Print(f)
	assert.Contains(t, out, "a && b")
}
