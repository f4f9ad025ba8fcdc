package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csl-lang/csl/internal/token"
	"github.com/csl-lang/csl/lexer"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func values(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Value
	}
	return out
}

func TestMinimalSchema(t *testing.T) {
	toks, rep := lexer.Lex("config A { x: string; }", false)
	require.Empty(t, rep.All())
	assert.Equal(t, []string{"config", "A", "{", "x", ":", "string", ";", "}"}, values(toks))
	assert.Equal(t, []token.Kind{
		token.Keyword, token.Identifier, token.Punctuator, token.Identifier,
		token.Punctuator, token.Type, token.Punctuator, token.Punctuator,
	}, kinds(toks))
}

func TestKeywordNotAdjacentToIdentifierChar(t *testing.T) {
	toks, rep := lexer.Lex("config_foo", false)
	require.Empty(t, rep.All())
	require.Len(t, toks, 1)
	assert.Equal(t, token.Identifier, toks[0].Kind)
	assert.Equal(t, "config_foo", toks[0].Value)
}

func TestWildcardKeyIsKeyword(t *testing.T) {
	toks, rep := lexer.Lex("*: string", false)
	require.Empty(t, rep.All())
	assert.Equal(t, token.Keyword, toks[0].Kind)
	assert.Equal(t, "*", toks[0].Value)
}

func TestArrowIsSinglePunctuator(t *testing.T) {
	toks, rep := lexer.Lex("requires a => b;", false)
	require.Empty(t, rep.All())
	assert.Contains(t, values(toks), "=>")
	for _, tok := range toks {
		if tok.Value == "=>" {
			assert.Equal(t, token.Punctuator, tok.Kind)
		}
	}
}

func TestUnknownCharBuffersUntilFlush(t *testing.T) {
	toks, rep := lexer.Lex("$foo", false)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Unknown, toks[0].Kind)
	assert.Equal(t, "$", toks[0].Value)
	assert.Equal(t, token.Identifier, toks[1].Kind)
	assert.Equal(t, "foo", toks[1].Value)
	require.Len(t, rep.Errors(), 1)
}

func TestUnterminatedStringRecovers(t *testing.T) {
	toks, rep := lexer.Lex(`config A { x: string = "abc\n; y: number; }`, false)
	require.NotEmpty(t, rep.Errors())
	found := false
	for _, d := range rep.Errors() {
		if strings.Contains(d.Message(), "Unterminated string") {
			found = true
		}
	}
	assert.True(t, found)
	assert.NotEmpty(t, toks)
}

func TestEnumDefaultTokens(t *testing.T) {
	toks, rep := lexer.Lex(`config A { env?: "dev" | "prod" = "dev"; }`, false)
	require.Empty(t, rep.All())
	assert.Equal(t, []string{
		"config", "A", "{", "env", "?", ":", "\"dev\"", "|", "\"prod\"", "=", "\"dev\"", ";", "}",
	}, values(toks))
}

func TestDottedConstraintReference(t *testing.T) {
	src := `config A {
  db: { ssl: boolean; };
  insecure: boolean;
  constraints { conflicts db.ssl with insecure; }
}`
	toks, rep := lexer.Lex(src, false)
	require.Empty(t, rep.All())
	assert.Contains(t, values(toks), "conflicts")
	assert.Contains(t, values(toks), "with")
}

func TestRawStringTagBoundary(t *testing.T) {
	tag16 := strings.Repeat("a", 16)
	src := `R"` + tag16 + `(hello)` + tag16 + `"`
	toks, rep := lexer.Lex(src, false)
	require.Empty(t, rep.Errors())
	require.Len(t, toks, 1)
	assert.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, "hello", toks[0].Value)
	assert.Equal(t, token.Raw, toks[0].Prop.Str)

	tag17 := strings.Repeat("a", 17)
	src2 := `R"` + tag17 + `(hello)` + tag17 + `"`
	_, rep2 := lexer.Lex(src2, false)
	assert.NotEmpty(t, rep2.Errors())
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want token.NumericKind
	}{
		{"0", token.Integer},
		{"42", token.Integer},
		{"0x1A", token.Integer},
		{"0o17", token.Integer},
		{"0b101", token.Integer},
		{"3.14", token.Float},
		{"1e10", token.Float},
		{"nan", token.NaN},
		{"inf", token.Infinity},
	}
	for _, c := range cases {
		toks, rep := lexer.Lex(c.src, false)
		require.Len(t, toks, 1, c.src)
		assert.Equal(t, token.Number, toks[0].Kind, c.src)
		assert.Equal(t, c.want, toks[0].Prop.Numeric, c.src)
		assert.Empty(t, rep.Errors(), c.src)
	}
}

func TestNumberGroupingWarning(t *testing.T) {
	_, rep := lexer.Lex("1_0_0_0", false)
	assert.NotEmpty(t, rep.Warnings())

	_, rep2 := lexer.Lex("1_000_000", false)
	assert.Empty(t, rep2.Warnings())
}

func TestDurationSuffixError(t *testing.T) {
	_, rep := lexer.Lex("5hx", false)
	assert.NotEmpty(t, rep.Errors())
}

func TestDatetimeVariants(t *testing.T) {
	cases := []struct {
		src  string
		kind token.DateTimeKind
	}{
		{"2024-01-15T10:30:00Z", token.OffsetDateTime},
		{"2024-01-15T10:30:00", token.LocalDateTime},
		{"2024-01-15", token.LocalDate},
		{"10:30:00", token.LocalTime},
	}
	for _, c := range cases {
		toks, rep := lexer.Lex(c.src, false)
		require.Len(t, toks, 1, c.src)
		assert.Equal(t, token.Datetime, toks[0].Kind, c.src)
		assert.Equal(t, c.kind, toks[0].Prop.DateTime, c.src)
		assert.Empty(t, rep.Errors(), c.src)
	}
}

func TestInvalidCalendarDateIsNotDatetime(t *testing.T) {
	toks, _ := lexer.Lex("2024-02-30", false)
	require.NotEmpty(t, toks)
	assert.NotEqual(t, token.Datetime, toks[0].Kind)
}

func TestCommentPreservation(t *testing.T) {
	toksKept, _ := lexer.Lex("// hi\nconfig", true)
	require.Len(t, toksKept, 2)
	assert.Equal(t, token.Comment, toksKept[0].Kind)

	toksDropped, _ := lexer.Lex("// hi\nconfig", false)
	require.Len(t, toksDropped, 1)
	assert.Equal(t, token.Keyword, toksDropped[0].Kind)
}

func TestBacktickIdentifierEscaping(t *testing.T) {
	toks, rep := lexer.Lex("`my\\`key`", false)
	require.Empty(t, rep.Errors())
	require.Len(t, toks, 1)
	assert.Equal(t, token.Identifier, toks[0].Kind)
	assert.Equal(t, "my\\`key", toks[0].Value)
}
