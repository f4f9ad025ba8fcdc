package docgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csl-lang/csl/docgen"
	"github.com/csl-lang/csl/parser"
)

func TestGenerateProducesOnePagePerSchema(t *testing.T) {
	f, rep := parser.Parse(`config Server {
  host: string = "localhost";
  port: number = 8080;
}

config Client {
  timeout: duration;
}`)
	require.Empty(t, rep.Errors())

	pages := docgen.Generate(f)
	require.Len(t, pages, 2)
	assert.Equal(t, "server.html", pages[0].FileName)
	assert.Equal(t, "client.html", pages[1].FileName)
	assert.Contains(t, pages[0].HTML, "host")
	assert.Contains(t, pages[0].HTML, "port")
}

func TestGenerateNestedTableGetsOwnPage(t *testing.T) {
	f, rep := parser.Parse(`config A {
  db: {
    host: string;
    ssl: boolean;
  };
}`)
	require.Empty(t, rep.Errors())

	pages := docgen.Generate(f)
	require.Len(t, pages, 2)

	var nested *docgen.Page
	for i := range pages {
		if pages[i].FileName == "a-db.html" {
			nested = &pages[i]
		}
	}
	require.NotNil(t, nested)
	assert.Contains(t, nested.HTML, "host")
	assert.Contains(t, nested.HTML, "ssl")
}

func TestGenerateWildcardKeyGetsPlaceholderLabel(t *testing.T) {
	f, rep := parser.Parse(`config Servers {
  *: {
    port: number;
  };
}`)
	require.Empty(t, rep.Errors())

	pages := docgen.Generate(f)
	require.Len(t, pages, 2)
	root := pages[0]
	assert.Contains(t, root.HTML, "k-wildcard")

	var nested *docgen.Page
	for i := range pages {
		if strings.Contains(pages[i].FileName, "wildcard") {
			nested = &pages[i]
		}
	}
	require.NotNil(t, nested)
	assert.Contains(t, nested.HTML, "port")
}

func TestGenerateEmbedsStructureGraphJSON(t *testing.T) {
	f, rep := parser.Parse(`config A {
  db: { host: string; };
}`)
	require.Empty(t, rep.Errors())

	pages := docgen.Generate(f)
	require.NotEmpty(t, pages)
	assert.Contains(t, pages[0].HTML, `"nodes"`)
	assert.Contains(t, pages[0].HTML, `"edges"`)
	assert.Contains(t, pages[0].HTML, `"db"`)
}

func TestGenerateRendersConstraintsAndAnnotations(t *testing.T) {
	f, rep := parser.Parse(`config A {
  a: number @min(1);
  b: number;
  constraints {
    conflicts a with b;
  }
}`)
	require.Empty(t, rep.Errors())

	pages := docgen.Generate(f)
	require.NotEmpty(t, pages)
	assert.Contains(t, pages[0].HTML, "conflicts a with b")
	assert.Contains(t, pages[0].HTML, "@min(1)")
}

func TestGenerateEscapesHTML(t *testing.T) {
	f, rep := parser.Parse("config A {\n  `<script>`: string;\n}")
	require.Empty(t, rep.Errors())

	pages := docgen.Generate(f)
	require.NotEmpty(t, pages)
	assert.Contains(t, pages[0].HTML, "&lt;script&gt;")
	assert.NotContains(t, pages[0].HTML, "<td><code><script>")
}
