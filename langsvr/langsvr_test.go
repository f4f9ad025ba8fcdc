package langsvr_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csl-lang/csl/langsvr"
)

// frame and readFrames duplicate the Content-Length wire format the
// server itself implements, kept separate here so the test drives the
// server purely through its public stdio contract rather than reaching
// into unexported transport helpers.

func frame(t *testing.T, v any) []byte {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return []byte(fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body))
}

func readFrames(t *testing.T, r *bufio.Reader) []map[string]any {
	t.Helper()
	var out []map[string]any
	for {
		contentLength := -1
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return out
			}
			trimmed := strings.TrimRight(line, "\r\n")
			if trimmed == "" {
				break
			}
			if strings.HasPrefix(trimmed, "Content-Length:") {
				n, err := strconv.Atoi(strings.TrimSpace(trimmed[len("Content-Length:"):]))
				require.NoError(t, err)
				contentLength = n
			}
		}
		require.GreaterOrEqual(t, contentLength, 0)
		buf := make([]byte, contentLength)
		_, err := io.ReadFull(r, buf)
		require.NoError(t, err)
		var msg map[string]any
		require.NoError(t, json.Unmarshal(buf, &msg))
		out = append(out, msg)
	}
}

func runServer(t *testing.T, requests ...any) []map[string]any {
	t.Helper()
	var in bytes.Buffer
	for _, req := range requests {
		in.Write(frame(t, req))
	}
	var out bytes.Buffer
	s := langsvr.NewServer(&out)
	s.Run(&in)
	return readFrames(t, bufio.NewReader(&out))
}

func req(id int, method string, params any) map[string]any {
	return map[string]any{"jsonrpc": "2.0", "id": id, "method": method, "params": params}
}

func notif(method string, params any) map[string]any {
	return map[string]any{"jsonrpc": "2.0", "method": method, "params": params}
}

const sampleSchema = `config Server {
  host: string;
  port: number;
  *: any{};
}
`

func TestInitializeAdvertisesCapabilities(t *testing.T) {
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		req(2, "shutdown", nil),
		notif("exit", nil),
	)
	require.Len(t, responses, 2)

	result, ok := responses[0]["result"].(map[string]any)
	require.True(t, ok)
	caps, ok := result["capabilities"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, caps["hoverProvider"])
	assert.Equal(t, true, caps["definitionProvider"])
	assert.Equal(t, true, caps["referencesProvider"])
	assert.Equal(t, true, caps["renameProvider"])
	assert.Equal(t, true, caps["foldingRangeProvider"])

	legend, ok := caps["semanticTokensProvider"].(map[string]any)["legend"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, legend["tokenTypes"])
}

func TestDidOpenPublishesDiagnosticsForInvalidSchema(t *testing.T) {
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		notif("textDocument/didOpen", map[string]any{
			"textDocument": map[string]any{"uri": "file:///bad.csl", "text": "config {"},
		}),
		req(2, "shutdown", nil),
		notif("exit", nil),
	)

	var diagParams map[string]any
	for _, m := range responses {
		if m["method"] == "textDocument/publishDiagnostics" {
			diagParams = m["params"].(map[string]any)
		}
	}
	require.NotNil(t, diagParams, "expected a publishDiagnostics notification")
	diags, ok := diagParams["diagnostics"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, diags)
}

func TestDidOpenNoDiagnosticsForValidSchema(t *testing.T) {
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		notif("textDocument/didOpen", map[string]any{
			"textDocument": map[string]any{"uri": "file:///good.csl", "text": sampleSchema},
		}),
		req(2, "shutdown", nil),
		notif("exit", nil),
	)

	var diagParams map[string]any
	for _, m := range responses {
		if m["method"] == "textDocument/publishDiagnostics" {
			diagParams = m["params"].(map[string]any)
		}
	}
	require.NotNil(t, diagParams)
	diags, ok := diagParams["diagnostics"].([]any)
	require.True(t, ok)
	assert.Empty(t, diags)
}

func TestHoverOnKeyReturnsMarkdown(t *testing.T) {
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		notif("textDocument/didOpen", map[string]any{
			"textDocument": map[string]any{"uri": "file:///hover.csl", "text": sampleSchema},
		}),
		req(2, "textDocument/hover", map[string]any{
			"textDocument": map[string]any{"uri": "file:///hover.csl"},
			"position":     map[string]any{"line": 1, "character": 3},
		}),
		req(3, "shutdown", nil),
		notif("exit", nil),
	)

	var hover map[string]any
	for _, m := range responses {
		if id, ok := m["id"].(float64); ok && int(id) == 2 {
			hover = m["result"].(map[string]any)
		}
	}
	require.NotNil(t, hover)
	contents, ok := hover["contents"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, contents["value"], "host")
}

func TestDefinitionOnUnknownDocumentReturnsJSONRPCError(t *testing.T) {
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		req(2, "textDocument/definition", map[string]any{
			"textDocument": map[string]any{"uri": "file:///never-opened.csl"},
			"position":     map[string]any{"line": 0, "character": 0},
		}),
		req(3, "shutdown", nil),
		notif("exit", nil),
	)

	var definitionResp map[string]any
	for _, m := range responses {
		if id, ok := m["id"].(float64); ok && int(id) == 2 {
			definitionResp = m
		}
	}
	require.NotNil(t, definitionResp)
	assert.Nil(t, definitionResp["result"])
	errObj, ok := definitionResp["error"].(map[string]any)
	require.True(t, ok, "expected a JSON-RPC error object, not a result payload")
	assert.Contains(t, errObj["message"], "Document not found")
}

func TestFormattingProducesEdits(t *testing.T) {
	unformatted := "config A {\nx: string;\n      y: number;\n}"
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		notif("textDocument/didOpen", map[string]any{
			"textDocument": map[string]any{"uri": "file:///fmt.csl", "text": unformatted},
		}),
		req(2, "textDocument/formatting", map[string]any{
			"textDocument": map[string]any{"uri": "file:///fmt.csl"},
		}),
		req(3, "shutdown", nil),
		notif("exit", nil),
	)

	var edits []any
	for _, m := range responses {
		if id, ok := m["id"].(float64); ok && int(id) == 2 {
			edits, _ = m["result"].([]any)
		}
	}
	assert.NotEmpty(t, edits)
}

func TestGenerateHtmlDocReturnsOnePagePerSchema(t *testing.T) {
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		notif("textDocument/didOpen", map[string]any{
			"textDocument": map[string]any{"uri": "file:///doc.csl", "text": sampleSchema},
		}),
		req(2, "csl/generateHtmlDoc", map[string]any{
			"textDocument": map[string]any{"uri": "file:///doc.csl"},
		}),
		req(3, "shutdown", nil),
		notif("exit", nil),
	)

	var pages map[string]any
	for _, m := range responses {
		if id, ok := m["id"].(float64); ok && int(id) == 2 {
			pages, _ = m["result"].(map[string]any)
		}
	}
	require.NotEmpty(t, pages)
}

func TestGenerateHtmlDocReuseExistingAbsentUsesCache(t *testing.T) {
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		notif("textDocument/didOpen", map[string]any{
			"textDocument": map[string]any{"uri": "file:///reuse.csl", "text": sampleSchema},
		}),
		req(2, "csl/generateHtmlDoc", map[string]any{
			"textDocument": map[string]any{"uri": "file:///reuse.csl"},
		}),
		req(3, "shutdown", nil),
		notif("exit", nil),
	)

	var pages map[string]any
	for _, m := range responses {
		if id, ok := m["id"].(float64); ok && int(id) == 2 {
			pages, _ = m["result"].(map[string]any)
		}
	}
	require.NotEmpty(t, pages)
}

func TestGenerateHtmlDocUnopenedWithTextParsesStandalone(t *testing.T) {
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		req(2, "csl/generateHtmlDoc", map[string]any{
			"textDocument":  map[string]any{"uri": "file:///never-opened.csl", "text": sampleSchema},
			"reuseExisting": true,
		}),
		req(3, "shutdown", nil),
		notif("exit", nil),
	)

	var pages map[string]any
	for _, m := range responses {
		if id, ok := m["id"].(float64); ok && int(id) == 2 {
			pages, _ = m["result"].(map[string]any)
		}
	}
	require.NotEmpty(t, pages)
}

func TestCompletionSuggestsKeys(t *testing.T) {
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		notif("textDocument/didOpen", map[string]any{
			"textDocument": map[string]any{"uri": "file:///complete.csl", "text": sampleSchema},
		}),
		req(2, "textDocument/completion", map[string]any{
			"textDocument": map[string]any{"uri": "file:///complete.csl"},
			"position":     map[string]any{"line": 1, "character": 1},
		}),
		req(3, "shutdown", nil),
		notif("exit", nil),
	)

	var result map[string]any
	for _, m := range responses {
		if id, ok := m["id"].(float64); ok && int(id) == 2 {
			result, _ = m["result"].(map[string]any)
		}
	}
	require.NotNil(t, result)
	items, ok := result["items"].([]any)
	require.True(t, ok)

	var labels []string
	for _, it := range items {
		labels = append(labels, it.(map[string]any)["label"].(string))
	}
	assert.Contains(t, labels, "host")
	assert.Contains(t, labels, "port")
}

func TestRenameRewritesAllReferences(t *testing.T) {
	schema := `config A {
  x: string;
}
`
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		notif("textDocument/didOpen", map[string]any{
			"textDocument": map[string]any{"uri": "file:///rename.csl", "text": schema},
		}),
		req(2, "textDocument/rename", map[string]any{
			"textDocument": map[string]any{"uri": "file:///rename.csl"},
			"position":     map[string]any{"line": 1, "character": 2},
			"newName":      "y",
		}),
		req(3, "shutdown", nil),
		notif("exit", nil),
	)

	var result map[string]any
	for _, m := range responses {
		if id, ok := m["id"].(float64); ok && int(id) == 2 {
			result, _ = m["result"].(map[string]any)
		}
	}
	require.NotNil(t, result)
	changes, ok := result["changes"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, changes["file:///rename.csl"])
}

func TestExitBeforeShutdownReturnsNonZero(t *testing.T) {
	var in bytes.Buffer
	in.Write(frame(t, req(1, "initialize", map[string]any{})))
	in.Write(frame(t, notif("initialized", nil)))
	in.Write(frame(t, notif("exit", nil)))
	var out bytes.Buffer
	s := langsvr.NewServer(&out)
	code := s.Run(&in)
	assert.Equal(t, 1, code)
}

func TestShutdownThenExitReturnsZero(t *testing.T) {
	var in bytes.Buffer
	in.Write(frame(t, req(1, "initialize", map[string]any{})))
	in.Write(frame(t, notif("initialized", nil)))
	in.Write(frame(t, req(2, "shutdown", nil)))
	in.Write(frame(t, notif("exit", nil)))
	var out bytes.Buffer
	s := langsvr.NewServer(&out)
	code := s.Run(&in)
	assert.Equal(t, 0, code)
}

func TestRequestBeforeInitializeFailsWithProtocolError(t *testing.T) {
	responses := runServer(t,
		req(1, "textDocument/hover", map[string]any{
			"textDocument": map[string]any{"uri": "file:///early.csl"},
			"position":     map[string]any{"line": 0, "character": 0},
		}),
	)
	require.Len(t, responses, 1)
	errObj, ok := responses[0]["error"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errObj["message"], "Server not initialized")
}

func TestFoldingRangeFoldsMultilineBlock(t *testing.T) {
	responses := runServer(t,
		req(1, "initialize", map[string]any{}),
		notif("initialized", nil),
		notif("textDocument/didOpen", map[string]any{
			"textDocument": map[string]any{"uri": "file:///fold.csl", "text": sampleSchema},
		}),
		req(2, "textDocument/foldingRange", map[string]any{
			"textDocument": map[string]any{"uri": "file:///fold.csl"},
		}),
		req(3, "shutdown", nil),
		notif("exit", nil),
	)

	var ranges []any
	for _, m := range responses {
		if id, ok := m["id"].(float64); ok && int(id) == 2 {
			ranges, _ = m["result"].([]any)
		}
	}
	require.NotEmpty(t, ranges)
	first := ranges[0].(map[string]any)
	assert.Equal(t, "range", first["kind"])
}
