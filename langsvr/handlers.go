package langsvr

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/csl-lang/csl/ast"
	"github.com/csl-lang/csl/docgen"
	"github.com/csl-lang/csl/formatter"
	"github.com/csl-lang/csl/internal/region"
	"github.com/csl-lang/csl/internal/report"
	"github.com/csl-lang/csl/internal/token"
)

// keywordCompletions and typeCompletions mirror handleCompletion's
// buildKeywordTypePairs map, one list per LSP CompletionItemKind
// (14 = Keyword, 25 = TypeParameter, the closest stand-in the original
// reuses for "built-in type" with no dedicated LSP kind of its own).
var keywordCompletions = []string{
	"config", "constraints", "requires", "conflicts", "with", "validate",
	"exists", "count_keys", "all_keys", "wildcard_keys", "subset", "*",
}

var typeCompletions = []string{"any{}", "any[]", "string", "number", "boolean", "datetime", "duration"}

func params[T any](raw json.RawMessage) T {
	var v T
	_ = json.Unmarshal(raw, &v)
	return v
}

// ---- lifecycle ----

type initializeParams struct {
	Trace        string `json:"trace"`
	Capabilities struct {
		TextDocument struct {
			SemanticTokens struct {
				MultilineTokenSupport bool `json:"multilineTokenSupport"`
			} `json:"semanticTokens"`
		} `json:"textDocument"`
	} `json:"capabilities"`
}

func (s *Server) handleInitialize(raw json.RawMessage) json.RawMessage {
	p := params[initializeParams](raw)
	if p.Trace != "" {
		s.traceValue = p.Trace
	}
	s.serverInitialized = true

	result := map[string]any{
		"capabilities": map[string]any{
			"textDocumentSync":     1,
			"referencesProvider":   true,
			"renameProvider":       true,
			"foldingRangeProvider": true,
			"semanticTokensProvider": map[string]any{
				"legend": map[string]any{
					"tokenTypes":     token.LegendTokenTypes(),
					"tokenModifiers": []string{},
				},
				"full": true,
			},
			"documentFormattingProvider": true,
			"definitionProvider":         true,
			"completionProvider": map[string]any{
				"triggerCharacters":   []string{".", "-", "c", "s", "n", "b", "d", "a", "w", "r", "v", "e"},
				"allCommitCharacters": []string{".", "=", " ", "\"", "'", "]", "}"},
			},
			"hoverProvider": true,
			"diagnosticProvider": map[string]any{
				"interFileDependencies": true,
				"workspaceDiagnostics":  false,
			},
		},
	}
	body, _ := json.Marshal(result)
	return body
}

func (s *Server) handleSetTrace(raw json.RawMessage) {
	var p struct {
		Value string `json:"value"`
	}
	_ = json.Unmarshal(raw, &p)
	s.traceValue = p.Value
}

// ---- documents ----

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type didOpenParams struct {
	TextDocument struct {
		URI  string `json:"uri"`
		Text string `json:"text"`
	} `json:"textDocument"`
}

func (s *Server) handleDidOpen(raw json.RawMessage) {
	p := params[didOpenParams](raw)
	s.recompute(p.TextDocument.URI, p.TextDocument.Text)
	s.publishDiagnostics(p.TextDocument.URI)
}

type didChangeParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

func (s *Server) handleDidChange(raw json.RawMessage) {
	p := params[didChangeParams](raw)
	if len(p.ContentChanges) == 0 {
		return
	}
	text := p.ContentChanges[len(p.ContentChanges)-1].Text
	s.recompute(p.TextDocument.URI, text)
	s.publishDiagnostics(p.TextDocument.URI)
}

func (s *Server) handleDidClose(raw json.RawMessage) {
	p := params[struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}](raw)
	delete(s.documents, normalizeUri(p.TextDocument.URI))
}

func (s *Server) recompute(uri, text string) {
	s.documents[normalizeUri(uri)] = analyze(text)
}

func (s *Server) doc(uri string) (*document, bool) {
	d, ok := s.documents[normalizeUri(uri)]
	return d, ok
}

// ---- diagnostics ----

type lspDiagnostic struct {
	Range    lspRange `json:"range"`
	Message  string   `json:"message"`
	Severity int      `json:"severity"`
}

func diagnosticsFor(rep *report.Report) []lspDiagnostic {
	var out []lspDiagnostic
	for _, d := range rep.Errors() {
		out = append(out, lspDiagnostic{Range: toLSPRange(d.Region), Message: d.Message(), Severity: 1})
	}
	for _, d := range rep.Warnings() {
		out = append(out, lspDiagnostic{Range: toLSPRange(d.Region), Message: d.Message(), Severity: 2})
	}
	return out
}

func (s *Server) publishDiagnostics(uri string) {
	d, ok := s.doc(uri)
	if !ok {
		return
	}
	diags := diagnosticsFor(d.report)
	if diags == nil {
		diags = []lspDiagnostic{}
	}
	s.notify("textDocument/publishDiagnostics", map[string]any{
		"uri":         uri,
		"diagnostics": diags,
	})
}

// ---- semantic tokens ----

type semanticTokensParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

func (s *Server) handleSemanticTokens(raw json.RawMessage) (json.RawMessage, error) {
	p := params[semanticTokensParams](raw)
	d, ok := s.doc(p.TextDocument.URI)
	if !ok {
		return nil, errDocumentNotFound
	}

	var data []uint32
	var prevLine, prevChar uint32
	for _, t := range d.tokensWithComments {
		deltaLine := t.Region.Start.Line - prevLine
		var deltaChar uint32
		if deltaLine == 0 {
			deltaChar = t.Region.Start.Column - prevChar
		} else {
			deltaChar = t.Region.Start.Column
		}

		var length uint32
		if t.Region.End.Line != t.Region.Start.Line {
			length = uint32(len([]rune(t.Value)))
		} else {
			length = t.Region.End.Column - t.Region.Start.Column
		}

		data = append(data, deltaLine, deltaChar, length, uint32(t.Kind.LegendIndex()), 0)
		prevLine, prevChar = t.Region.Start.Line, t.Region.Start.Column
	}
	if data == nil {
		data = []uint32{}
	}

	body, _ := json.Marshal(map[string]any{"data": data})
	return body, nil
}

// ---- formatting ----

func (s *Server) handleFormatting(raw json.RawMessage) (json.RawMessage, error) {
	p := params[semanticTokensParams](raw)
	d, ok := s.doc(p.TextDocument.URI)
	if !ok {
		return nil, errDocumentNotFound
	}

	edits := formatter.Format(d.text, d.file)
	out := make([]lspTextEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, lspTextEdit{Range: toLSPRange(e.ToRegion()), NewText: e.NewText})
	}
	body, _ := json.Marshal(out)
	return body, nil
}

// ---- html doc generation ----

type generateHtmlDocParams struct {
	TextDocument struct {
		URI  string  `json:"uri"`
		Text *string `json:"text"`
	} `json:"textDocument"`
}

// handleGenerateHtmlDoc ports handleGenerateHtmlDoc's reuse-existing-cache
// semantics: the presence (not the value) of "reuseExisting" in params
// decides the path. Absent: the cached document must exist and is used
// directly. Present: the caller-supplied text is compared byte-for-byte
// against the cached text; on a match the cached parse is reused,
// otherwise the supplied text is lexed/parsed standalone without
// touching the document cache.
func (s *Server) handleGenerateHtmlDoc(raw json.RawMessage) (json.RawMessage, error) {
	p := params[generateHtmlDocParams](raw)

	var presence map[string]json.RawMessage
	_ = json.Unmarshal(raw, &presence)
	_, hasReuseExisting := presence["reuseExisting"]

	var f *ast.File
	cached, ok := s.doc(p.TextDocument.URI)

	switch {
	case !hasReuseExisting:
		if !ok {
			return nil, errDocumentNotFound
		}
		f = cached.file
	case ok && p.TextDocument.Text != nil && cached.text == *p.TextDocument.Text:
		f = cached.file
	case p.TextDocument.Text != nil:
		f = analyze(*p.TextDocument.Text).file
	default:
		return nil, errDocumentNotFound
	}

	pages := docgen.Generate(f, docgen.Theme(s.htmlTheme))
	files := make(map[string]string, len(pages))
	for _, pg := range pages {
		files[pg.FileName] = pg.HTML
	}
	body, _ := json.Marshal(files)
	return body, nil
}

// ---- position-based requests ----

type positionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     lspPosition            `json:"position"`
}

func (s *Server) handleDefinition(raw json.RawMessage) (json.RawMessage, error) {
	p := params[positionParams](raw)
	d, ok := s.doc(p.TextDocument.URI)
	if !ok {
		return nil, errDocumentNotFound
	}

	pos := fromLSPPosition(p.Position)
	t, found := d.tokenAt(pos)
	if !found || t.Kind != token.Identifier {
		return []byte("{}"), nil
	}
	ref, ok := d.file.Defs.Lookup(t.Region.Start)
	if !ok {
		return []byte("{}"), nil
	}
	loc, ok := defRefLocation(d, p.TextDocument.URI, ref)
	if !ok {
		return []byte("{}"), nil
	}
	body, _ := json.Marshal(loc)
	return body, nil
}

func defRefLocation(d *document, uri string, ref ast.DefRef) (lspLocation, bool) {
	switch ref.Kind {
	case ast.SchemaDef:
		sc := d.file.Schema(ref.Schema)
		return toLSPLocation(uri, sc.NameRegion), true
	case ast.KeyDef:
		k := d.keyByID(ref.Key)
		if k == nil {
			return lspLocation{}, false
		}
		return toLSPLocation(uri, k.NameRegion), true
	default:
		return lspLocation{}, false
	}
}

func (s *Server) handleHover(raw json.RawMessage) (json.RawMessage, error) {
	p := params[positionParams](raw)
	d, ok := s.doc(p.TextDocument.URI)
	if !ok {
		return nil, errDocumentNotFound
	}

	pos := fromLSPPosition(p.Position)
	t, found := d.tokenAt(pos)
	if !found || t.Kind != token.Identifier {
		return []byte("{}"), nil
	}
	ref, ok := d.file.Defs.Lookup(t.Region.Start)
	if !ok {
		return []byte("{}"), nil
	}

	markdown, ok := hoverMarkdown(d, ref)
	if !ok {
		return []byte("{}"), nil
	}
	body, _ := json.Marshal(map[string]any{
		"contents": map[string]any{"kind": "markdown", "value": markdown},
		"range":    toLSPRange(t.Region),
	})
	return body, nil
}

func hoverMarkdown(d *document, ref ast.DefRef) (string, bool) {
	switch ref.Kind {
	case ast.SchemaDef:
		sc := d.file.Schema(ref.Schema)
		return fmt.Sprintf("## **Schema** %s\n- **Defined At**: ln %d, col %d",
			sc.Name, sc.Region.Start.Line+1, sc.Region.Start.Column+1), true

	case ast.KeyDef:
		k := d.keyByID(ref.Key)
		if k == nil {
			return "", false
		}
		keyTypeStr := typeKindLabel(d.file, k.Type)
		var b strings.Builder
		b.WriteString("## ")
		if k.IsWildcard {
			fmt.Fprintf(&b, "Wildcard **%s**\n", keyTypeStr)
		} else {
			fmt.Fprintf(&b, "**%s** %s\n", keyTypeStr, k.Name)
		}
		if k.IsOptional {
			b.WriteString("- **Optional** key\n")
		}
		fmt.Fprintf(&b, "- **Defined At**: ln %d, col %d\n", k.NameRegion.Start.Line+1, k.NameRegion.Start.Column+1)
		if k.Default != nil {
			fmt.Fprintf(&b, "- **Default Value**: %s", k.Default.Text)
		}
		return b.String(), true

	default:
		return "", false
	}
}

func typeKindLabel(f *ast.File, id ast.TypeID) string {
	if id.Nil() {
		return "Value"
	}
	t := f.Type(id)
	switch t.Kind {
	case ast.PrimitiveKind:
		return capitalize(t.Primitive.String())
	case ast.TableKind:
		return "Table"
	case ast.ArrayKind:
		return "Array"
	case ast.UnionKind:
		return "Union"
	case ast.AnyTableKind:
		return "Any Table"
	case ast.AnyArrayKind:
		return "Any Array"
	default:
		return "Value"
	}
}

// ---- references / rename ----

func (s *Server) handleReferences(raw json.RawMessage) (json.RawMessage, error) {
	p := params[positionParams](raw)
	d, ok := s.doc(p.TextDocument.URI)
	if !ok {
		return nil, errDocumentNotFound
	}

	target, ok := defRefAtPosition(d, fromLSPPosition(p.Position))
	if !ok {
		return []byte("[]"), nil
	}

	var locs []lspLocation
	d.file.Defs.Ascend(func(pos region.Position, ref ast.DefRef) bool {
		if sameDefRef(ref, target) {
			if tok, found := d.tokenAt(pos); found {
				locs = append(locs, toLSPLocation(p.TextDocument.URI, tok.Region))
			}
		}
		return true
	})
	if locs == nil {
		locs = []lspLocation{}
	}
	body, _ := json.Marshal(locs)
	return body, nil
}

type renameParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     lspPosition            `json:"position"`
	NewName      string                 `json:"newName"`
}

func (s *Server) handleRename(raw json.RawMessage) (json.RawMessage, error) {
	p := params[renameParams](raw)
	d, ok := s.doc(p.TextDocument.URI)
	if !ok {
		return nil, errDocumentNotFound
	}

	target, ok := defRefAtPosition(d, fromLSPPosition(p.Position))
	if !ok {
		return []byte("{}"), nil
	}

	var edits []lspTextEdit
	d.file.Defs.Ascend(func(pos region.Position, ref ast.DefRef) bool {
		if sameDefRef(ref, target) {
			if tok, found := d.tokenAt(pos); found {
				edits = append(edits, lspTextEdit{Range: toLSPRange(tok.Region), NewText: ast.QuoteIdentifier(p.NewName)})
			}
		}
		return true
	})

	body, _ := json.Marshal(map[string]any{
		"changes": map[string]any{p.TextDocument.URI: edits},
	})
	return body, nil
}

func defRefAtPosition(d *document, pos region.Position) (ast.DefRef, bool) {
	t, found := d.tokenAt(pos)
	if !found || t.Kind != token.Identifier {
		return ast.DefRef{}, false
	}
	return d.file.Defs.Lookup(t.Region.Start)
}

func sameDefRef(a, b ast.DefRef) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ast.SchemaDef:
		return a.Schema == b.Schema
	case ast.KeyDef:
		return a.Key == b.Key
	default:
		return false
	}
}

// ---- folding range ----

type foldingRange struct {
	StartLine      uint32 `json:"startLine"`
	StartCharacter uint32 `json:"startCharacter"`
	EndLine        uint32 `json:"endLine"`
	EndCharacter   uint32 `json:"endCharacter"`
	Kind           string `json:"kind"`
}

// handleFoldingRange folds brace-delimited blocks and runs of consecutive
// comment lines, ported from handleFoldingRange's two token-stream passes:
// a brace stack for "{"/"}" pairs, then a scan for comment runs, both
// skipping ranges that don't actually span multiple lines.
func (s *Server) handleFoldingRange(raw json.RawMessage) (json.RawMessage, error) {
	p := params[semanticTokensParams](raw)
	d, ok := s.doc(p.TextDocument.URI)
	if !ok {
		return nil, errDocumentNotFound
	}

	tokens := d.tokensWithComments
	var ranges []foldingRange

	var braceStack []region.Position
	for _, t := range tokens {
		switch t.Value {
		case "{":
			braceStack = append(braceStack, t.Region.Start)
		case "}":
			if len(braceStack) == 0 {
				continue
			}
			start := braceStack[len(braceStack)-1]
			braceStack = braceStack[:len(braceStack)-1]
			end := t.Region.End
			if start.Line == end.Line {
				continue
			}
			ranges = append(ranges, foldingRange{
				StartLine: start.Line, StartCharacter: start.Column,
				EndLine: end.Line, EndCharacter: end.Column,
				Kind: "range",
			})
		}
	}

	for i := 0; i < len(tokens); i++ {
		if tokens[i].Kind != token.Comment {
			continue
		}
		start := tokens[i].Region.Start
		j := i
		for j+1 < len(tokens) && tokens[j+1].Kind == token.Comment {
			j++
		}
		end := tokens[j].Region.End
		if start.Line != end.Line {
			ranges = append(ranges, foldingRange{
				StartLine: start.Line, StartCharacter: start.Column,
				EndLine: end.Line, EndCharacter: end.Column,
				Kind: "comment",
			})
		}
		i = j
	}

	if ranges == nil {
		ranges = []foldingRange{}
	}
	body, _ := json.Marshal(ranges)
	return body, nil
}

// ---- completion ----

type completionItem struct {
	Label      string `json:"label"`
	Kind       int    `json:"kind"`
	Detail     string `json:"detail"`
	InsertText string `json:"insertText"`
}

func (s *Server) handleCompletion(raw json.RawMessage) (json.RawMessage, error) {
	p := params[positionParams](raw)
	d, ok := s.doc(p.TextDocument.URI)
	if !ok {
		return nil, errDocumentNotFound
	}

	pos := fromLSPPosition(p.Position)
	var prefix string
	if t, found := d.tokenAt(pos); found {
		prefix = t.Value
	}

	var items []completionItem
	seen := map[string]bool{}
	add := func(label string, kind int, detail, insertText string) {
		if seen[label] {
			return
		}
		seen[label] = true
		items = append(items, completionItem{Label: label, Kind: kind, Detail: detail, InsertText: insertText})
	}

	if table := deepestTableAt(d.file, pos); table != nil {
		keys := append([]ast.KeyID(nil), table.ExplicitKeys...)
		sort.Slice(keys, func(i, j int) bool { return d.file.Key(keys[i]).Name < d.file.Key(keys[j]).Name })
		for _, kid := range keys {
			k := d.file.Key(kid)
			if prefix == "" || strings.HasPrefix(k.Name, prefix) {
				detail := "Mandatory key in schema"
				if k.IsOptional {
					detail = "Optional key in schema"
				}
				add(k.Name, 6, detail, ast.QuoteIdentifier(k.Name))
			}
		}
	}

	for _, kw := range keywordCompletions {
		if prefix == "" || strings.HasPrefix(kw, prefix) {
			add(kw, 14, "Keyword", kw)
		}
	}
	for _, ty := range typeCompletions {
		if prefix == "" || strings.HasPrefix(ty, prefix) {
			add(ty, 25, "Built-in type", ty)
		}
	}

	if items == nil {
		return []byte("{}"), nil
	}
	body, _ := json.Marshal(map[string]any{"isIncomplete": false, "items": items})
	return body, nil
}

// deepestTableAt finds the innermost table type whose Region contains
// pos, mirroring findDeepestTableTypeAtPosition's region-size comparison
// (region.Region.Smaller) rather than tracking descent depth directly.
func deepestTableAt(f *ast.File, pos region.Position) *ast.Type {
	var best *ast.Type

	var descend func(id ast.TypeID) *ast.Type
	descend = func(id ast.TypeID) *ast.Type {
		if id.Nil() {
			return nil
		}
		t := f.Type(id)
		if !t.Region.Contains(pos) {
			return nil
		}
		switch t.Kind {
		case ast.TableKind:
			deepest := t
			for _, kid := range t.ExplicitKeys {
				if cand := descend(f.Key(kid).Type); cand != nil {
					deepest = cand
				}
			}
			if !t.WildcardKey.Nil() {
				if cand := descend(f.Key(t.WildcardKey).Type); cand != nil {
					deepest = cand
				}
			}
			return deepest
		case ast.ArrayKind:
			return descend(t.Element)
		case ast.UnionKind:
			var deepest *ast.Type
			for _, m := range t.Members {
				if cand := descend(m); cand != nil {
					deepest = cand
				}
			}
			return deepest
		default:
			return nil
		}
	}

	for _, s := range f.SchemaList() {
		if cand := descend(s.RootTable); cand != nil {
			if best == nil || cand.Region.Smaller(best.Region) {
				best = cand
			}
		}
	}
	return best
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// errDocumentNotFound is returned by position/document-scoped handlers
// when the client references a URI never opened via didOpen, the Go
// equivalent of CslLangSvr.cpp's handlers throwing
// std::runtime_error("Document not found") for handleRequest's outer
// try/catch to convert into a JSON-RPC error response.
var errDocumentNotFound = errors.New("Document not found")
