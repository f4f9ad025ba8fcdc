// Package docgen renders an *ast.File's schemas to a static HTML
// documentation site: one page per schema (and, for deeply nested
// tables, one page per nested table), a keys table per page, and a
// structure graph describing how nested tables relate.
//
// Grounded on original_source/impl/core/docgen/HtmlDocGen.cpp's page
// model (slugified file names, per-segment display-path rendering with
// a synthesized placeholder for wildcard keys, a JSON structure graph
// embedded in each page for client-side rendering) — translated from
// its single giant stringstream-builder function into small composable
// Go functions, one per concern, the way the rest of this module
// separates printing from tree-walking.
package docgen

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/csl-lang/csl/ast"
	"github.com/csl-lang/csl/printer"
)

// maxLabelGraphemes bounds a structure-graph node label's display width
// using grapheme clusters (not bytes or runes) so multi-byte/combining
// key names truncate at a visually sane boundary.
const maxLabelGraphemes = 40

// Page is one rendered HTML document.
type Page struct {
	FileName string
	HTML     string
}

// themeCSS holds the stylesheets for the two themes a workspace config
// file may select (cmd/csl's --config=<file>.yaml htmlTheme field).
// HtmlDocGen.cpp only ever emits one fixed stylesheet; themes are a
// supplemented feature, so "light" reproduces that original look and is
// always the default.
var themeCSS = map[string]string{
	"light": "body{font-family:sans-serif;background:#fff;color:#111}" +
		"table.keys{border-collapse:collapse}table.keys td,table.keys th{border:1px solid #ccc;padding:4px 8px}",
	"dark": "body{font-family:sans-serif;background:#1e1e1e;color:#ddd}" +
		"table.keys{border-collapse:collapse}table.keys td,table.keys th{border:1px solid #444;padding:4px 8px}" +
		"a{color:#8ab4f8}",
}

// Option configures Generate. With no options, Generate uses the light
// theme, matching the original's single hardcoded appearance.
type Option func(*genOptions)

type genOptions struct {
	theme string
}

// Theme selects the page stylesheet ("light" or "dark"); an unknown
// name falls back to "light".
func Theme(name string) Option {
	return func(o *genOptions) { o.theme = name }
}

// Generate renders every schema in f to one or more Pages.
func Generate(f *ast.File, opts ...Option) []Page {
	o := genOptions{theme: "light"}
	for _, opt := range opts {
		opt(&o)
	}
	css, ok := themeCSS[o.theme]
	if !ok {
		css = themeCSS["light"]
	}

	var pages []Page
	for _, s := range f.SchemaList() {
		pages = append(pages, generateSchema(f, s, css)...)
	}
	return pages
}

type graphNode struct {
	ID, Label, File string
	Depth           int
}

type graphEdge struct {
	From, To, Label string
}

func generateSchema(f *ast.File, s *ast.ConfigSchema, css string) []Page {
	var pages []Page
	root := f.Type(s.RootTable)

	var nodes []graphNode
	var edges []graphEdge
	rootID := pathKey(nil)
	nodes = append(nodes, graphNode{ID: rootID, Label: s.Name, File: schemaFileFor(s.Name), Depth: 0})
	collectGraph(f, s.Name, root, nil, rootID, &nodes, &edges)

	graphJSON := buildGraphJSON(s.Name, nodes, edges)

	pages = append(pages, Page{
		FileName: schemaFileFor(s.Name),
		HTML:     renderTablePage(f, s.Name, nil, root, graphJSON, css),
	})

	var walk func(t *ast.Type, path []string)
	walk = func(t *ast.Type, path []string) {
		for _, kid := range t.ExplicitKeys {
			k := f.Key(kid)
			walkNestedTable(f, s.Name, path, k.Name, k.Type, graphJSON, css, &pages, walk)
		}
		if !t.WildcardKey.Nil() {
			k := f.Key(t.WildcardKey)
			walkNestedTable(f, s.Name, path, "*", k.Type, graphJSON, css, &pages, walk)
		}
	}
	walk(root, nil)

	return pages
}

func walkNestedTable(f *ast.File, schemaName string, path []string, segName string, typeID ast.TypeID, graphJSON, css string, pages *[]Page, walk func(*ast.Type, []string)) {
	if typeID.Nil() {
		return
	}
	t := f.Type(typeID)
	nextPath := append(append([]string(nil), path...), segName)
	switch t.Kind {
	case ast.TableKind:
		*pages = append(*pages, Page{
			FileName: pageFileFor(schemaName, nextPath),
			HTML:     renderTablePage(f, schemaName, nextPath, t, graphJSON, css),
		})
		walk(t, nextPath)
	case ast.ArrayKind:
		walkNestedTable(f, schemaName, path, segName+"[]", t.Element, graphJSON, css, pages, walk)
	case ast.UnionKind:
		for _, m := range t.Members {
			walkNestedTable(f, schemaName, path, segName, m, graphJSON, css, pages, walk)
		}
	}
}

func collectGraph(f *ast.File, schemaName string, t *ast.Type, path []string, parentID string, nodes *[]graphNode, edges *[]graphEdge) {
	add := func(keyName string, typeID ast.TypeID) {
		if typeID.Nil() {
			return
		}
		elem := f.Type(typeID)
		for elem.Kind == ast.ArrayKind {
			keyName += "[]"
			elem = f.Type(elem.Element)
		}
		if elem.Kind != ast.TableKind {
			return
		}
		childPath := append(append([]string(nil), path...), keyName)
		id := pathKey(childPath)
		*nodes = append(*nodes, graphNode{
			ID:    id,
			Label: displayPath(childPath),
			File:  pageFileFor(schemaName, childPath),
			Depth: len(childPath),
		})
		*edges = append(*edges, graphEdge{From: parentID, To: id, Label: keyName})
		collectGraph(f, schemaName, elem, childPath, id, nodes, edges)
	}
	for _, kid := range t.ExplicitKeys {
		k := f.Key(kid)
		add(k.Name, k.Type)
	}
	if !t.WildcardKey.Nil() {
		k := f.Key(t.WildcardKey)
		add("*", k.Type)
	}
}

// ---- page rendering ----

func renderTablePage(f *ast.File, schemaName string, path []string, t *ast.Type, graphJSON, css string) string {
	var b strings.Builder
	title := schemaName
	if len(path) > 0 {
		title = schemaName + "." + displayPath(path)
	}

	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title><style>%s</style></head><body>\n", html.EscapeString(title), css)
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))

	b.WriteString("<table class=\"keys\"><thead><tr><th>Key</th><th>Type</th><th>Default</th><th>Annotations</th></tr></thead><tbody>\n")
	keys := append([]ast.KeyID(nil), t.ExplicitKeys...)
	sort.Slice(keys, func(i, j int) bool { return f.Key(keys[i]).Name < f.Key(keys[j]).Name })
	for _, kid := range keys {
		renderKeyRow(&b, f, path, f.Key(kid))
	}
	if !t.WildcardKey.Nil() {
		renderKeyRow(&b, f, path, f.Key(t.WildcardKey))
	}
	b.WriteString("</tbody></table>\n")

	if len(t.Constraints) > 0 {
		b.WriteString("<h2>Constraints</h2>\n<ul class=\"constraints\">\n")
		for _, cid := range t.Constraints {
			renderConstraint(&b, f, f.Constraint(cid))
		}
		b.WriteString("</ul>\n")
	}

	fmt.Fprintf(&b, "<script type=\"application/json\" id=\"structure-graph\">%s</script>\n", graphJSON)
	b.WriteString("</body></html>\n")
	return b.String()
}

func renderKeyRow(b *strings.Builder, f *ast.File, path []string, k *ast.KeyDefinition) {
	displayName := k.Name
	slugName := k.Name
	if k.IsWildcard {
		displayName = dynamicKeyPlaceholder(path)
		slugName = "*"
	}
	fmt.Fprintf(b, "<tr id=\"k-%s\"><td><code>%s", slugify(slugName), html.EscapeString(displayName))
	if k.IsOptional {
		b.WriteString("?")
	}
	b.WriteString("</code></td><td>")
	renderTypeCell(b, f, k.Type)
	b.WriteString("</td><td>")
	if k.Default != nil {
		fmt.Fprintf(b, "<code>%s</code>", html.EscapeString(k.Default.Text))
	}
	b.WriteString("</td><td>")
	renderAnnotationsHTML(b, f, k.Annotations)
	b.WriteString("</td></tr>\n")
}

func renderTypeCell(b *strings.Builder, f *ast.File, id ast.TypeID) {
	if id.Nil() {
		return
	}
	t := f.Type(id)
	switch t.Kind {
	case ast.PrimitiveKind:
		if t.IsEnum() {
			var parts []string
			for _, v := range t.AllowedValues {
				parts = append(parts, v.Text)
			}
			fmt.Fprintf(b, "<code>%s</code>", html.EscapeString(strings.Join(parts, " | ")))
		} else {
			fmt.Fprintf(b, "<code>%s</code>", t.Primitive.String())
		}
		renderAnnotationsHTML(b, f, t.Annotations)
	case ast.TableKind:
		b.WriteString("<code>table</code>")
	case ast.ArrayKind:
		renderTypeCell(b, f, t.Element)
		b.WriteString("<code>[]</code>")
	case ast.UnionKind:
		for i, m := range t.Members {
			if i > 0 {
				b.WriteString(" | ")
			}
			renderTypeCell(b, f, m)
		}
	case ast.AnyTableKind:
		b.WriteString("<code>any{}</code>")
	case ast.AnyArrayKind:
		b.WriteString("<code>any[]</code>")
	}
}

func renderAnnotationsHTML(b *strings.Builder, f *ast.File, anns []ast.AnnotationID) {
	if len(anns) == 0 {
		return
	}
	b.WriteString(`<div class="chips">`)
	for _, aid := range anns {
		text := printer.AnnotationText(f, aid)
		fmt.Fprintf(b, `<span class="chip"><code>%s</code></span>`, html.EscapeString(text))
	}
	b.WriteString("</div>")
}

func renderConstraint(b *strings.Builder, f *ast.File, c *ast.Constraint) {
	switch c.Kind {
	case ast.ConflictConstraint:
		fmt.Fprintf(b, "<li><code>conflicts %s with %s</code></li>\n",
			html.EscapeString(printer.ExprText(f, c.First)), html.EscapeString(printer.ExprText(f, c.Second)))
	case ast.DependencyConstraint:
		fmt.Fprintf(b, "<li><code>requires %s =&gt; %s</code></li>\n",
			html.EscapeString(printer.ExprText(f, c.First)), html.EscapeString(printer.ExprText(f, c.Second)))
	case ast.ValidateConstraint:
		fmt.Fprintf(b, "<li><code>validate %s</code></li>\n", html.EscapeString(printer.ExprText(f, c.Expr)))
	}
}

// ---- JSON structure graph ----

func buildGraphJSON(schemaName string, nodes []graphNode, edges []graphEdge) string {
	var b strings.Builder
	b.WriteByte('{')
	fmt.Fprintf(&b, "\"schema\":%s,", jsonString(schemaName))
	b.WriteString("\"nodes\":[")
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte(',')
		}
		label := truncateLabel(n.Label)
		fmt.Fprintf(&b, "{\"id\":%s,\"label\":%s,\"file\":%s,\"depth\":%d}",
			jsonString(n.ID), jsonString(label), jsonString(n.File), n.Depth)
	}
	b.WriteString("],\"edges\":[")
	for i, e := range edges {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "{\"from\":%s,\"to\":%s,\"key\":%s}", jsonString(e.From), jsonString(e.To), jsonString(e.Label))
	}
	b.WriteString("]}")
	return b.String()
}

func jsonString(s string) string {
	return strconv.Quote(s)
}

func truncateLabel(s string) string {
	g := uniseg.NewGraphemes(s)
	var b strings.Builder
	count := 0
	for g.Next() {
		if count == maxLabelGraphemes {
			b.WriteString("…")
			return b.String()
		}
		b.WriteString(g.Str())
		count++
	}
	return b.String()
}

// ---- paths, slugs, placeholders ----

func pathKey(path []string) string {
	return strings.Join(path, "\x1f")
}

func slugify(s string) string {
	switch s {
	case "*":
		return "wildcard"
	case "*[]":
		return "wildcard-array"
	case "[]":
		return "array"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteByte('-')
		case r == '`':
			// dropped
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "page"
	}
	return out
}

func pageFileFor(schemaName string, path []string) string {
	var b strings.Builder
	b.WriteString(slugify(schemaName))
	for _, seg := range path {
		b.WriteByte('-')
		b.WriteString(slugify(seg))
	}
	b.WriteString(".html")
	return b.String()
}

func schemaFileFor(schemaName string) string {
	return slugify(schemaName) + ".html"
}

// dynamicKeyPlaceholder synthesizes a friendly placeholder name for a
// wildcard key from its parent segment ("servers" -> "<serverKey>"),
// mirroring HtmlDocGen.cpp's toLowerCamelAlphaNum + naive-singularize
// heuristic.
func dynamicKeyPlaceholder(parentPath []string) string {
	if len(parentPath) == 0 {
		return "<key>"
	}
	base := parentPath[len(parentPath)-1]
	base = strings.TrimSuffix(base, "[]")
	if base == "*" || base == "" {
		return "<key>"
	}
	return "<" + toLowerCamelAlphaNum(base) + "Key>"
}

func toLowerCamelAlphaNum(s string) string {
	var out strings.Builder
	upperNext := false
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			lower := r
			if r >= 'A' && r <= 'Z' {
				lower = r - 'A' + 'a'
			}
			if out.Len() == 0 {
				out.WriteRune(lower)
			} else if upperNext {
				if lower >= 'a' && lower <= 'z' {
					out.WriteRune(lower - 'a' + 'A')
				} else {
					out.WriteRune(lower)
				}
				upperNext = false
			} else {
				out.WriteRune(lower)
			}
		default:
			if out.Len() > 0 {
				upperNext = true
			}
		}
	}
	res := out.String()
	if len(res) > 1 && res[len(res)-1] == 's' {
		res = res[:len(res)-1]
	}
	if res == "" {
		return "key"
	}
	return res
}

// displayPath renders a dotted path, substituting each wildcard segment
// with its synthesized placeholder (HtmlDocGen.cpp's displayPath).
func displayPath(path []string) string {
	segs := make([]string, len(path))
	for i, seg := range path {
		switch {
		case seg == "*":
			segs[i] = dynamicKeyPlaceholder(path[:i])
		case strings.HasSuffix(seg, "[]") && strings.TrimSuffix(seg, "[]") == "*":
			segs[i] = dynamicKeyPlaceholder(path[:i]) + "[]"
		default:
			segs[i] = seg
		}
	}
	return strings.Join(segs, ".")
}
