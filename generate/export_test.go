package generate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"tfg/config"
	"tfg/content"
)

func buildTestTable(t *testing.T, nested bool) *content.Table {
	t.Helper()

	tbl := content.NewTable()

	app := content.NewObject()
	app.Put("title", content.NewLeaf("My Application"))
	app.Put("needs-quoting", content.NewLeaf("it's 'quoted'"))
	tbl.Add("app", app)

	if nested {
		nav := content.NewObject()
		nav.Put("home", content.NewLeaf("Home"))
		settings := content.NewObject()
		settings.Put("title", content.NewLeaf("Settings"))
		nav.Put("settings", settings)
		tbl.Add("nav", nav)
	}
	return tbl
}

func TestExportTypeScript_Flat(t *testing.T) {
	tbl := buildTestTable(t, false)

	var buf bytes.Buffer
	if err := exportTypeScript(tbl, &buf); err != nil {
		t.Fatalf("exportTypeScript() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"// Code generated by tfg. DO NOT EDIT.",
		"export type FallbackValues = Record<string, string>;",
		"const fallbacks: Record<string, FallbackValues> = {",
		"app: {",
		"title: 'My Application',",
		`'needs-quoting': 'it\'s \'quoted\'',`,
		"export type FallbackKey = keyof typeof fallbacks;",
		"export function getFallback(key: string): FallbackValues {",
		"return fallbacks[key as FallbackKey] ?? {};",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExportTypeScript_Nested(t *testing.T) {
	tbl := buildTestTable(t, true)

	var buf bytes.Buffer
	if err := exportTypeScript(tbl, &buf); err != nil {
		t.Fatalf("exportTypeScript() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "export type FallbackValues = { [key: string]: string | FallbackValues };") {
		t.Error("nested table must use the recursive value type")
	}
	if strings.Contains(out, "Record<string, string>;") {
		t.Error("nested table must not declare the flat value type")
	}

	// nested group layout
	idxSettings := strings.Index(out, "settings: {")
	idxTitle := strings.Index(out[idxSettings:], "title: 'Settings',")
	if idxSettings < 0 || idxTitle < 0 {
		t.Errorf("nested group not emitted:\n%s", out)
	}
}

func TestExportTypeScript_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := exportTypeScript(content.NewTable(), &buf); err != nil {
		t.Fatalf("exportTypeScript() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "const fallbacks: Record<string, FallbackValues> = {\n};") {
		t.Errorf("empty table must still produce a valid module:\n%s", out)
	}
}

func TestExportJSON(t *testing.T) {
	tbl := buildTestTable(t, true)

	var buf bytes.Buffer
	if err := exportJSON(tbl, &buf); err != nil {
		t.Fatalf("exportJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	app, ok := parsed["app"].(map[string]any)
	if !ok {
		t.Fatalf("app entry missing or not an object: %v", parsed)
	}
	if app["title"] != "My Application" {
		t.Errorf("app.title = %v", app["title"])
	}

	nav, ok := parsed["nav"].(map[string]any)
	if !ok {
		t.Fatalf("nav entry missing or not an object: %v", parsed)
	}
	settings, ok := nav["settings"].(map[string]any)
	if !ok || settings["title"] != "Settings" {
		t.Errorf("nav.settings.title missing: %v", nav)
	}

	// source order is preserved, not sorted
	out := buf.String()
	if strings.Index(out, `"title"`) > strings.Index(out, `"needs-quoting"`) {
		t.Error("JSON output must keep source field order")
	}
}

func TestExportJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := exportJSON(content.NewTable(), &buf); err != nil {
		t.Fatalf("exportJSON() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "{}" {
		t.Errorf("empty table output = %q, want {}", buf.String())
	}
}

func TestExportXML(t *testing.T) {
	tbl := buildTestTable(t, true)

	var buf bytes.Buffer
	if err := exportXML(tbl, &buf); err != nil {
		t.Fatalf("exportXML() error = %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(buf.Bytes()); err != nil {
		t.Fatalf("output is not valid XML: %v\n%s", err, buf.String())
	}

	root := doc.SelectElement("fallbacks")
	if root == nil {
		t.Fatal("missing fallbacks root element")
	}
	entries := root.SelectElements("entry")
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].SelectAttrValue("key", "") != "app" {
		t.Errorf("first entry key = %q, want app", entries[0].SelectAttrValue("key", ""))
	}

	var title *etree.Element
	for _, el := range entries[0].SelectElements("string") {
		if el.SelectAttrValue("name", "") == "title" {
			title = el
		}
	}
	if title == nil || title.Text() != "My Application" {
		t.Error("app title string element missing or wrong")
	}

	nav := entries[1]
	group := nav.SelectElement("group")
	if group == nil || group.SelectAttrValue("name", "") != "settings" {
		t.Error("nested group element missing")
	}
}

func TestExport_Dispatch(t *testing.T) {
	tbl := buildTestTable(t, false)
	tmpDir := t.TempDir()

	for _, format := range []config.ExportFmt{config.ExportFmtTypeScript, config.ExportFmtJSON, config.ExportFmtXML} {
		t.Run(format.String(), func(t *testing.T) {
			outputName := filepath.Join(tmpDir, "out"+format.Ext())
			if err := export(tbl, format, outputName); err != nil {
				t.Fatalf("export() error = %v", err)
			}
			fi, err := os.Stat(outputName)
			if err != nil {
				t.Fatalf("output not written: %v", err)
			}
			if fi.Size() == 0 {
				t.Error("output file is empty")
			}
		})
	}
}

func TestTSKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"title", "title"},
		{"_private", "_private"},
		{"$dollar", "$dollar"},
		{"with1digit", "with1digit"},
		{"1leading", "'1leading'"},
		{"has-dash", "'has-dash'"},
		{"has space", "'has space'"},
		{"", "''"},
	}

	for _, tt := range tests {
		if got := tsKey(tt.in); got != tt.want {
			t.Errorf("tsKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTSString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"it's", `'it\'s'`},
		{`back\slash`, `'back\\slash'`},
		{"line\nbreak", `'line\nbreak'`},
		{"tab\there", `'tab\there'`},
		{"bell\x07", `'bell\u0007'`},
		{"юникод", "'юникод'"},
	}

	for _, tt := range tests {
		if got := tsString(tt.in); got != tt.want {
			t.Errorf("tsString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
