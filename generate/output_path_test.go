package generate

import (
	"path/filepath"
	"strings"
	"testing"

	"tfg/config"
	"tfg/content"
)

func TestBuildOutputPath_Default(t *testing.T) {
	_, env := setupTestEnv(t)
	tbl := content.NewTable()

	got := buildOutputPath(tbl, "/src/content", "/out", config.ExportFmtTypeScript, env)
	want := filepath.Join("/out", "fallbacks.generated.ts")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestBuildOutputPath_FormatExtension(t *testing.T) {
	_, env := setupTestEnv(t)
	tbl := content.NewTable()

	tests := []struct {
		format config.ExportFmt
		ext    string
	}{
		{config.ExportFmtTypeScript, ".ts"},
		{config.ExportFmtJSON, ".json"},
		{config.ExportFmtXML, ".xml"},
	}

	for _, tt := range tests {
		got := buildOutputPath(tbl, "/src", "/out", tt.format, env)
		if !strings.HasSuffix(got, tt.ext) {
			t.Errorf("buildOutputPath() with %s = %q, want suffix %q", tt.format, got, tt.ext)
		}
	}
}

func TestBuildOutputPath_Template(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Export.OutputNameTemplate = "{{ .Source }}-{{ .Format }}"

	tbl := content.NewTable()
	got := buildOutputPath(tbl, "/project/locales", "/out", config.ExportFmtJSON, env)
	want := filepath.Join("/out", "locales-json.json")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestBuildOutputPath_TemplateWithSubdirs(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Export.OutputNameTemplate = "generated/{{ .Source }}"

	tbl := content.NewTable()
	got := buildOutputPath(tbl, "/project/locales", "/out", config.ExportFmtTypeScript, env)
	want := filepath.Join("/out", "generated", "locales.ts")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestBuildOutputPath_BrokenTemplateFallsBack(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Export.OutputNameTemplate = "{{ .NoSuchField "

	tbl := content.NewTable()
	got := buildOutputPath(tbl, "/src", "/out", config.ExportFmtTypeScript, env)
	want := filepath.Join("/out", "fallbacks.generated.ts")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want default %q", got, want)
	}
}

func TestBuildOutputPath_Transliterate(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Export.OutputNameTemplate = "{{ .Source }}"
	env.Cfg.Export.FileNameTransliterate = true

	tbl := content.NewTable()
	got := buildOutputPath(tbl, "/project/Строки", "/out", config.ExportFmtTypeScript, env)
	base := filepath.Base(got)
	for _, r := range base {
		if r > 127 {
			t.Errorf("transliterated name still contains non-ASCII rune %q: %s", r, base)
		}
	}
}

func TestAssemblePathWithSubdirs_Degenerate(t *testing.T) {
	_, env := setupTestEnv(t)

	got := assemblePathWithSubdirs("/out", "  ", config.ExportFmtTypeScript, env)
	want := filepath.Join("/out", "fallbacks.generated.ts")
	if got != want {
		t.Errorf("assemblePathWithSubdirs() = %q, want %q", got, want)
	}
}

func TestSourceBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/project/locales", "locales"},
		{"/project/app.content.ts", "app.content"},
		{"/archive/sources.zip", "sources"},
		{".", "fallbacks.generated"},
	}

	for _, tt := range tests {
		if got := sourceBase(tt.in); got != tt.want {
			t.Errorf("sourceBase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpandTemplate(t *testing.T) {
	tbl := content.NewTable()
	root := content.NewObject()
	root.Put("a", content.NewLeaf("1"))
	tbl.Add("app", root)

	got, err := expandTemplate(config.OutputNameTemplateFieldName,
		"{{ .Source }} {{ .Format }} {{ .Keys }} {{ .Values }}", tbl, "/src/locales", config.ExportFmtXML)
	if err != nil {
		t.Fatalf("expandTemplate() error = %v", err)
	}
	if got != "locales xml 1 1" {
		t.Errorf("expandTemplate() = %q", got)
	}
}

func TestExpandTemplate_SprigFunctions(t *testing.T) {
	tbl := content.NewTable()

	got, err := expandTemplate(config.OutputNameTemplateFieldName,
		`{{ .Source | upper }}`, tbl, "/src/locales", config.ExportFmtTypeScript)
	if err != nil {
		t.Fatalf("expandTemplate() error = %v", err)
	}
	if got != "LOCALES" {
		t.Errorf("expandTemplate() = %q, want LOCALES", got)
	}
}

func TestExpandTemplate_ParseError(t *testing.T) {
	tbl := content.NewTable()

	_, err := expandTemplate(config.OutputNameTemplateFieldName, "{{ .Broken ", tbl, "/src", config.ExportFmtTypeScript)
	if err == nil {
		t.Error("Expected error for malformed template, got nil")
	}
}
