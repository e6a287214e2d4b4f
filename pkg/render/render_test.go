package render_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/glotvold/go-site/pkg/model"
	"github.com/glotvold/go-site/pkg/render"
)

func newEngine(t *testing.T) *render.Engine {
	t.Helper()
	files := fstest.MapFS{
		"hello.html":      {Data: []byte("Hei {{ name }}!")},
		"use-global.html": {Data: []byte("env={{ settings.env }}")},
		"use-filter.html": {Data: []byte("{{ name|shout }}")},
		"tel.html":        {Data: []byte(`<a href="tel:{{ phone|digits }}">{{ phone|trim }}</a>`)},
		"escape.html":     {Data: []byte(`<p>{{ value }}</p>`)},
	}
	engine, err := render.NewEngine(render.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngineRenderTemplateWritesOutput(t *testing.T) {
	engine := newEngine(t)
	var buf strings.Builder

	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Kari"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hei Kari!" || buf.String() != got {
		t.Fatalf("unexpected output %q / %q", got, buf.String())
	}
}

func TestEngineConvertsStructsThroughJSON(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Name string `json:"name"`
	}{Name: "Ola"}

	got, err := engine.RenderTemplate("hello.html", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hei Ola!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngineGlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{"settings": map[string]any{"env": "staging"}}); err != nil {
		t.Fatalf("global context: %v", err)
	}
	got, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "env=staging" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngineRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return strings.ToUpper(strings.TrimSpace(toString(input))) + "!", nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter to fail")
	}

	got, err := engine.RenderTemplate("use-filter", map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngineDefaultFilters(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderTemplate("tel", map[string]any{"phone": " +47 900 00 000 "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != `<a href="tel:+4790000000">+47 900 00 000</a>` {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngineEscapesValues(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderTemplate("escape", map[string]any{"value": "<script>x</script>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Fatalf("expected value escaped, got %q", got)
	}
}

func TestNewEngineRequiresSource(t *testing.T) {
	if _, err := render.NewEngine(); !errors.Is(err, render.ErrNoTemplates) {
		t.Fatalf("expected ErrNoTemplates, got %v", err)
	}
}

func TestEngineTemplateFuncs(t *testing.T) {
	files := fstest.MapFS{"greet.html": {Data: []byte(`{{ greet(name) }}`)}}
	engine, err := render.NewEngine(
		render.WithFS(files),
		render.WithTemplateFunc(map[string]any{"greet": func(name string) string { return "Hei " + name }}),
		render.WithGlobalData(map[string]any{"name": "Per"}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.RenderTemplate("greet", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hei Per" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMapErrorPayload(t *testing.T) {
	payload := map[string][]string{
		"/body/email":              {"Email invalid"},
		"request.phone":            {" Phone malformed ", "Phone malformed"},
		"$.name":                   {"Name is required"},
		"non_field_errors":         {"Form level error"},
		"request/body/unknown":     {"Unknown field"},
		"":                         {"Unscoped"},
		"properties/description/0": {"Too short"},
		"/body/siteVisit":          {"  "},
	}

	mapped := render.MapErrorPayload(model.ContactFields(), payload)

	wantFields := map[model.Field][]string{
		model.FieldEmail:       {"Email invalid"},
		model.FieldPhone:       {"Phone malformed"},
		model.FieldName:        {"Name is required"},
		model.FieldDescription: {"Too short"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"Form level error", "Unknown field", "Unscoped"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}

	first, ok := mapped.First()
	if !ok || first != model.FieldName {
		t.Fatalf("expected name first in document order, got %q", first)
	}
}

func TestResolveThemeVariant(t *testing.T) {
	cfg, err := render.ResolveTheme(nil, "dark")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Theme != "glotvold" || cfg.Variant != "dark" {
		t.Fatalf("unexpected theme %s/%s", cfg.Theme, cfg.Variant)
	}
	if got := cfg.CSSVars["--color-surface"]; got != "#141a17" {
		t.Fatalf("expected variant override, got %q", got)
	}
	if got := cfg.CSSVars["--color-primary"]; got != "#1f3a2e" {
		t.Fatalf("expected base token kept, got %q", got)
	}
	if got := cfg.AssetURL("site.stylesheet"); got != "/assets/site.css" {
		t.Fatalf("unexpected stylesheet url %q", got)
	}

	ctx := render.NewThemeContext(cfg)
	if !strings.HasPrefix(ctx.CSSVarsStyle, ":root {\n") || !strings.Contains(ctx.CSSVarsStyle, "--color-accent: #c8873a;") {
		t.Fatalf("unexpected css vars style:\n%s", ctx.CSSVarsStyle)
	}
	if ctx.Stylesheet != "/assets/site.css" {
		t.Fatalf("unexpected stylesheet %q", ctx.Stylesheet)
	}
}

func TestResolveThemeUnknownVariant(t *testing.T) {
	if _, err := render.ResolveTheme(nil, "neon"); err == nil {
		t.Fatalf("expected unknown variant error")
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
