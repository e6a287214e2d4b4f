// Package site bundles the page templates and static assets of the Gløtvold
// website and builds the template engine pages are rendered with.
package site

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/render"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Page template names.
const (
	TemplateContact  = "contact"
	TemplateProjects = "projects"
)

// TemplatesFS exposes the built-in page templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// RendererConfig configures NewPageRenderer.
type RendererConfig struct {
	// TemplateDir overrides embedded templates with files on disk.
	TemplateDir  string
	Translator   i18n.Translator
	Phone        string
	ThemeVariant string
	// ThemeTokens override tokens of the built-in palette.
	ThemeTokens map[string]string
}

// NewPageRenderer returns a pongo2 engine over the page templates with the
// translate helper, the resolved theme and the site phone number available
// to every template.
func NewPageRenderer(cfg RendererConfig) (*render.Engine, render.ThemeContext, error) {
	translator := cfg.Translator
	if translator == nil {
		translator = i18n.Default()
	}

	manifest := render.DefaultManifest()
	for key, value := range cfg.ThemeTokens {
		key = strings.TrimPrefix(strings.TrimSpace(key), "--")
		if key == "" {
			continue
		}
		manifest.Tokens[key] = value
	}
	resolved, err := render.ResolveTheme(manifest, cfg.ThemeVariant)
	if err != nil {
		return nil, render.ThemeContext{}, err
	}
	themeCtx := render.NewThemeContext(resolved)

	options := []render.EngineOption{
		render.WithFS(TemplatesFS()),
		render.WithSetName("pages"),
		render.WithTemplateFunc(i18n.TemplateFuncs(translator, i18n.TemplateConfig{})),
		render.WithGlobalData(map[string]any{
			"theme": themeCtx,
			"phone": strings.TrimSpace(cfg.Phone),
		}),
	}
	if dir := strings.TrimSpace(cfg.TemplateDir); dir != "" {
		options = append(options, render.WithBaseDir(dir))
	}
	engine, err := render.NewEngine(options...)
	if err != nil {
		return nil, render.ThemeContext{}, fmt.Errorf("site: page renderer: %w", err)
	}
	return engine, themeCtx, nil
}
