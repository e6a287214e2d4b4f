package render

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ErrThemeVariant is returned when a requested variant is not in the manifest.
var ErrThemeVariant = errors.New("render: unknown theme variant")

// ThemeContext is the template-facing view of a resolved theme.
type ThemeContext struct {
	Name         string            `json:"name"`
	Variant      string            `json:"variant,omitempty"`
	Tokens       map[string]string `json:"tokens,omitempty"`
	CSSVars      map[string]string `json:"css_vars,omitempty"`
	CSSVarsStyle string            `json:"css_vars_style,omitempty"`
	Stylesheet   string            `json:"stylesheet,omitempty"`
}

// DefaultManifest returns the site's built-in palette.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "glotvold",
		Version: "1.0.0",
		Tokens: map[string]string{
			"color-primary":    "#1f3a2e",
			"color-accent":     "#c8873a",
			"color-error":      "#b3261e",
			"color-success":    "#2e7d32",
			"color-surface":    "#f7f5f0",
			"font-body":        "'Inter', system-ui, sans-serif",
			"radius":           "6px",
			"space-lg":         "1.5rem",
			"header-height":    "72px",
			"container-width":  "1120px",
			"color-text":       "#1b1b1b",
			"color-text-muted": "#5f6368",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"site.stylesheet": "site.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"color-surface":    "#141a17",
					"color-text":       "#ecebe6",
					"color-text-muted": "#a7aba8",
				},
			},
		},
	}
}

// ResolveTheme validates manifest through a go-theme registry and derives
// the renderer configuration for variant. Variant tokens and assets override
// the base manifest; every token is exposed as a "--token" CSS variable.
func ResolveTheme(manifest *theme.Manifest, variant string) (*theme.RendererConfig, error) {
	if manifest == nil {
		manifest = DefaultManifest()
	}
	registry := theme.NewRegistry()
	if err := registry.Register(manifest); err != nil {
		return nil, fmt.Errorf("render: register theme %q: %w", manifest.Name, err)
	}

	variant = strings.TrimSpace(variant)
	tokens := copyStringMap(manifest.Tokens)
	partials := copyStringMap(manifest.Templates)
	prefix := manifest.Assets.Prefix
	files := copyStringMap(manifest.Assets.Files)

	if variant != "" {
		override, ok := manifest.Variants[variant]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrThemeVariant, variant)
		}
		tokens = mergeStringMaps(tokens, override.Tokens)
		partials = mergeStringMaps(partials, override.Templates)
		files = mergeStringMaps(files, override.Assets.Files)
		if strings.TrimSpace(override.Assets.Prefix) != "" {
			prefix = override.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    manifest.Name,
		Variant:  variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return path.Join("/", prefix, file)
		},
	}, nil
}

// NewThemeContext converts a renderer config for templates.
func NewThemeContext(cfg *theme.RendererConfig) ThemeContext {
	if cfg == nil {
		return ThemeContext{}
	}
	ctx := ThemeContext{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Tokens:  copyStringMap(cfg.Tokens),
		CSSVars: copyStringMap(cfg.CSSVars),
	}
	ctx.CSSVarsStyle = cssVarsStyle(ctx.CSSVars)
	if cfg.AssetURL != nil {
		ctx.Stylesheet = cfg.AssetURL("site.stylesheet")
	}
	return ctx
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func mergeStringMaps(base, override map[string]string) map[string]string {
	if len(override) == 0 {
		return base
	}
	out := copyStringMap(base)
	if out == nil {
		out = make(map[string]string, len(override))
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
