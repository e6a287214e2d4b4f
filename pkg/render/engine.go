package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

const templateExt = ".html"

// ErrNoTemplates is returned when an engine has neither a directory nor a
// file system to load from.
var ErrNoTemplates = errors.New("render: no template source")

// EngineOption configures the engine before construction.
type EngineOption func(*engineConfig)

type engineConfig struct {
	name    string
	dir     string
	files   fs.FS
	funcs   map[string]any
	globals map[string]any
}

// WithBaseDir loads templates from a directory on disk. Templates found there
// shadow the ones in the file system passed to WithFS.
func WithBaseDir(dir string) EngineOption {
	return func(cfg *engineConfig) {
		cfg.dir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from files.
func WithFS(files fs.FS) EngineOption {
	return func(cfg *engineConfig) {
		cfg.files = files
	}
}

// WithSetName names the underlying pongo2 template set. It only shows up in
// pongo2 error messages.
func WithSetName(name string) EngineOption {
	return func(cfg *engineConfig) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// WithTemplateFunc exposes functions to every template. A
// pongo2.FilterFunction is registered as a filter instead.
func WithTemplateFunc(funcs map[string]any) EngineOption {
	return func(cfg *engineConfig) {
		for name, fn := range funcs {
			if cfg.funcs == nil {
				cfg.funcs = make(map[string]any, len(funcs))
			}
			cfg.funcs[strings.TrimSpace(name)] = fn
		}
	}
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(data map[string]any) EngineOption {
	return func(cfg *engineConfig) {
		for key, value := range data {
			if cfg.globals == nil {
				cfg.globals = make(map[string]any, len(data))
			}
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// Engine renders the site's pongo2 templates. Compiled templates are cached
// by name for the engine's lifetime.
type Engine struct {
	mu    sync.RWMutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
}

var _ TemplateRenderer = (*Engine)(nil)

// NewEngine constructs an Engine. WithFS or WithBaseDir is required.
func NewEngine(options ...EngineOption) (*Engine, error) {
	cfg := &engineConfig{name: "site"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.dir == "" && cfg.files == nil {
		return nil, ErrNoTemplates
	}

	var loaders []pongo2.TemplateLoader
	if cfg.dir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.dir)
		if err != nil {
			return nil, fmt.Errorf("render: template dir %q: %w", cfg.dir, err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.files))
	}

	e := &Engine{
		set:   pongo2.NewSet(cfg.name, loaders...),
		cache: make(map[string]*pongo2.Template),
	}
	e.set.Globals = pongo2.Context{}
	registerSiteFilters()

	if err := e.GlobalContext(cfg.globals); err != nil {
		return nil, err
	}
	for name, fn := range cfg.funcs {
		if name == "" || fn == nil {
			continue
		}
		if filter, ok := fn.(pongo2.FilterFunction); ok {
			if !pongo2.FilterExists(name) {
				if err := pongo2.RegisterFilter(name, filter); err != nil {
					return nil, fmt.Errorf("render: filter %q: %w", name, err)
				}
			}
			continue
		}
		if reflect.TypeOf(fn).Kind() == reflect.Func {
			e.set.Globals[name] = fn
		}
	}
	return e, nil
}

// RenderTemplate renders the named template ("contact" or "contact.html")
// and copies the result to every writer in out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("render: engine is nil")
	}
	if !strings.HasSuffix(name, templateExt) {
		name += templateExt
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("render: %s data: %w", name, err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("render: execute %s: %w", name, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// RegisterFilter adds a filter to pongo2's process-wide registry. Names
// already taken are rejected.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("render: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("render: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the globals visible to every template.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("render: engine is nil")
	}
	if data == nil {
		return nil
	}
	ctx, err := toContext(data)
	if err != nil {
		return fmt.Errorf("render: globals: %w", err)
	}
	e.mu.Lock()
	e.set.Globals.Update(ctx)
	e.mu.Unlock()
	return nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("render: load %s: %w", name, err)
	}
	e.cache[name] = tmpl
	return tmpl, nil
}

// toContext gives templates the JSON view of data, so a struct is addressed
// by its json tags exactly as API clients see it. Functions pass through.
func toContext(data any) (pongo2.Context, error) {
	var fields map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		fields = v
	case map[string]any:
		fields = v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	}

	out := make(pongo2.Context, len(fields))
	for key, value := range fields {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		plain, err := plainValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = plain
	}
	return out, nil
}

func plainValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64:
		return v, nil
	}
	if reflect.TypeOf(value).Kind() == reflect.Func {
		return value, nil
	}
	if m, ok := value.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for key, inner := range m {
			plain, err := plainValue(inner)
			if err != nil {
				return nil, err
			}
			out[key] = plain
		}
		return out, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

func registerSiteFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("digits") {
		_ = pongo2.RegisterFilter("digits", filterDigits)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterDigits keeps digits and a leading '+', turning a display number such
// as "900 00 000" into a tel: target.
func filterDigits(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	raw := strings.TrimSpace(in.String())
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return pongo2.AsValue(b.String()), nil
}
