package projects

import (
	"errors"
	"net/http"
)

// Mux is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Component bundles the catalogue with its API handler.
type Component struct {
	opts Options
}

// New constructs a component from DefaultOptions plus fns.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// With returns a copy of c with fns applied.
func (c *Component) With(fns ...OptionFn) *Component {
	opts := c.Options()
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	return &Component{opts: opts.normalized()}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return c.opts.normalized()
}

// Projects returns the configured catalogue, or the embedded default.
func (c *Component) Projects() ([]Project, error) {
	return c.Options().catalogue()
}

// Handler returns the JSON API handler.
func (c *Component) Handler() http.Handler {
	return NewHandler(c.Options())
}

// Mount registers the API handler on mux and returns its route.
func (c *Component) Mount(mux Mux) (string, error) {
	if mux == nil {
		return "", errors.New("projects: missing mux")
	}
	opts := c.Options()
	mux.Handle(opts.Route, NewHandler(opts))
	return opts.Route, nil
}
