package projects

import "net/http"

// CategoryAll selects every project.
const CategoryAll = "all"

// GuardFunc vets a request before the catalogue is served. A returned error
// implementing HTTPError picks the response status; any other error is 403.
type GuardFunc func(r *http.Request) error

// Options configure the projects API.
type Options struct {
	Route         string
	CategoryParam string
	Guard         GuardFunc
	// Projects replaces the embedded catalogue when non-nil.
	Projects []Project
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		Route:         "/api/projects",
		CategoryParam: "category",
	}
}

// NewOptions applies fns over DefaultOptions.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	return opts.normalized()
}

func (o Options) normalized() Options {
	defaults := DefaultOptions()
	if o.Route == "" {
		o.Route = defaults.Route
	}
	if o.CategoryParam == "" {
		o.CategoryParam = defaults.CategoryParam
	}
	if o.Projects != nil {
		o.Projects = append([]Project{}, o.Projects...)
	}
	return o
}

func (o Options) catalogue() ([]Project, error) {
	if o.Projects != nil {
		return o.Projects, nil
	}
	return DefaultProjects()
}

func WithRoute(route string) OptionFn {
	return func(o *Options) { o.Route = route }
}

func WithCategoryParam(name string) OptionFn {
	return func(o *Options) { o.CategoryParam = name }
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) { o.Guard = guard }
}

func WithProjects(projects []Project) OptionFn {
	return func(o *Options) { o.Projects = projects }
}
