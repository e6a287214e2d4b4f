package openapi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// ContactLocation names the embedded contract.
const ContactLocation = "contact.yaml"

//go:embed contact.yaml
var contactYAML []byte

// ErrUnknownRoute is returned when a request matches no documented operation.
var ErrUnknownRoute = errors.New("openapi: no matching operation")

// ContactSource identifies the embedded contract.
func ContactSource() Source {
	return embeddedSource{name: ContactLocation}
}

// Contract is a parsed and validated OpenAPI document with a router for
// request validation.
type Contract struct {
	doc    Document
	spec   *openapi3.T
	router routers.Router
}

// NewContract parses doc, validates it and builds its router.
func NewContract(ctx context.Context, doc Document) (*Contract, error) {
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", doc.Location(), err)
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate %s: %w", doc.Location(), err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, fmt.Errorf("openapi: %s does not contain any paths", doc.Location())
	}

	router, err := legacy.NewRouter(spec)
	if err != nil {
		return nil, fmt.Errorf("openapi: router for %s: %w", doc.Location(), err)
	}
	return &Contract{doc: doc, spec: spec, router: router}, nil
}

// LoadContact returns the embedded contract of the site API.
func LoadContact(ctx context.Context) (*Contract, error) {
	doc, err := NewLoader().Load(ctx, ContactSource())
	if err != nil {
		return nil, err
	}
	return NewContract(ctx, doc)
}

// Document returns the source document.
func (c *Contract) Document() Document { return c.doc }

// Title returns the info title.
func (c *Contract) Title() string {
	if c.spec.Info == nil {
		return ""
	}
	return c.spec.Info.Title
}

// Version returns the info version.
func (c *Contract) Version() string {
	if c.spec.Info == nil {
		return ""
	}
	return c.spec.Info.Version
}

// Operations lists the documented operations sorted by path and method.
func (c *Contract) Operations() []Operation {
	var ops []Operation
	for path, item := range c.spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			ops = append(ops, Operation{
				ID:      op.OperationID,
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: op.Summary,
			})
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
	return ops
}

// ValidateRequest checks r against the documented operation. The body is
// left readable for the handler. Contract violations are reported as a
// *RequestError.
func (c *Contract) ValidateRequest(r *http.Request) error {
	route, params, err := c.router.FindRoute(r)
	if err != nil {
		return fmt.Errorf("%w: %s %s", ErrUnknownRoute, r.Method, r.URL.Path)
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: params,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError:         true,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
		return &RequestError{Operation: route.Operation.OperationID, Issues: Issues(err), Err: err}
	}
	return nil
}
