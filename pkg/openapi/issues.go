package openapi

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
)

// Issue is one contract violation. Pointer is a JSON pointer into the
// request body, or empty for request level problems.
type Issue struct {
	Pointer string `json:"pointer,omitempty"`
	Reason  string `json:"reason"`
}

// RequestError reports why a request does not match the contract.
type RequestError struct {
	Operation string
	Issues    []Issue
	Err       error
}

func (e *RequestError) Error() string {
	if len(e.Issues) == 0 {
		return "openapi: request does not match " + e.Operation
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Pointer != "" {
			parts = append(parts, issue.Pointer+": "+issue.Reason)
			continue
		}
		parts = append(parts, issue.Reason)
	}
	return "openapi: " + e.Operation + ": " + strings.Join(parts, "; ")
}

func (e *RequestError) Unwrap() error { return e.Err }

// Payload groups reasons by pointer, with request level reasons under "".
func (e *RequestError) Payload() map[string][]string {
	out := make(map[string][]string, len(e.Issues))
	for _, issue := range e.Issues {
		out[issue.Pointer] = append(out[issue.Pointer], issue.Reason)
	}
	return out
}

// Issues flattens kin-openapi validation errors into Issues.
func Issues(err error) []Issue {
	var out []Issue
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		switch e := err.(type) {
		case openapi3.MultiError:
			for _, inner := range e {
				walk(inner)
			}
		case *openapi3filter.RequestError:
			if e.Err != nil {
				walk(e.Err)
				return
			}
			out = append(out, Issue{Reason: e.Error()})
		case *openapi3.SchemaError:
			pointer := ""
			if segments := e.JSONPointer(); len(segments) > 0 {
				pointer = "/" + strings.Join(segments, "/")
			}
			reason := e.Reason
			if reason == "" {
				reason = e.Error()
			}
			out = append(out, Issue{Pointer: pointer, Reason: reason})
		default:
			out = append(out, Issue{Reason: err.Error()})
		}
	}
	walk(err)
	return out
}
