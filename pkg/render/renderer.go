// Package render holds the template engine used for pages and e-mail bodies,
// theme resolution for page styling, and helpers that map API error payloads
// back onto form fields.
package render

import "io"

// TemplateRenderer is the seam page handlers and the e-mail composer render
// through.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
