package render

import (
	"slices"
	"strconv"
	"strings"

	"github.com/glotvold/go-site/pkg/model"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages.
type ErrorMapping struct {
	Fields map[model.Field][]string
	Form   []string
}

// First returns the first field in document order carrying a message.
func (m ErrorMapping) First() (model.Field, bool) {
	for _, field := range model.ContactFields() {
		if len(m.Fields[field]) > 0 {
			return field, true
		}
	}
	return "", false
}

// MapErrorPayload maps payload keys (JSON pointers such as "/body/email",
// dotted paths such as "request.phone" or bare field names) onto fields.
// Keys naming no known field become form-level messages.
func MapErrorPayload(fields []model.Field, payload map[string][]string) ErrorMapping {
	known := make(map[string]model.Field, len(fields))
	for _, field := range fields {
		known[strings.ToLower(field.String())] = field
	}

	var mapping ErrorMapping
	for key, messages := range payload {
		messages = dedupe(messages)
		if len(messages) == 0 {
			continue
		}
		field, ok := mapErrorPath(key, known)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[model.Field][]string)
		}
		mapping.Fields[field] = dedupe(append(mapping.Fields[field], messages...))
	}
	mapping.Form = dedupe(mapping.Form)
	return mapping
}

// dedupe trims messages and drops blanks and repeats, keeping order.
func dedupe(messages []string) []string {
	var out []string
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message != "" && !slices.Contains(out, message) {
			out = append(out, message)
		}
	}
	return out
}

func mapErrorPath(raw string, known map[string]model.Field) (model.Field, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	for _, segment := range pathSegments(raw) {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		if _, wrapper := wrapperSegments[strings.ToLower(segment)]; wrapper {
			continue
		}
		field, ok := known[strings.ToLower(segment)]
		return field, ok
	}
	return "", false
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"properties": {},
}

// pathSegments splits JSON pointers, dotted paths and bracket indexes
// ("$.items[0].name", "#/body/email") into their segments.
func pathSegments(path string) []string {
	path = strings.NewReplacer("[", ".", "]", "").Replace(strings.TrimSpace(path))
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '/' || r == '#' || r == '$'
	})
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		out = append(out, strings.ReplaceAll(part, "~0", "~"))
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors":
		return true
	}
	return false
}
