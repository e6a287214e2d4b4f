package form

import (
	"strings"

	"github.com/glotvold/go-site/pkg/model"
)

// ValueControl is a control backed by a fixed value, used when field values
// arrive as data (JSON bodies, form posts) rather than live inputs.
type ValueControl struct {
	Name model.Field
	Raw  string
	IsOn bool
}

// Field implements Control.
func (c ValueControl) Field() model.Field { return c.Name }

// Value implements Control.
func (c ValueControl) Value() string { return c.Raw }

// Checked implements Control.
func (c ValueControl) Checked() bool { return c.IsOn }

// RegistryFromValues builds a registry holding one control per contact field.
// Boolean fields are checked when their value is truthy ("on", "true", "1",
// "yes", "ja"). Fields absent from values are registered empty.
func RegistryFromValues(values map[model.Field]string) *Registry {
	controls := make([]Control, 0, len(model.ContactFields()))
	for _, field := range model.ContactFields() {
		raw := values[field]
		control := ValueControl{Name: field, Raw: raw}
		if field.IsBoolean() {
			control.IsOn = Truthy(raw)
		}
		controls = append(controls, control)
	}
	return NewRegistry(controls...)
}

// Truthy interprets checkbox style values.
func Truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes", "ja", "checked":
		return true
	}
	return false
}
