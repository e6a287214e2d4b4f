package form

import (
	"fmt"
	"strings"
	"sync"

	"github.com/glotvold/go-site/pkg/model"
)

// Control is one registered input.
type Control interface {
	Field() model.Field
	Value() string
	Checked() bool
}

// Annotator shows a validation message for a field; an empty message clears
// it.
type Annotator interface {
	Annotate(field model.Field, message string)
}

// AnnotatorFunc adapts a function into an Annotator.
type AnnotatorFunc func(field model.Field, message string)

// Annotate implements Annotator.
func (fn AnnotatorFunc) Annotate(field model.Field, message string) {
	if fn != nil {
		fn(field, message)
	}
}

// Registry maps field names to controls in registration order.
type Registry struct {
	mu       sync.RWMutex
	order    []model.Field
	controls map[model.Field]Control
}

// NewRegistry registers controls, skipping nil entries. Duplicate names
// panic; use Register to handle them as errors.
func NewRegistry(controls ...Control) *Registry {
	r := &Registry{controls: make(map[model.Field]Control, len(controls))}
	for _, control := range controls {
		if control == nil {
			continue
		}
		if err := r.Register(control); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds control under its field name.
func (r *Registry) Register(control Control) error {
	if control == nil || strings.TrimSpace(control.Field().String()) == "" {
		return ErrInvalidControl
	}
	field := control.Field()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.controls == nil {
		r.controls = make(map[model.Field]Control)
	}
	if _, exists := r.controls[field]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateField, field)
	}
	r.controls[field] = control
	r.order = append(r.order, field)
	return nil
}

// Lookup returns the control registered for field.
func (r *Registry) Lookup(field model.Field) (Control, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	control, ok := r.controls[field]
	return control, ok
}

// Has reports whether field is registered.
func (r *Registry) Has(field model.Field) bool {
	_, ok := r.Lookup(field)
	return ok
}

// Fields lists registered fields in registration order.
func (r *Registry) Fields() []model.Field {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Field(nil), r.order...)
}

// Len reports the number of registered controls.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Value returns the raw value of field, or "" when unregistered.
func (r *Registry) Value(field model.Field) string {
	if control, ok := r.Lookup(field); ok {
		return control.Value()
	}
	return ""
}

// Checked returns the checked state of field, or false when unregistered.
func (r *Registry) Checked(field model.Field) bool {
	if control, ok := r.Lookup(field); ok {
		return control.Checked()
	}
	return false
}
