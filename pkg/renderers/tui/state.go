package tui

import (
	"sync"

	"github.com/glotvold/go-site/pkg/form"
	"github.com/glotvold/go-site/pkg/model"
)

// State holds the answers collected in a terminal session and the messages
// the orchestrator attached to them.
type State struct {
	mu      sync.Mutex
	values  map[model.Field]string
	checked map[model.Field]bool
	errors  map[model.Field]string
}

// NewState seeds the state with prefilled answers. Boolean fields are
// checked when their prefill is truthy.
func NewState(prefill map[model.Field]string) *State {
	s := &State{
		values:  make(map[model.Field]string, len(prefill)),
		checked: make(map[model.Field]bool),
		errors:  make(map[model.Field]string),
	}
	for field, value := range prefill {
		if field.IsBoolean() {
			s.checked[field] = form.Truthy(value)
			continue
		}
		s.values[field] = value
	}
	return s
}

// Value returns the text answer for field.
func (s *State) Value(field model.Field) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[field]
}

// SetValue stores a text answer.
func (s *State) SetValue(field model.Field, value string) {
	s.mu.Lock()
	s.values[field] = value
	s.mu.Unlock()
}

// Checked returns the answer for a boolean field.
func (s *State) Checked(field model.Field) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checked[field]
}

// SetChecked stores a boolean answer.
func (s *State) SetChecked(field model.Field, on bool) {
	s.mu.Lock()
	s.checked[field] = on
	s.mu.Unlock()
}

// ErrorFor returns the message attached to field, if any.
func (s *State) ErrorFor(field model.Field) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors[field]
}

// Errors returns a copy of the attached messages.
func (s *State) Errors() map[model.Field]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errors) == 0 {
		return nil
	}
	out := make(map[model.Field]string, len(s.errors))
	for field, message := range s.errors {
		out[field] = message
	}
	return out
}

func (s *State) annotate(field model.Field, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if message == "" {
		delete(s.errors, field)
		return
	}
	s.errors[field] = message
}

// Registry registers a control per contact field backed by this state.
func (s *State) Registry() *form.Registry {
	registry := form.NewRegistry()
	for _, field := range model.ContactFields() {
		_ = registry.Register(stateControl{state: s, field: field})
	}
	return registry
}

type stateControl struct {
	state *State
	field model.Field
}

func (c stateControl) Field() model.Field { return c.field }
func (c stateControl) Value() string      { return c.state.Value(c.field) }
func (c stateControl) Checked() bool      { return c.state.Checked(c.field) }
