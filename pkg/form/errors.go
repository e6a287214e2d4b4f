package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glotvold/go-site/pkg/model"
)

var (
	ErrMissingRegistry  = errors.New("form: registry is required")
	ErrMissingChannel   = errors.New("form: submission channel is required")
	ErrDuplicateField   = errors.New("form: field already registered")
	ErrInvalidControl   = errors.New("form: control has no field name")
	ErrSubmitInFlight   = errors.New("form: submission already in flight")
	ErrAlreadySubmitted = errors.New("form: form already submitted")
	ErrChannelPanic     = errors.New("form: submission channel panicked")
	ErrMissingControl   = errors.New("form: validated field has no control")
)

// MissingControlError is returned by Submit when fields that carry a
// validation rule have no registered control. Nothing is validated or
// delivered.
type MissingControlError struct {
	Fields []model.Field
}

func (e *MissingControlError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		names = append(names, field.String())
	}
	return ErrMissingControl.Error() + ": " + strings.Join(names, ", ")
}

func (e *MissingControlError) Is(target error) bool { return target == ErrMissingControl }

// ValidationError is returned by Submit when at least one field is invalid.
// No delivery was attempted.
type ValidationError struct {
	Fields []model.ValidationResult
	First  model.Field
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	names := make([]string, 0, len(e.Fields))
	for _, result := range e.Fields {
		names = append(names, result.Field.String())
	}
	return fmt.Sprintf("form: %d invalid field(s): %s", len(e.Fields), strings.Join(names, ", "))
}

// Messages returns field name to message, for JSON responses.
func (e *ValidationError) Messages() map[string]string {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Fields))
	for _, result := range e.Fields {
		out[result.Field.String()] = result.Message
	}
	return out
}

// SubmissionError is returned by Submit when the channel failed. Message is
// the notice shown to the user.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return "form: submission failed"
	}
	return "form: submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
