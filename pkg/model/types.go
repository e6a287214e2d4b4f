package model

import (
	"strings"
	"time"
)

// Field is the logical identity of a contact form field. It doubles as the id
// of the matching control in the page markup.
type Field string

const (
	FieldName        Field = "name"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldAddress     Field = "address"
	FieldProjectType Field = "projectType"
	FieldDescription Field = "description"
	FieldSiteVisit   Field = "siteVisit"
)

// ContactFields lists the contact form fields in document order.
func ContactFields() []Field {
	return []Field{
		FieldName,
		FieldEmail,
		FieldPhone,
		FieldAddress,
		FieldProjectType,
		FieldDescription,
		FieldSiteVisit,
	}
}

// ProjectTypes lists the selectable project type values. The empty value
// means "not chosen".
func ProjectTypes() []string {
	return []string{"renovation", "extension", "newbuild", "bathroom", "other"}
}

// ParseField normalises raw input into a known Field.
func ParseField(raw string) (Field, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	for _, name := range ContactFields() {
		if strings.EqualFold(string(name), trimmed) {
			return name, true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (f Field) String() string {
	return string(f)
}

// IsBoolean reports whether the field carries a checked state instead of text.
func (f Field) IsBoolean() bool {
	return f == FieldSiteVisit
}

// ValidationResult is the outcome of validating one field. The zero value is a
// valid result; an invalid result carries a human readable message and the
// catalogue key it was resolved from.
type ValidationResult struct {
	Field   Field  `json:"field"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message,omitempty"`
}

// Valid reports whether the result carries no message.
func (r ValidationResult) Valid() bool {
	return strings.TrimSpace(r.Message) == ""
}

// FormField is the live view of one registered field.
type FormField struct {
	Name    Field
	Value   string
	Checked bool
	Result  ValidationResult
}

// Invalid reports whether the field currently carries an error.
func (f FormField) Invalid() bool {
	return !f.Result.Valid()
}

// SubmissionPayload is the snapshot handed to a submission channel. It is
// passed by value so channels cannot mutate the orchestrator's copy.
type SubmissionPayload struct {
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	ProjectType   string    `json:"projectType"`
	Description   string    `json:"description"`
	WantSiteVisit bool      `json:"wantSiteVisit"`
	Timestamp     time.Time `json:"timestamp"`
}

// UIState enumerates the orchestrator states.
type UIState int

const (
	StateIdle UIState = iota
	StateSubmitting
	StateSuccess
	StateFailed
)

// String implements fmt.Stringer.
func (s UIState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name for JSON payloads and log attributes.
func (s UIState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
