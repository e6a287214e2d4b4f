// Package validation implements the contact form validator set: one pure rule
// per field name, each returning either an empty (valid) result or a
// localised message.
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/model"
)

const (
	minNameLength        = 2
	minDescriptionLength = 10
)

var (
	// [^\s\v\p{Z}\x{FEFF}@] is JavaScript's [^\s@]: Go's \s is ASCII only.
	emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)
	phonePattern = regexp.MustCompile(`^[\d+\-]{8,}$`)
)

// Rule validates one raw value and returns the catalogue key of the failure,
// or "" when the value is acceptable. Rules must not touch shared state.
type Rule func(raw string) string

// Set maps field names to rules and resolves failure keys to messages.
// A Set is immutable once built and safe for concurrent use.
type Set struct {
	order      []model.Field
	rules      map[model.Field]Rule
	translator i18n.Translator
	locale     string
}

// Option configures a Set.
type Option func(*Set)

// WithTranslator overrides the catalogue used to resolve messages.
func WithTranslator(t i18n.Translator) Option {
	return func(s *Set) {
		if t != nil {
			s.translator = t
		}
	}
}

// WithLocale selects the message locale (defaults to Norwegian).
func WithLocale(locale string) Option {
	return func(s *Set) {
		if normalized := i18n.NormalizeLocale(locale); normalized != "" {
			s.locale = normalized
		}
	}
}

// WithRule registers or replaces the rule for field. Passing a nil rule
// removes it, making the field always valid.
func WithRule(field model.Field, rule Rule) Option {
	return func(s *Set) {
		s.setRule(field, rule)
	}
}

// New returns the contact form validator set.
func New(options ...Option) *Set {
	s := &Set{
		rules:      make(map[model.Field]Rule, 4),
		translator: i18n.Default(),
		locale:     i18n.LocaleNorwegian,
	}
	s.setRule(model.FieldName, NameRule)
	s.setRule(model.FieldEmail, EmailRule)
	s.setRule(model.FieldPhone, PhoneRule)
	s.setRule(model.FieldDescription, DescriptionRule)

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

func (s *Set) setRule(field model.Field, rule Rule) {
	if field == "" {
		return
	}
	if rule == nil {
		delete(s.rules, field)
		s.order = removeField(s.order, field)
		return
	}
	if _, exists := s.rules[field]; !exists {
		s.order = append(s.order, field)
	}
	s.rules[field] = rule
	s.order = documentOrder(s.order)
}

// Locale reports the locale messages are resolved in.
func (s *Set) Locale() string {
	if s == nil {
		return ""
	}
	return s.locale
}

// Has reports whether field carries a rule.
func (s *Set) Has(field model.Field) bool {
	if s == nil {
		return false
	}
	_, ok := s.rules[field]
	return ok
}

// Fields lists the validated fields in document order.
func (s *Set) Fields() []model.Field {
	if s == nil {
		return nil
	}
	return append([]model.Field(nil), s.order...)
}

// Validate runs the rule registered for field against raw. Fields without a
// rule are always valid.
func (s *Set) Validate(field model.Field, raw string) model.ValidationResult {
	result := model.ValidationResult{Field: field}
	if s == nil {
		return result
	}
	rule, ok := s.rules[field]
	if !ok {
		return result
	}
	key := rule(raw)
	if key == "" {
		return result
	}
	result.Key = key
	result.Message = i18n.T(s.translator, s.locale, key)
	return result
}

// ValidateAll validates every field with a rule using values, returning the
// invalid results in document order.
func (s *Set) ValidateAll(values map[model.Field]string) []model.ValidationResult {
	if s == nil {
		return nil
	}
	var invalid []model.ValidationResult
	for _, field := range s.order {
		if result := s.Validate(field, values[field]); !result.Valid() {
			invalid = append(invalid, result)
		}
	}
	return invalid
}

// NameRule requires a trimmed name of at least two characters.
func NameRule(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return i18n.KeyNameRequired
	}
	if utf8.RuneCountInString(trimmed) < minNameLength {
		return i18n.KeyNameTooShort
	}
	return ""
}

// EmailRule requires a local@domain.tld shape with no whitespace.
func EmailRule(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return i18n.KeyEmailRequired
	}
	if !emailPattern.MatchString(raw) {
		return i18n.KeyEmailInvalid
	}
	return ""
}

// PhoneRule requires at least eight digits, '+' or '-' once whitespace is
// stripped.
func PhoneRule(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return i18n.KeyPhoneRequired
	}
	if !phonePattern.MatchString(stripSpace(raw)) {
		return i18n.KeyPhoneInvalid
	}
	return ""
}

// DescriptionRule requires at least ten trimmed characters.
func DescriptionRule(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return i18n.KeyDescriptionRequired
	}
	if utf8.RuneCountInString(trimmed) < minDescriptionLength {
		return i18n.KeyDescriptionTooShort
	}
	return ""
}

func stripSpace(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
}

func removeField(fields []model.Field, target model.Field) []model.Field {
	out := fields[:0]
	for _, field := range fields {
		if field != target {
			out = append(out, field)
		}
	}
	return out
}

func documentOrder(fields []model.Field) []model.Field {
	rank := make(map[model.Field]int, len(model.ContactFields()))
	for i, field := range model.ContactFields() {
		rank[field] = i
	}
	ordered := make([]model.Field, 0, len(fields))
	for _, known := range model.ContactFields() {
		for _, field := range fields {
			if field == known {
				ordered = append(ordered, field)
			}
		}
	}
	for _, field := range fields {
		if _, ok := rank[field]; !ok {
			ordered = append(ordered, field)
		}
	}
	return ordered
}
