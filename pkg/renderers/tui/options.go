package tui

import (
	"log/slog"

	"github.com/glotvold/go-site/pkg/form"
	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/model"
)

// OutputFormat controls how the delivered enquiry is summarised.
type OutputFormat string

const (
	// OutputFormatJSON emits the payload as JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures message prefixes the session applies when printing.
type Theme struct {
	InfoPrefix    string
	ErrorPrefix   string
	SuccessPrefix string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{InfoPrefix: "·", ErrorPrefix: "✗", SuccessPrefix: "✓"}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutputFormat selects the summary format.
func WithOutputFormat(format OutputFormat) Option {
	return func(s *Session) {
		if format != "" {
			s.outputFormat = format
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithTranslator sets the catalogue for prompts and messages.
func WithTranslator(t i18n.Translator) Option {
	return func(s *Session) {
		if t != nil {
			s.translator = t
		}
	}
}

// WithLocale selects the prompt locale.
func WithLocale(locale string) Option {
	return func(s *Session) {
		if normalized := i18n.NormalizeLocale(locale); normalized != "" {
			s.locale = normalized
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPrefill seeds answers; prompts offer them as defaults.
func WithPrefill(values map[model.Field]string) Option {
	return func(s *Session) {
		s.prefill = values
	}
}

// WithFormOptions forwards options to the orchestrator.
func WithFormOptions(options ...form.Option) Option {
	return func(s *Session) {
		s.formOptions = append(s.formOptions, options...)
	}
}
