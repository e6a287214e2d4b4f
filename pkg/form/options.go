package form

import (
	"log/slog"
	"time"

	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/validation"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithValidators replaces the default validator set.
func WithValidators(set *validation.Set) Option {
	return func(o *Orchestrator) {
		if set != nil {
			o.validators = set
		}
	}
}

// WithAnnotator sets where per-field messages are presented.
func WithAnnotator(a Annotator) Option {
	return func(o *Orchestrator) {
		if a != nil {
			o.annotator = a
		}
	}
}

// WithView sets the page surface driven on state changes.
func WithView(v View) Option {
	return func(o *Orchestrator) {
		if v != nil {
			o.view = v
		}
	}
}

// WithLogger sets the logger; nil keeps the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the payload timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithTranslator sets the catalogue used for the failure notice.
func WithTranslator(t i18n.Translator) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.translator = t
		}
	}
}

// WithLocale selects the locale of the failure notice.
func WithLocale(locale string) Option {
	return func(o *Orchestrator) {
		if normalized := i18n.NormalizeLocale(locale); normalized != "" {
			o.locale = normalized
		}
	}
}
