package submission

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/model"
	"github.com/glotvold/go-site/pkg/render"
)

//go:embed templates/*.html
var emailTemplates embed.FS

const contactEmailTemplate = "contact_email"

// Email is a composed notification.
type Email struct {
	Subject string
	HTML    string
	ReplyTo string
}

// Composer turns payloads into notification e-mails. Every user supplied
// value is stripped of markup before it reaches the template.
type Composer struct {
	renderer   render.TemplateRenderer
	translator i18n.Translator
	locale     string
	policy     *bluemonday.Policy
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithRenderer overrides the template renderer. The renderer must provide a
// "contact_email" template.
func WithRenderer(r render.TemplateRenderer) ComposerOption {
	return func(c *Composer) {
		if r != nil {
			c.renderer = r
		}
	}
}

// WithComposerTranslator overrides the catalogue used for labels.
func WithComposerTranslator(t i18n.Translator) ComposerOption {
	return func(c *Composer) {
		if t != nil {
			c.translator = t
		}
	}
}

// WithComposerLocale selects the label locale.
func WithComposerLocale(locale string) ComposerOption {
	return func(c *Composer) {
		if normalized := i18n.NormalizeLocale(locale); normalized != "" {
			c.locale = normalized
		}
	}
}

// NewComposer returns a composer backed by the embedded e-mail template.
func NewComposer(options ...ComposerOption) (*Composer, error) {
	c := &Composer{
		translator: i18n.Default(),
		locale:     i18n.LocaleNorwegian,
		policy:     bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.renderer == nil {
		files, err := fs.Sub(emailTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("submission: email templates: %w", err)
		}
		engine, err := render.NewEngine(render.WithFS(files), render.WithSetName("email"))
		if err != nil {
			return nil, fmt.Errorf("submission: email engine: %w", err)
		}
		c.renderer = engine
	}
	return c, nil
}

type emailRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Compose renders the notification for payload.
func (c *Composer) Compose(payload model.SubmissionPayload) (Email, error) {
	t := func(key string, args ...any) string {
		return i18n.T(c.translator, c.locale, key, args...)
	}
	label := func(field model.Field) string {
		return t("field." + field.String() + ".label")
	}
	clean := func(value string) string {
		return c.policy.Sanitize(strings.TrimSpace(value))
	}
	orDefault := func(value, key string) string {
		if strings.TrimSpace(value) == "" {
			return clean(t(key))
		}
		return clean(value)
	}

	siteVisit := t(i18n.KeyNo)
	if payload.WantSiteVisit {
		siteVisit = t(i18n.KeyYes)
	}

	data := map[string]any{
		"heading": t(i18n.KeyMailHeading),
		"rows": []emailRow{
			{Label: label(model.FieldName), Value: clean(payload.Name)},
			{Label: label(model.FieldEmail), Value: clean(payload.Email)},
			{Label: label(model.FieldPhone), Value: clean(payload.Phone)},
			{Label: label(model.FieldAddress), Value: orDefault(payload.Address, i18n.KeyMailNotProvided)},
			{Label: label(model.FieldProjectType), Value: c.projectType(payload.ProjectType, t)},
		},
		"description_label": label(model.FieldDescription),
		"description":       clean(payload.Description),
		"site_visit_label":  label(model.FieldSiteVisit),
		"site_visit":        siteVisit,
	}

	html, err := c.renderer.RenderTemplate(contactEmailTemplate, data)
	if err != nil {
		return Email{}, fmt.Errorf("submission: compose email: %w", err)
	}

	return Email{
		Subject: t(i18n.KeyMailSubject, strings.TrimSpace(payload.Name)),
		HTML:    html,
		ReplyTo: strings.TrimSpace(payload.Email),
	}, nil
}

func (c *Composer) projectType(raw string, t func(string, ...any) string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return c.policy.Sanitize(t(i18n.KeyMailNotSelected))
	}
	key := "projectType." + raw
	if translated := t(key); translated != key {
		return c.policy.Sanitize(translated)
	}
	return c.policy.Sanitize(raw)
}
