// Package page binds site behaviour to a parsed HTML page: the contact form
// workflow, lazy images and phone link tracking. Each feature checks once
// whether the page carries the elements it needs and degrades on its own
// when they are missing.
package page

import (
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/glotvold/go-site/pkg/dom"
	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/present"
)

// Capability names a page feature that depends on optional markup.
type Capability string

const (
	CapContactForm   Capability = "contact-form"
	CapFormFields    Capability = "form-fields"
	CapSubmitTrigger Capability = "submit-trigger"
	CapLazyImages    Capability = "lazy-images"
	CapPhoneLinks    Capability = "phone-links"
)

// Binder holds the settings shared by every page it binds. It is safe for
// concurrent use; missing capabilities are logged once per Binder.
type Binder struct {
	logger     *slog.Logger
	presenter  *present.Presenter
	translator i18n.Translator
	locale     string
	phone      string

	logged sync.Map
}

// Option configures a Binder.
type Option func(*Binder)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithPresenter overrides the error presenter.
func WithPresenter(p *present.Presenter) Option {
	return func(b *Binder) {
		if p != nil {
			b.presenter = p
		}
	}
}

// WithTranslator sets the catalogue for labels and notices.
func WithTranslator(t i18n.Translator) Option {
	return func(b *Binder) {
		if t != nil {
			b.translator = t
		}
	}
}

// WithLocale selects the default locale.
func WithLocale(locale string) Option {
	return func(b *Binder) {
		if normalized := i18n.NormalizeLocale(locale); normalized != "" {
			b.locale = normalized
		}
	}
}

// WithPhone sets the display phone number used in the success notice.
func WithPhone(display string) Option {
	return func(b *Binder) {
		b.phone = strings.TrimSpace(display)
	}
}

// NewBinder returns a Binder.
func NewBinder(options ...Option) *Binder {
	b := &Binder{
		logger:     slog.New(slog.DiscardHandler),
		presenter:  present.New(),
		translator: i18n.Default(),
		locale:     i18n.LocaleNorwegian,
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Locale reports the default locale.
func (b *Binder) Locale() string { return b.locale }

// Enhance applies the site-wide enhancements to doc and reports which ones
// found their markup.
func (b *Binder) Enhance(doc *dom.Document) map[Capability]bool {
	found := map[Capability]bool{
		CapLazyImages: LazyImages(doc) > 0,
		CapPhoneLinks: TrackPhoneLinks(doc) > 0,
	}
	for capability, ok := range found {
		if !ok {
			b.missing(capability, "")
		}
	}
	return found
}

func (b *Binder) missing(capability Capability, page string) {
	key := string(capability) + "|" + page
	if _, seen := b.logged.LoadOrStore(key, struct{}{}); seen {
		return
	}
	attrs := []any{slog.String("capability", string(capability))}
	if page != "" {
		attrs = append(attrs, slog.String("page", page))
	}
	b.logger.Info("page capability unavailable, feature disabled", attrs...)
}

func (b *Binder) t(locale, key string, args ...any) string {
	if locale == "" {
		locale = b.locale
	}
	return i18n.T(b.translator, locale, key, args...)
}

// LazyImages promotes data-src and data-srcset to their real attributes,
// marks the images loading="lazy" and adds the loaded class. It returns the
// number of images rewritten.
func LazyImages(doc *dom.Document) int {
	images := doc.FindAll(dom.And(dom.ByTag("img"), dom.HasAttr("data-src")))
	for _, img := range images {
		src, _ := img.Attr("data-src")
		img.SetAttr("src", src)
		img.RemoveAttr("data-src")
		if srcset, ok := img.Attr("data-srcset"); ok {
			img.SetAttr("srcset", srcset)
			img.RemoveAttr("data-srcset")
		}
		if _, ok := img.Attr("loading"); !ok {
			img.SetAttr("loading", "lazy")
		}
		img.AddClass("loaded")
	}
	return len(images)
}

// RingPath is the route tracked phone links pass through. It counts the
// click and redirects to the tel: target.
const RingPath = "/ring"

// RingHref returns the tracked link for a tel: target such as "+4790000000".
func RingHref(number string) string {
	return RingPath + "?" + url.Values{"to": {number}}.Encode()
}

// TrackPhoneLinks routes tel: links through RingPath so a click is counted
// before the dialer opens. It returns the number of links rewritten.
func TrackPhoneLinks(doc *dom.Document) int {
	return trackPhoneLinks(doc.FindAll(phoneLink))
}

var phoneLink = dom.And(dom.ByTag("a"), dom.AttrPrefix("href", "tel:"))

func trackPhoneLinks(links []*dom.Element) int {
	for _, link := range links {
		href, _ := link.Attr("href")
		number := strings.TrimPrefix(href, "tel:")
		link.SetAttr("href", RingHref(number))
		link.SetAttr("data-track", "phone")
		link.SetAttr("data-phone", number)
	}
	return len(links)
}
