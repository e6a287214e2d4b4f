package i18n

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

const (
	// LocaleNorwegian is the site's primary locale (bokmål).
	LocaleNorwegian = "nb"
	// LocaleEnglish is the secondary locale.
	LocaleEnglish = "en"
)

var (
	// ErrMissingTranslator is reported when a helper runs without a Translator.
	ErrMissingTranslator = errors.New("i18n: translator is nil")
	// ErrMissingKey is reported when neither the locale nor the fallback knows the key.
	ErrMissingKey = errors.New("i18n: missing translation")
)

// Translator resolves message keys for a locale. Args are applied with
// fmt.Sprintf semantics when present.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler chooses the string returned when a key cannot be
// resolved.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// Catalog is an in-memory Translator keyed by locale and message key.
type Catalog struct {
	mu       sync.RWMutex
	fallback string
	messages map[string]map[string]string
}

// NewCatalog returns an empty catalogue that falls back to fallbackLocale.
func NewCatalog(fallbackLocale string) *Catalog {
	return &Catalog{
		fallback: NormalizeLocale(fallbackLocale),
		messages: make(map[string]map[string]string),
	}
}

// Add merges messages into the catalogue for locale. Later calls win.
func (c *Catalog) Add(locale string, messages map[string]string) {
	if c == nil || len(messages) == 0 {
		return
	}
	locale = NormalizeLocale(locale)
	if locale == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	bucket := c.messages[locale]
	if bucket == nil {
		bucket = make(map[string]string, len(messages))
		c.messages[locale] = bucket
	}
	for key, msg := range messages {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		bucket[key] = msg
	}
}

// Locales lists the locales known to the catalogue.
func (c *Catalog) Locales() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	return out
}

// Has reports whether the catalogue carries messages for locale.
func (c *Catalog) Has(locale string) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.messages[NormalizeLocale(locale)]
	return ok
}

// Translate implements Translator.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	if c == nil {
		return "", ErrMissingTranslator
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrMissingKey
	}

	c.mu.RLock()
	msg, ok := c.lookup(NormalizeLocale(locale), key)
	if !ok && c.fallback != "" {
		msg, ok = c.lookup(c.fallback, key)
	}
	c.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrMissingKey, locale, key)
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...), nil
	}
	return msg, nil
}

func (c *Catalog) lookup(locale, key string) (string, bool) {
	bucket, ok := c.messages[locale]
	if !ok {
		return "", false
	}
	msg, ok := bucket[key]
	return msg, ok
}

// NormalizeLocale lowercases a locale tag and strips the region, so "nb-NO"
// and "nb_no" both resolve to "nb". "no" and "nn" map onto "nb" because the
// site only ships bokmål copy.
func NormalizeLocale(locale string) string {
	trimmed := strings.ToLower(strings.TrimSpace(locale))
	if trimmed == "" {
		return ""
	}
	if idx := strings.IndexAny(trimmed, "-_"); idx > 0 {
		trimmed = trimmed[:idx]
	}
	switch trimmed {
	case "no", "nn":
		return LocaleNorwegian
	}
	return trimmed
}

// T resolves key through t, falling back to onMissing (or the key itself).
func T(t Translator, locale, key string, args ...any) string {
	return translate(t, locale, key, args, nil)
}

func translate(t Translator, locale, key string, args []any, onMissing MissingTranslationHandler) string {
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if t == nil {
		return onMissing(locale, key, args, ErrMissingTranslator)
	}
	msg, err := t.Translate(locale, key, args...)
	if err != nil || strings.TrimSpace(msg) == "" {
		return onMissing(locale, key, args, err)
	}
	return msg
}

func missingTranslationDefault(_ string, key string, _ []any, _ error) string {
	return key
}
