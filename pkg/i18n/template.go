package i18n

import (
	"fmt"
	"strings"
)

// TemplateConfig configures the template translation helper.
type TemplateConfig struct {
	// FuncName names the helper; "translate" when empty.
	FuncName string
	// OnMissing picks the text for unknown keys. The key itself by default.
	OnMissing MissingTranslationHandler
}

// TemplateFuncs returns the helper templates call as
//
//	translate(locale, key, args...)
//
// where locale is a locale string or a map holding one under "locale", as
// page data does once the engine has flattened it.
func TemplateFuncs(t Translator, cfg TemplateConfig) map[string]any {
	name := strings.TrimSpace(cfg.FuncName)
	if name == "" {
		name = "translate"
	}
	return map[string]any{
		name: func(locale any, key string, args ...any) string {
			return translate(t, localeOf(locale), key, args, cfg.OnMissing)
		},
	}
}

func localeOf(src any) string {
	switch v := src.(type) {
	case string:
		return v
	case map[string]any:
		if locale, ok := v["locale"]; ok && locale != nil {
			return strings.TrimSpace(fmt.Sprint(locale))
		}
	case map[string]string:
		return v["locale"]
	}
	return ""
}
