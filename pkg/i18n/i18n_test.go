package i18n_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/glotvold/go-site/pkg/i18n"
)

func TestCatalogTranslateFallsBackToDefaultLocale(t *testing.T) {
	catalog := i18n.NewCatalog("nb")
	catalog.Add("nb", map[string]string{"greeting": "Hei", "only.nb": "Bare norsk"})
	catalog.Add("en", map[string]string{"greeting": "Hello"})

	got, err := catalog.Translate("en-GB", "greeting")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "Hello" {
		t.Fatalf("expected English greeting, got %q", got)
	}

	got, err = catalog.Translate("en", "only.nb")
	if err != nil {
		t.Fatalf("translate fallback: %v", err)
	}
	if got != "Bare norsk" {
		t.Fatalf("expected fallback to nb, got %q", got)
	}

	if _, err := catalog.Translate("en", "unknown"); !errors.Is(err, i18n.ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}

func TestCatalogTranslateAppliesArgs(t *testing.T) {
	got, err := i18n.Default().Translate("nb", i18n.KeyMailSubject, "Kari")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "Ny henvendelse fra Kari" {
		t.Fatalf("unexpected subject %q", got)
	}
}

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"nb-NO": "nb",
		"no":    "nb",
		"nn_NO": "nb",
		" EN ":  "en",
		"":      "",
	}
	for in, want := range cases {
		if got := i18n.NormalizeLocale(in); got != want {
			t.Fatalf("NormalizeLocale(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultMessagesCoverBothLocales(t *testing.T) {
	messages := i18n.DefaultMessages()
	nb := keys(messages[i18n.LocaleNorwegian])
	en := keys(messages[i18n.LocaleEnglish])
	if diff := cmp.Diff(nb, en); diff != "" {
		t.Fatalf("locale key sets differ (-nb +en):\n%s", diff)
	}
}

func TestTemplateFuncsResolveLocaleFromMap(t *testing.T) {
	funcs := i18n.TemplateFuncs(i18n.Default(), i18n.TemplateConfig{})
	translate, ok := funcs["translate"].(func(any, string, ...any) string)
	if !ok {
		t.Fatalf("expected translate helper, got %T", funcs["translate"])
	}

	got := translate(map[string]any{"locale": "en"}, i18n.KeySubmitLabel)
	if got != "Send enquiry" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := translate("nb", "missing.key"); got != "missing.key" {
		t.Fatalf("expected key echo for missing translation, got %q", got)
	}
}

func TestTNilTranslatorReturnsKey(t *testing.T) {
	if got := i18n.T(nil, "nb", "x.y"); got != "x.y" {
		t.Fatalf("expected key, got %q", got)
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
