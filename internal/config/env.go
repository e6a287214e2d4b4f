package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by Load.
const (
	EnvAddr           = "GLOTVOLD_ADDR"
	EnvLogLevel       = "GLOTVOLD_LOG_LEVEL"
	EnvLogFormat      = "GLOTVOLD_LOG_FORMAT"
	EnvLocale         = "GLOTVOLD_LOCALE"
	EnvPhone          = "GLOTVOLD_PHONE"
	EnvThemeVariant   = "GLOTVOLD_THEME_VARIANT"
	EnvChannel        = "GLOTVOLD_SUBMISSION_CHANNEL"
	EnvStubDelay      = "GLOTVOLD_STUB_DELAY"
	EnvResendBaseURL  = "GLOTVOLD_RESEND_BASE_URL"
	EnvResendAPIKey   = "GLOTVOLD_RESEND_API_KEY"
	EnvResendFrom     = "GLOTVOLD_RESEND_FROM"
	EnvResendTo       = "GLOTVOLD_RESEND_TO"
	EnvRateLimitRPS   = "GLOTVOLD_RATELIMIT_RPS"
	EnvRateLimitBurst = "GLOTVOLD_RATELIMIT_BURST"
	// EnvTrustedProxies is a comma separated list.
	EnvTrustedProxies = "GLOTVOLD_TRUSTED_PROXIES"
)

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	str(EnvAddr, &cfg.Server.Addr)
	str(EnvLogLevel, &cfg.Log.Level)
	str(EnvLogFormat, &cfg.Log.Format)
	str(EnvLocale, &cfg.Site.Locale)
	str(EnvPhone, &cfg.Site.Phone)
	str(EnvThemeVariant, &cfg.Site.ThemeVariant)
	str(EnvChannel, &cfg.Submission.Channel)
	str(EnvResendBaseURL, &cfg.Submission.Resend.BaseURL)
	str(EnvResendAPIKey, &cfg.Submission.Resend.APIKey)
	str(EnvResendFrom, &cfg.Submission.Resend.From)
	str(EnvResendTo, &cfg.Submission.Resend.To)

	if v, ok := get(EnvStubDelay); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvStubDelay, err)
		}
		cfg.Submission.StubDelay = d
	}
	if v, ok := get(EnvRateLimitRPS); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvRateLimitRPS, err)
		}
		cfg.RateLimit.RPS = rps
	}
	if v, ok := get(EnvRateLimitBurst); ok {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvRateLimitBurst, err)
		}
		cfg.RateLimit.Burst = burst
	}
	if v, ok := get(EnvTrustedProxies); ok {
		var proxies []string
		for _, proxy := range strings.Split(v, ",") {
			if proxy = strings.TrimSpace(proxy); proxy != "" {
				proxies = append(proxies, proxy)
			}
		}
		cfg.RateLimit.TrustedProxies = proxies
	}
	return nil
}
