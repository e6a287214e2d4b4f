// Package config loads the site service configuration from YAML, applies
// GLOTVOLD_* environment overrides and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Submission channel names.
const (
	ChannelStub   = "stub"
	ChannelResend = "resend"
)

// DefaultCandidates are searched, in order, when no explicit path is given.
var DefaultCandidates = []string{
	"glotvold.yaml",
	"config/glotvold.yaml",
	"/etc/glotvold/glotvold.yaml",
}

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Site       SiteConfig       `yaml:"site"`
	Submission SubmissionConfig `yaml:"submission"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr" validate:"required,hostname_port"`
	ShutdownGrace     time.Duration `yaml:"shutdown_grace" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" validate:"gte=0"`
	TemplateDir       string        `yaml:"template_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

type SiteConfig struct {
	Locale       string            `yaml:"locale" validate:"oneof=nb en"`
	Phone        string            `yaml:"phone" validate:"required"`
	ThemeVariant string            `yaml:"theme_variant"`
	ThemeTokens  map[string]string `yaml:"theme_tokens"`
}

type SubmissionConfig struct {
	Channel   string        `yaml:"channel" validate:"oneof=stub resend"`
	StubDelay time.Duration `yaml:"stub_delay" validate:"gte=0"`
	Resend    ResendConfig  `yaml:"resend"`
}

type ResendConfig struct {
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey  string        `yaml:"api_key"`
	From    string        `yaml:"from" validate:"omitempty,email"`
	To      string        `yaml:"to" validate:"omitempty,email"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

type RateLimitConfig struct {
	RPS     float64       `yaml:"rps" validate:"gte=0"`
	Burst   int           `yaml:"burst" validate:"gte=0"`
	IdleTTL time.Duration `yaml:"idle_ttl" validate:"gte=0"`
	// TrustedProxies lists the addresses or CIDR ranges whose
	// X-Forwarded-For header is believed. Empty means the peer address is
	// always the client.
	TrustedProxies []string `yaml:"trusted_proxies" validate:"dive,ip|cidr"`
}

// Enabled reports whether submissions are throttled.
func (c RateLimitConfig) Enabled() bool {
	return c.RPS > 0 && c.Burst > 0
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ShutdownGrace:     10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Site: SiteConfig{
			Locale: "nb",
			Phone:  "900 XX XXX",
		},
		Submission: SubmissionConfig{
			Channel:   ChannelStub,
			StubDelay: 1500 * time.Millisecond,
			Resend: ResendConfig{
				BaseURL: "https://api.resend.com",
				From:    "nettside@glotvold.no",
				To:      "post@glotvold.no",
				Timeout: 10 * time.Second,
			},
		},
		RateLimit: RateLimitConfig{RPS: 0.2, Burst: 3, IdleTTL: 10 * time.Minute},
	}
}

// ErrNotFound is returned when an explicit path does not exist.
var ErrNotFound = errors.New("config: file not found")

// Option configures Load.
type Option func(*loader)

type loader struct {
	candidates []string
	lookupEnv  func(string) (string, bool)
	readFile   func(string) ([]byte, error)
}

// WithCandidates replaces the default search paths.
func WithCandidates(paths ...string) Option {
	return func(l *loader) {
		l.candidates = paths
	}
}

// WithEnv replaces os.LookupEnv.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(l *loader) {
		if lookup != nil {
			l.lookupEnv = lookup
		}
	}
}

// Load builds the configuration: defaults, then the YAML file at path (or
// the first existing candidate when path is empty), then environment
// overrides. The result is validated.
func Load(path string, options ...Option) (Config, error) {
	l := &loader{
		candidates: DefaultCandidates,
		lookupEnv:  os.LookupEnv,
		readFile:   os.ReadFile,
	}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}

	cfg := Default()
	path = strings.TrimSpace(path)
	if path != "" {
		data, err := l.readFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.Path = path
	} else {
		for _, candidate := range l.candidates {
			data, err := l.readFile(candidate)
			if err != nil {
				continue
			}
			if err := decode(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", candidate, err)
			}
			cfg.Path = candidate
			break
		}
	}

	if err := applyEnv(&cfg, l.lookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks field constraints and the settings the resend channel
// needs.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Submission.Channel == ChannelResend {
		r := c.Submission.Resend
		if strings.TrimSpace(r.APIKey) == "" {
			return errors.New("config: submission.resend.api_key is required for the resend channel")
		}
		if r.From == "" || r.To == "" {
			return errors.New("config: submission.resend.from and to are required for the resend channel")
		}
	}
	return nil
}
