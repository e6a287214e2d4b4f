// Package server exposes the site over HTTP: the contact and projects pages,
// the JSON contact API described by the embedded OpenAPI contract, static
// assets, health and metrics.
package server

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	site "github.com/glotvold/go-site"
	"github.com/glotvold/go-site/components/projects"
	"github.com/glotvold/go-site/internal/metrics"
	"github.com/glotvold/go-site/internal/ratelimit"
	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/openapi"
	"github.com/glotvold/go-site/pkg/page"
	"github.com/glotvold/go-site/pkg/render"
	"github.com/glotvold/go-site/pkg/submission"
)

var (
	ErrMissingChannel  = errors.New("server: submission channel is required")
	ErrMissingRenderer = errors.New("server: page renderer is required")
)

// Server holds the handlers' dependencies. Each request builds its own
// orchestrator; nothing else is mutated after New.
type Server struct {
	logger     *slog.Logger
	pages      render.TemplateRenderer
	binder     *page.Binder
	channel    submission.Channel
	contract   *openapi.Contract
	metrics    *metrics.Metrics
	limiter    *ratelimit.MapLimiter
	clients    *ratelimit.ClientResolver
	projects   *projects.Component
	translator i18n.Translator
	locale     string
	assets     fs.FS
	now        func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer sets the page template renderer.
func WithRenderer(r render.TemplateRenderer) Option {
	return func(s *Server) {
		if r != nil {
			s.pages = r
		}
	}
}

// WithBinder overrides the page binder.
func WithBinder(b *page.Binder) Option {
	return func(s *Server) {
		if b != nil {
			s.binder = b
		}
	}
}

// WithContract overrides the embedded API contract.
func WithContract(c *openapi.Contract) Option {
	return func(s *Server) {
		if c != nil {
			s.contract = c
		}
	}
}

// WithMetrics sets the collectors. A private set is created otherwise.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLimiter throttles submissions per client. Nil disables throttling.
func WithLimiter(l *ratelimit.MapLimiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithTrustedProxies believes X-Forwarded-For only from peers inside
// proxies. Without it the peer address identifies the client.
func WithTrustedProxies(proxies []netip.Prefix) Option {
	return func(s *Server) {
		s.clients = ratelimit.NewClientResolver(proxies)
	}
}

// WithProjects overrides the projects component.
func WithProjects(c *projects.Component) Option {
	return func(s *Server) {
		if c != nil {
			s.projects = c
		}
	}
}

// WithTranslator sets the message catalogue.
func WithTranslator(t i18n.Translator) Option {
	return func(s *Server) {
		if t != nil {
			s.translator = t
		}
	}
}

// WithLocale sets the default locale.
func WithLocale(locale string) Option {
	return func(s *Server) {
		if normalized := i18n.NormalizeLocale(locale); normalized != "" {
			s.locale = normalized
		}
	}
}

// WithAssets overrides the static file tree served under /assets/.
func WithAssets(files fs.FS) Option {
	return func(s *Server) {
		if files != nil {
			s.assets = files
		}
	}
}

// WithClock overrides the clock used for rate limiting.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a server delivering enquiries through channel. The channel is
// wrapped so every delivery is observed by the metrics.
func New(channel submission.Channel, options ...Option) (*Server, error) {
	if channel == nil {
		return nil, ErrMissingChannel
	}
	s := &Server{
		logger:     slog.New(slog.DiscardHandler),
		translator: i18n.Default(),
		locale:     i18n.LocaleNorwegian,
		assets:     site.AssetsFS(),
		clients:    ratelimit.NewClientResolver(nil),
		now:        time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.pages == nil {
		return nil, ErrMissingRenderer
	}
	if s.contract == nil {
		contract, err := openapi.LoadContact(context.Background())
		if err != nil {
			return nil, err
		}
		s.contract = contract
	}
	if s.metrics == nil {
		s.metrics = metrics.New(false)
	}
	if s.binder == nil {
		s.binder = page.NewBinder(
			page.WithLogger(s.logger),
			page.WithTranslator(s.translator),
			page.WithLocale(s.locale),
		)
	}
	if s.projects == nil {
		s.projects = projects.New()
	}
	s.channel = submission.Instrument(channel, s.metrics)
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/kontakt", s.handleContactPage)
	mux.HandleFunc("/prosjekter", s.handleProjectsPage)
	mux.HandleFunc("/api/contact", s.handleContactAPI)
	mux.HandleFunc("/api/contact/validate", s.handleValidateField)
	mux.HandleFunc("/api/track/phone", s.handlePhoneClick)
	mux.HandleFunc(page.RingPath, s.handleRing)
	mux.HandleFunc("/openapi.yaml", s.handleContract)
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServerFS(s.assets)))

	if _, err := s.projects.With(projects.WithGuard(s.contractGuard)).Mount(mux); err != nil {
		s.logger.Error("mount projects api", slog.Any("error", err))
	}
	return s.logRequests(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/kontakt", http.StatusFound)
}

// contractGuard rejects API requests the contract does not describe.
func (s *Server) contractGuard(r *http.Request) error {
	if r.Method == http.MethodHead {
		return nil
	}
	if err := s.contract.ValidateRequest(r); err != nil {
		return projects.StatusError{Code: http.StatusBadRequest, Err: err}
	}
	return nil
}

func (s *Server) handleContract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowedWith(w, http.MethodGet, http.MethodHead)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(s.contract.Document().Raw())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("remote_ip", s.clients.Client(r)),
		)
	})
}
