package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	site "github.com/glotvold/go-site"
	"github.com/glotvold/go-site/internal/config"
	"github.com/glotvold/go-site/internal/logging"
	"github.com/glotvold/go-site/internal/metrics"
	"github.com/glotvold/go-site/internal/ratelimit"
	"github.com/glotvold/go-site/internal/server"
	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/page"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "glotvold-site: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFlag = flag.String("config", "", "Configuration file (searched in default locations if empty)")
		addrFlag   = flag.String("addr", "", "HTTP listen address (overrides configuration)")
		checkFlag  = flag.Bool("check", false, "Validate the configuration and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *addrFlag != "" {
		cfg.Server.Addr = *addrFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if *checkFlag {
		fmt.Printf("configuration ok (%s)\n", describePath(cfg.Path))
		return nil
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	translator := i18n.Default()
	channel, err := config.NewChannel(cfg.Submission, cfg.Site.Locale, logger)
	if err != nil {
		return err
	}
	pages, _, err := site.NewPageRenderer(site.RendererConfig{
		TemplateDir:  cfg.Server.TemplateDir,
		Translator:   translator,
		Phone:        cfg.Site.Phone,
		ThemeVariant: cfg.Site.ThemeVariant,
		ThemeTokens:  cfg.Site.ThemeTokens,
	})
	if err != nil {
		return err
	}
	binder := page.NewBinder(
		page.WithLogger(logger),
		page.WithTranslator(translator),
		page.WithLocale(cfg.Site.Locale),
		page.WithPhone(cfg.Site.Phone),
	)

	var limiter *ratelimit.MapLimiter
	if cfg.RateLimit.Enabled() {
		limiter = ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
	}
	proxies, err := ratelimit.ParsePrefixes(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return err
	}

	srv, err := server.New(channel,
		server.WithLogger(logger),
		server.WithRenderer(pages),
		server.WithBinder(binder),
		server.WithMetrics(metrics.New(true)),
		server.WithLimiter(limiter),
		server.WithTrustedProxies(proxies),
		server.WithTranslator(translator),
		server.WithLocale(cfg.Site.Locale),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if limiter != nil {
		go evictIdle(ctx, limiter, cfg.RateLimit.IdleTTL)
	}

	logger.Info("listening",
		slog.String("addr", cfg.Server.Addr),
		slog.String("channel", cfg.Submission.Channel),
		slog.String("locale", cfg.Site.Locale),
		slog.String("config", describePath(cfg.Path)),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", slog.Any("error", err))
	}
	return nil
}

func evictIdle(ctx context.Context, limiter *ratelimit.MapLimiter, every time.Duration) {
	if every <= 0 {
		every = ratelimit.DefaultIdleTTL
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			limiter.Evict(now)
		}
	}
}

func describePath(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}
