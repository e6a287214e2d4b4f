package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/glotvold/go-site/internal/config"
	"github.com/glotvold/go-site/internal/logging"
	"github.com/glotvold/go-site/pkg/i18n"
	"github.com/glotvold/go-site/pkg/renderers/tui"
)

func main() {
	configPath := flag.String("config", "", "configuration file (searched in default locations if empty)")
	format := flag.String("format", string(tui.OutputFormatPrettyText), "summary format: pretty or json")
	locale := flag.String("locale", "", "prompt language: nb or en (configuration default if empty)")
	output := flag.String("output", "", "summary file (stdout if empty)")
	flag.Parse()

	outputFormat := tui.OutputFormat(*format)
	if outputFormat != tui.OutputFormatJSON && outputFormat != tui.OutputFormatPrettyText {
		log.Fatalf("invalid format: %q", *format)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *locale != "" {
		cfg.Site.Locale = i18n.NormalizeLocale(*locale)
		if cfg.Site.Locale == "" {
			log.Fatalf("unsupported locale: %q", *locale)
		}
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: os.Stderr,
	})
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	channel, err := config.NewChannel(cfg.Submission, cfg.Site.Locale, logger)
	if err != nil {
		log.Fatalf("Failed to build submission channel: %v", err)
	}

	session, err := tui.New(channel,
		tui.WithPromptDriver(tui.NewSurveyDriver(os.Stdout)),
		tui.WithOutputFormat(outputFormat),
		tui.WithLocale(cfg.Site.Locale),
		tui.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := session.Run(ctx)
	if errors.Is(err, tui.ErrDeclined) || errors.Is(err, tui.ErrAborted) || errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		stop()
		log.Fatalf("Failed to send enquiry: %v", err)
	}

	summary, err := session.Summary(result)
	if err != nil {
		log.Fatalf("Failed to render summary: %v", err)
	}
	if *output != "" {
		if err := os.WriteFile(*output, summary, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Summary written to %s\n", *output)
		return
	}
	fmt.Print(string(summary))
}
