package config

import (
	"fmt"
	"log/slog"

	"github.com/glotvold/go-site/pkg/submission"
)

// NewChannel builds the configured submission channel. E-mails are composed
// in locale.
func NewChannel(cfg SubmissionConfig, locale string, logger *slog.Logger) (submission.Channel, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch cfg.Channel {
	case "", ChannelStub:
		return submission.NewStub(
			submission.WithDelay(cfg.StubDelay),
			submission.WithStubLogger(logger),
		), nil
	case ChannelResend:
		composer, err := submission.NewComposer(submission.WithComposerLocale(locale))
		if err != nil {
			return nil, err
		}
		return submission.NewResend(submission.ResendConfig{
			BaseURL: cfg.Resend.BaseURL,
			APIKey:  cfg.Resend.APIKey,
			From:    cfg.Resend.From,
			To:      cfg.Resend.To,
			Timeout: cfg.Resend.Timeout,
		},
			submission.WithComposer(composer),
			submission.WithResendLogger(logger),
		)
	default:
		return nil, fmt.Errorf("config: unknown submission channel %q", cfg.Channel)
	}
}
