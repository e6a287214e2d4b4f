package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/glotvold/go-site/pkg/model"
)

const (
	// DefaultResendBaseURL is the public Resend API endpoint.
	DefaultResendBaseURL = "https://api.resend.com"
	// DefaultResendTimeout bounds one HTTP exchange with Resend.
	DefaultResendTimeout = 10 * time.Second

	maxResponseBytes = 64 << 10
)

// ResendConfig holds the Resend account settings.
type ResendConfig struct {
	BaseURL string
	APIKey  string
	From    string
	To      string
	Timeout time.Duration
}

// Resend delivers payloads as e-mails through the Resend HTTP API.
type Resend struct {
	cfg      ResendConfig
	client   *http.Client
	composer *Composer
	logger   *slog.Logger
	now      func() time.Time
}

// ResendOption configures the Resend channel.
type ResendOption func(*Resend)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ResendOption {
	return func(r *Resend) {
		if client != nil {
			r.client = client
		}
	}
}

// WithComposer overrides the e-mail composer.
func WithComposer(c *Composer) ResendOption {
	return func(r *Resend) {
		if c != nil {
			r.composer = c
		}
	}
}

// WithResendLogger sets the logger.
func WithResendLogger(logger *slog.Logger) ResendOption {
	return func(r *Resend) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithResendClock overrides the receipt clock.
func WithResendClock(now func() time.Time) ResendOption {
	return func(r *Resend) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResend validates cfg and returns the channel.
func NewResend(cfg ResendConfig, options ...ResendOption) (*Resend, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultResendBaseURL
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg.From = strings.TrimSpace(cfg.From)
	cfg.To = strings.TrimSpace(cfg.To)
	if cfg.From == "" || cfg.To == "" {
		return nil, ErrMissingRecipient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultResendTimeout
	}

	r := &Resend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.composer == nil {
		composer, err := NewComposer()
		if err != nil {
			return nil, err
		}
		r.composer = composer
	}
	return r, nil
}

// Name implements Named.
func (r *Resend) Name() string { return "resend" }

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

// Submit sends one e-mail. Failures come back as *DeliveryError; nothing is
// retried here.
func (r *Resend) Submit(ctx context.Context, payload model.SubmissionPayload) (Receipt, error) {
	email, err := r.composer.Compose(payload)
	if err != nil {
		return Receipt{}, err
	}

	body, err := json.Marshal(resendRequest{
		From:    r.cfg.From,
		To:      []string{r.cfg.To},
		Subject: email.Subject,
		HTML:    email.HTML,
		ReplyTo: email.ReplyTo,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("submission: encode resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("submission: build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Receipt{}, &DeliveryError{Kind: FailureNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Receipt{}, &DeliveryError{Kind: FailureNetwork, StatusCode: resp.StatusCode, Err: err}
	}

	var decoded resendResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return Receipt{}, &DeliveryError{Kind: FailureServer, StatusCode: resp.StatusCode, Message: responseMessage(decoded, raw)}
	case resp.StatusCode >= http.StatusBadRequest:
		return Receipt{}, &DeliveryError{Kind: FailureRejected, StatusCode: resp.StatusCode, Message: responseMessage(decoded, raw)}
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return Receipt{}, &DeliveryError{Kind: FailureServer, StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	if decodeErr != nil || strings.TrimSpace(decoded.ID) == "" {
		return Receipt{}, &DeliveryError{Kind: FailureServer, StatusCode: resp.StatusCode, Message: "response carried no message id", Err: decodeErr}
	}

	r.logger.InfoContext(ctx, "contact email sent",
		slog.String("channel", r.Name()),
		slog.String("message_id", decoded.ID),
	)
	return Receipt{ID: decoded.ID, Channel: r.Name(), DeliveredAt: r.now().UTC()}, nil
}

func responseMessage(decoded resendResponse, raw []byte) string {
	if msg := strings.TrimSpace(decoded.Message); msg != "" {
		return msg
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
