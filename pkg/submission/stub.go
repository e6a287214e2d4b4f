package submission

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/glotvold/go-site/pkg/model"
)

// DefaultStubDelay mirrors the simulated network latency of the site.
const DefaultStubDelay = 1500 * time.Millisecond

// Stub accepts every payload after a fixed delay. It stands in for a real
// e-mail integration.
type Stub struct {
	delay  time.Duration
	logger *slog.Logger
	now    func() time.Time
	seq    atomic.Uint64
}

// StubOption configures the stub.
type StubOption func(*Stub)

// WithDelay overrides the simulated latency. Negative values are treated as
// zero.
func WithDelay(d time.Duration) StubOption {
	return func(s *Stub) {
		if d < 0 {
			d = 0
		}
		s.delay = d
	}
}

// WithStubLogger sets the logger payloads are written to.
func WithStubLogger(logger *slog.Logger) StubOption {
	return func(s *Stub) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStubClock overrides the receipt clock.
func WithStubClock(now func() time.Time) StubOption {
	return func(s *Stub) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStub returns a stub channel.
func NewStub(options ...StubOption) *Stub {
	s := &Stub{
		delay:  DefaultStubDelay,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Name implements Named.
func (s *Stub) Name() string { return "stub" }

// Submit logs the payload and succeeds once the delay has elapsed. A context
// cancelled before then aborts the wait.
func (s *Stub) Submit(ctx context.Context, payload model.SubmissionPayload) (Receipt, error) {
	s.logger.InfoContext(ctx, "contact form submitted",
		slog.String("name", payload.Name),
		slog.String("email", payload.Email),
		slog.String("phone", payload.Phone),
		slog.String("address", payload.Address),
		slog.String("project_type", payload.ProjectType),
		slog.String("description", payload.Description),
		slog.Bool("want_site_visit", payload.WantSiteVisit),
		slog.Time("timestamp", payload.Timestamp),
	)

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Receipt{}, &DeliveryError{Kind: FailureNetwork, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	return Receipt{
		ID:          fmt.Sprintf("stub-%d", s.seq.Add(1)),
		Channel:     s.Name(),
		DeliveredAt: s.now().UTC(),
	}, nil
}
