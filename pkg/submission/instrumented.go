package submission

import (
	"context"
	"time"

	"github.com/glotvold/go-site/pkg/model"
)

// Outcome labels used when observing deliveries.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Observer records delivery outcomes.
type Observer interface {
	ObserveSubmission(channel, outcome string, elapsed time.Duration)
}

// Instrumented wraps a channel and reports each call to an Observer.
type Instrumented struct {
	next     Channel
	observer Observer
	now      func() time.Time
}

// Instrument wraps next. A nil observer returns next unchanged.
func Instrument(next Channel, observer Observer) Channel {
	if next == nil || observer == nil {
		return next
	}
	return &Instrumented{next: next, observer: observer, now: time.Now}
}

// Name reports the wrapped channel's name.
func (i *Instrumented) Name() string { return NameOf(i.next) }

// Submit implements Channel.
func (i *Instrumented) Submit(ctx context.Context, payload model.SubmissionPayload) (Receipt, error) {
	start := i.now()
	receipt, err := i.next.Submit(ctx, payload)

	outcome := OutcomeSuccess
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = OutcomeError
		}
	}
	i.observer.ObserveSubmission(i.Name(), outcome, i.now().Sub(start))
	return receipt, err
}
