// Package submission delivers validated contact payloads. A Channel either
// succeeds with a Receipt or fails with an error; there are no partial
// outcomes.
package submission

import (
	"context"
	"time"

	"github.com/glotvold/go-site/pkg/model"
)

// Receipt acknowledges a delivered payload.
type Receipt struct {
	ID          string    `json:"id,omitempty"`
	Channel     string    `json:"channel"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// Channel performs the outbound delivery of one payload.
type Channel interface {
	Submit(ctx context.Context, payload model.SubmissionPayload) (Receipt, error)
}

// Func adapts a function into a Channel.
type Func func(ctx context.Context, payload model.SubmissionPayload) (Receipt, error)

// Submit implements Channel.
func (fn Func) Submit(ctx context.Context, payload model.SubmissionPayload) (Receipt, error) {
	if fn == nil {
		return Receipt{}, ErrNoChannel
	}
	return fn(ctx, payload)
}

// Named is implemented by channels that report a name for logs and metrics.
type Named interface {
	Name() string
}

// NameOf returns the channel name, or "custom" when unnamed.
func NameOf(ch Channel) string {
	if named, ok := ch.(Named); ok {
		if name := named.Name(); name != "" {
			return name
		}
	}
	return "custom"
}
