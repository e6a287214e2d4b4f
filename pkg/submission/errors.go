package submission

import (
	"errors"
	"fmt"
)

var (
	// ErrNoChannel reports a nil channel or function.
	ErrNoChannel = errors.New("submission: channel is nil")
	// ErrMissingAPIKey is returned when the Resend channel has no key.
	ErrMissingAPIKey = errors.New("submission: resend api key is required")
	// ErrMissingRecipient is returned when no sender or recipient is set.
	ErrMissingRecipient = errors.New("submission: sender and recipient are required")
)

// FailureKind classifies delivery failures.
type FailureKind string

const (
	// FailureNetwork covers transport errors: DNS, refused connections,
	// timeouts, truncated responses.
	FailureNetwork FailureKind = "network"
	// FailureRejected covers 4xx answers: the request itself was refused.
	FailureRejected FailureKind = "rejected"
	// FailureServer covers 5xx answers and unreadable success bodies.
	FailureServer FailureKind = "server"
)

// DeliveryError describes a failed outbound call.
type DeliveryError struct {
	Kind       FailureKind
	StatusCode int
	Message    string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("submission: %s failure", e.Kind)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeliveryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Temporary reports whether retrying later could succeed. Callers decide
// whether to retry; channels never do.
func (e *DeliveryError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.Kind == FailureNetwork || e.Kind == FailureServer
}

// KindOf extracts the failure kind from err, or "" when err is not a
// DeliveryError.
func KindOf(err error) FailureKind {
	var delivery *DeliveryError
	if errors.As(err, &delivery) {
		return delivery.Kind
	}
	return ""
}
