package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrDeclined is returned when the user chose not to send the enquiry.
	ErrDeclined = errors.New("tui: submission declined")
	// ErrMissingDriver is returned when no prompt driver is configured.
	ErrMissingDriver = errors.New("tui: prompt driver is nil")
)
