package backend

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload is returned when a backend response does not carry the fields
// the client needs. Such payloads are rejected at the boundary instead of being passed on.
var ErrMalformedPayload = errors.New("malformed backend payload")

// RejectionError is returned when the backend answers with a non-success status.
// Message is the body's "message" field verbatim, or a generic text when absent.
type RejectionError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("backend rejected %s: %s", e.Endpoint, e.Message)
}

// NetworkError is returned on transport failures: timeouts, DNS, refused connections.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend unreachable on %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func malformed(endpoint, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedPayload, endpoint, fmt.Sprintf(format, args...))
}
