package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownLocation is returned when a location id is not in the catalog.
	ErrUnknownLocation = errors.New("unknown location")
	// ErrInvalidWindow is returned for lookback windows other than 7 or 14 days.
	ErrInvalidWindow = errors.New("lookback window must be 7 or 14 days")
	// ErrSuperseded marks a cycle whose result was discarded because a newer
	// cycle was started before it completed.
	ErrSuperseded = errors.New("fetch cycle superseded")
)

// NetworkError means the request could not be sent or did not complete.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError means the provider answered with a non-success status.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Temporary reports whether retrying the request may succeed.
func (e *UpstreamError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// MalformedResponseError means the payload could not be decoded or its shape
// does not match what was requested (missing fields, mismatched array lengths).
type MalformedResponseError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed response: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: malformed response: %s", e.Endpoint, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func malformed(endpoint, format string, args ...any) *MalformedResponseError {
	return &MalformedResponseError{Endpoint: endpoint, Reason: fmt.Sprintf(format, args...)}
}

// ErrorKind classifies err for logs and API responses: "network",
// "upstream", "malformed", "superseded" or "internal".
func ErrorKind(err error) string {
	var (
		netErr       *NetworkError
		upstreamErr  *UpstreamError
		malformedErr *MalformedResponseError
	)
	switch {
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &upstreamErr):
		return "upstream"
	case errors.As(err, &malformedErr):
		return "malformed"
	case errors.Is(err, ErrSuperseded):
		return "superseded"
	default:
		return "internal"
	}
}
