package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Failure kinds. Timeout, connection, and rate-limit failures are worth
// retrying; auth and malformed-request failures never are.
const (
	KindTimeout    = "timeout"
	KindConnection = "connection"
	KindRateLimit  = "rate_limit"
	KindAuth       = "auth"
	KindBadRequest = "bad_request"
	KindResponse   = "invalid_response"
)

// ProviderError is a classified provider failure.
type ProviderError struct {
	Provider  string
	Kind      string
	Status    int // HTTP status when applicable, 0 otherwise
	Message   string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return false
}

// classifyStatus maps an HTTP status to a ProviderError.
func classifyStatus(provider string, status int, body string) *ProviderError {
	switch {
	case status == 429:
		return &ProviderError{Provider: provider, Kind: KindRateLimit, Status: status, Message: "rate limit exceeded", Transient: true}
	case status == 401 || status == 403:
		return &ProviderError{Provider: provider, Kind: KindAuth, Status: status, Message: "authentication failed", Transient: false}
	case status >= 500:
		return &ProviderError{Provider: provider, Kind: KindConnection, Status: status, Message: truncate(body, 200), Transient: true}
	default:
		return &ProviderError{Provider: provider, Kind: KindBadRequest, Status: status, Message: truncate(body, 200), Transient: false}
	}
}

// classifyTransport maps a transport-level error (dial failure, deadline) to
// a ProviderError.
func classifyTransport(provider string, err error) *ProviderError {
	if errors.Is(err, context.Canceled) {
		return &ProviderError{Provider: provider, Kind: KindConnection, Message: "request canceled", Transient: false, Err: err}
	}
	kind := KindConnection
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = KindTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Message: err.Error(), Transient: true, Err: err}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
