package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// Kind classifies a fetch failure.
type Kind int

const (
	// KindTransient marks an upstream hiccup worth another attempt.
	KindTransient Kind = iota
	// KindTransport marks a network dead end; further attempts will not help.
	KindTransport
	// KindApplication marks a non-2xx answer the provider meant.
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// Error is a classified fetch failure carrying upstream detail when the
// provider answered.
type Error struct {
	Kind        Kind
	Status      int    // HTTP status when the provider answered, else 0
	BodyPreview string // truncated response body for diagnostics
	Err         error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failure: status %d", e.Kind, e.Status)
	}
	return fmt.Sprintf("%s failure: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a classified failure from err when present.
func AsError(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// classifyStatus maps a non-2xx status to a failure kind.
func classifyStatus(status int) Kind {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return KindTransient
	default:
		return KindApplication
	}
}

// classifyTransport decides whether a request error is a dead end (DNS,
// refused connection, unreachable host, connect timeout) or a hiccup worth
// retrying (response timeout, reset mid-flight).
func classifyTransport(err error) Kind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindTransport
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindTransport
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return KindTransport
	}

	return KindTransient
}
