package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for catalog operations
var (
	// ErrNotFound indicates the requested movie or show does not exist
	ErrNotFound = errors.New("content not found")

	// ErrOffline indicates the catalog API is unreachable (no network, DNS, timeout)
	ErrOffline = errors.New("catalog API is unreachable")

	// ErrUnauthorized indicates the API key or access token was rejected
	ErrUnauthorized = errors.New("API key is invalid")

	// ErrRateLimited indicates the API rejected the request with 429
	ErrRateLimited = errors.New("rate limited by catalog API")
)

// HTTPError is a non-success response that has no dedicated sentinel
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Status)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.Status, e.Body)
}

// ErrorKind groups failures for display and logging
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTransport
	KindHTTP
)

// String returns a short label for the kind
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// Classify maps an error onto the failure taxonomy: connectivity problems,
// non-success HTTP responses, and everything else.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var httpErr *HTTPError
	switch {
	case errors.Is(err, ErrOffline), errors.Is(err, context.DeadlineExceeded):
		return KindTransport
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrRateLimited), errors.As(err, &httpErr):
		return KindHTTP
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransport
	}
	return KindUnknown
}
