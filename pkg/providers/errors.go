package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTimeout indicates the feed request exceeded its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrTooManyRedirects indicates the redirect chain exceeded the hop limit.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// NetworkError wraps a connection-level failure (DNS, refused, reset, TLS).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError is returned when the final response is not 200 OK.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Error kinds used as log fields and metric labels.
const (
	KindTimeout          = "timeout"
	KindTooManyRedirects = "too_many_redirects"
	KindHTTPStatus       = "http_status"
	KindNetwork          = "network"
	KindCanceled         = "canceled"
	KindUnknown          = "unknown"
)

// ErrorKind classifies a fetch error. It returns "" for a nil error.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *HTTPStatusError
	var netErr *NetworkError
	switch {
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrTooManyRedirects):
		return KindTooManyRedirects
	case errors.As(err, &statusErr):
		return KindHTTPStatus
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.As(err, &netErr):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// classifyTransportError maps a client error to ErrTimeout or a NetworkError.
func classifyTransportError(url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("fetch %s: %w", url, ErrTimeout)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("fetch %s: %w", url, ErrTimeout)
	}
	return &NetworkError{URL: url, Err: err}
}
