package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	if err := classifyTransportError("u", context.DeadlineExceeded); !errors.Is(err, ErrTimeout) {
		t.Fatalf("deadline exceeded should map to ErrTimeout, got %v", err)
	}
	if err := classifyTransportError("u", fmt.Errorf("wrapped: %w", timeoutErr{})); !errors.Is(err, ErrTimeout) {
		t.Fatalf("net timeout should map to ErrTimeout, got %v", err)
	}

	err := classifyTransportError("u", errors.New("connection refused"))
	var netErr *NetworkError
	if !errors.As(err, &netErr) || netErr.URL != "u" {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("fetch x: %w", ErrTimeout), KindTimeout},
		{fmt.Errorf("fetch x: %w", ErrTooManyRedirects), KindTooManyRedirects},
		{&HTTPStatusError{StatusCode: 503}, KindHTTPStatus},
		{&NetworkError{URL: "x", Err: errors.New("reset")}, KindNetwork},
		{&NetworkError{URL: "x", Err: context.Canceled}, KindCanceled},
		{errors.New("other"), KindUnknown},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestHTTPStatusErrorMessage(t *testing.T) {
	if got := (&HTTPStatusError{StatusCode: 404}).Error(); got != "HTTP 404" {
		t.Fatalf("Error() = %q", got)
	}
}
