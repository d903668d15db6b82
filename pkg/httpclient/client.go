package httpclient

import "context"

// Response exposes the parts of an HTTP response the callers read.
// Header returns the first value for key, or "".
type Response interface {
	Body() []byte
	StatusCode() int
	Header(key string) string
}

// Client issues GET requests with per-call headers.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, url string, headers map[string]string) (Response, error)

func (f ClientFunc) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return f(ctx, url, headers)
}
