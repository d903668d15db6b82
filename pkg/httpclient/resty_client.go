package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Option customizes the underlying resty client.
type Option func(*resty.Client)

// WithoutRedirects hands 3xx responses back to the caller instead of following them.
func WithoutRedirects() Option {
	return func(c *resty.Client) {
		c.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	}
}

// WithUserAgent sets a default User-Agent; per-request headers still win.
func WithUserAgent(ua string) Option {
	return func(c *resty.Client) {
		if ua != "" {
			c.SetHeader("User-Agent", ua)
		}
	}
}

// RestyClient is the resty-backed Client.
type RestyClient struct {
	rc *resty.Client
}

// NewRestyClient returns a Client whose timeout covers the whole exchange,
// body included.
func NewRestyClient(timeout time.Duration, opts ...Option) *RestyClient {
	return &RestyClient{rc: NewRestyHTTPClient(timeout, opts...)}
}

// NewRestyHTTPClient returns the bare resty client for callers that need
// verbs other than GET.
func NewRestyHTTPClient(timeout time.Duration, opts ...Option) *resty.Client {
	rc := resty.New().SetTimeout(timeout)
	for _, opt := range opts {
		if opt != nil {
			opt(rc)
		}
	}
	return rc
}

func (c *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := c.rc.R().SetContext(ctx).SetHeaders(headers).Get(url)
	if err != nil {
		return nil, err
	}
	return restyResponse{resp}, nil
}

type restyResponse struct {
	*resty.Response
}

func (r restyResponse) Header(key string) string { return r.Response.Header().Get(key) }
