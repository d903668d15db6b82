package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
)

const (
	DefaultFetchTimeout = 15 * time.Second
	DefaultMaxRedirects = 5
)

// Fetcher retrieves the raw feed document for a provider.
type Fetcher interface {
	Fetch(ctx context.Context, cfg Provider) (string, error)
}

// HTTPClient is the transport the fetcher drives. It must not follow
// redirects itself.
type HTTPClient = httpclient.Client

// FetcherOptions tunes the feed fetcher.
type FetcherOptions struct {
	// Timeout applies to each individual request, including every redirect hop.
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string
	Accept       string
}

// FeedFetcher downloads feed documents, following redirects itself so the
// hop count and per-hop timeout stay under its control.
type FeedFetcher struct {
	client       HTTPClient
	maxRedirects int
	userAgent    string
	accept       string
}

// DefaultHTTPClient returns a resty-backed client that does not follow redirects.
func DefaultHTTPClient(timeout time.Duration) HTTPClient {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return httpclient.NewRestyClient(timeout, httpclient.WithoutRedirects())
}

// NewFeedFetcher builds a fetcher. A nil client gets DefaultHTTPClient; the
// client must not follow redirects on its own.
func NewFeedFetcher(client HTTPClient, opts FetcherOptions) *FeedFetcher {
	opts = normalizeFetcherOptions(opts)
	if client == nil {
		client = DefaultHTTPClient(opts.Timeout)
	}
	return &FeedFetcher{
		client:       client,
		maxRedirects: opts.MaxRedirects,
		userAgent:    opts.UserAgent,
		accept:       opts.Accept,
	}
}

func normalizeFetcherOptions(opts FetcherOptions) FetcherOptions {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if strings.TrimSpace(opts.Accept) == "" {
		opts.Accept = DefaultAccept
	}
	return opts
}

// Fetch downloads the provider's feed using its header overrides.
func (f *FeedFetcher) Fetch(ctx context.Context, cfg Provider) (string, error) {
	if strings.TrimSpace(cfg.FeedURL) == "" {
		return "", fmt.Errorf("provider %q feed_url is empty", cfg.ID)
	}
	return f.FetchURL(ctx, cfg.FeedURL, Headers(cfg))
}

// FetchURL performs a GET against rawURL and returns the body of the final
// 200 response. Redirects (301, 302, 303, 307, 308) are resolved against the
// current URL and re-issued until the hop limit is exceeded.
func (f *FeedFetcher) FetchURL(ctx context.Context, rawURL string, overrides map[string]string) (string, error) {
	headers := f.requestHeaders(overrides)
	current := rawURL

	for hop := 0; ; hop++ {
		if err := ctx.Err(); err != nil {
			return "", classifyTransportError(current, err)
		}

		resp, err := f.client.Get(ctx, current, headers)
		if err != nil {
			return "", classifyTransportError(current, err)
		}

		status := resp.StatusCode()
		if isRedirect(status) {
			if loc := strings.TrimSpace(resp.Header("Location")); loc != "" {
				if hop >= f.maxRedirects {
					return "", fmt.Errorf("fetch %s: %w", rawURL, ErrTooManyRedirects)
				}
				next, err := resolveLocation(current, loc)
				if err != nil {
					return "", &NetworkError{URL: current, Err: err}
				}
				current = next
				continue
			}
		}

		if status != http.StatusOK {
			return "", &HTTPStatusError{URL: current, StatusCode: status}
		}
		return string(resp.Body()), nil
	}
}

func (f *FeedFetcher) requestHeaders(overrides map[string]string) map[string]string {
	headers := map[string]string{
		"User-Agent": f.userAgent,
		"Accept":     f.accept,
	}
	for k, v := range overrides {
		headers[k] = v
	}
	return headers
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

func resolveLocation(base, location string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", base, err)
	}
	loc, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse redirect location %q: %w", location, err)
	}
	return b.ResolveReference(loc).String(), nil
}
