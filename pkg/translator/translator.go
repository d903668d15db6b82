// Package translator translates short texts such as article titles.
package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
	"golang.org/x/time/rate"
)

// ErrTranslation is wrapped by every failure returned from a Translator.
var ErrTranslation = errors.New("translation failed")

const (
	DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"
	DefaultFrom     = "en"
	DefaultTo       = "ja"
	DefaultTimeout  = 10 * time.Second

	DefaultUserAgent = "Mozilla/5.0"
)

// Translator turns text into the target language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Options configures GoogleClient.
type Options struct {
	Endpoint          string
	From              string
	To                string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// GoogleClient calls the public translate_a/single endpoint.
type GoogleClient struct {
	client   httpclient.Client
	endpoint string
	from     string
	to       string
	headers  map[string]string
	limiter  *rate.Limiter
}

// NewGoogleClient builds a client. A nil http client gets a resty client
// bounded by opts.Timeout. RequestsPerSecond <= 0 disables pacing.
func NewGoogleClient(client httpclient.Client, opts Options) *GoogleClient {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.From == "" {
		opts.From = DefaultFrom
	}
	if opts.To == "" {
		opts.To = DefaultTo
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	// Injected clients carry the User-Agent per request; the default client
	// sets it once.
	var headers map[string]string
	if client == nil {
		client = httpclient.NewRestyClient(opts.Timeout, httpclient.WithUserAgent(opts.UserAgent))
	} else {
		headers = map[string]string{"User-Agent": opts.UserAgent}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &GoogleClient{
		client:   client,
		endpoint: opts.Endpoint,
		from:     opts.From,
		to:       opts.To,
		headers:  headers,
		limiter:  limiter,
	}
}

// Translate returns the translated text. Blank input is returned as is.
func (g *GoogleClient) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limit wait: %v", ErrTranslation, err)
		}
	}

	resp, err := g.client.Get(ctx, g.requestURL(text), g.headers)
	if err != nil {
		return "", fmt.Errorf("%w: request: %v", ErrTranslation, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrTranslation, resp.StatusCode())
	}

	translated, err := decodeResponse(resp.Body())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	return translated, nil
}

func (g *GoogleClient) requestURL(text string) string {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", g.from)
	q.Set("tl", g.to)
	q.Set("dt", "t")
	q.Set("q", text)
	return g.endpoint + "?" + q.Encode()
}

// decodeResponse joins the translated segments of a response shaped like
// [[["訳文","source",null,null,10], ...], null, "en", ...].
func decodeResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", errors.New("empty response")
	}

	var segments [][]any
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("decode segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("response contained no translated text")
	}
	return out, nil
}
