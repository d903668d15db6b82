package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
)

const (
	headerSourceID = "X-Digest-Source"
	headerStatus   = "X-Digest-Status"

	maxErrorBody = 512
)

// httpPublisher delivers each event as a JSON request to a webhook.
type httpPublisher struct {
	id     string
	cfg    HTTPPublisherConfig
	client *resty.Client
	log    logger.Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q: http block missing", cfg.ID)
	}
	hc := cfg.HTTP.normalize()
	client := httpclient.NewRestyHTTPClient(time.Duration(hc.TimeoutSeconds)*time.Second).
		SetHeaders(hc.Headers).
		SetHeader("Content-Type", "application/json")
	return &httpPublisher{id: cfg.ID, cfg: hc, client: client, log: ensureLogger(log)}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	attrs := evt.attributes()
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader(headerSourceID, attrs["source_id"]).
		SetHeader(headerStatus, attrs["status"]).
		SetBody(evt).
		Execute(h.cfg.Method, h.cfg.URL)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", h.id, err)
	}
	if resp.IsError() {
		body := resp.Body()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return fmt.Errorf("webhook %s: status %d: %s", h.id, resp.StatusCode(), strings.TrimSpace(string(body)))
	}
	h.log.DebugObj("webhook accepted event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"source_id":    evt.SourceID,
		"status":       resp.StatusCode(),
	})
	return nil
}
