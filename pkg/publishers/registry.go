package publishers

import (
	"context"
	"fmt"
	"strings"

	"github.com/samvad-hq/samvad-news-digest/internal/logger"
)

// Builder constructs a sink from its config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error)

// Registry resolves publisher types to builders. Register all types before
// sharing a Registry across goroutines.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry starts a registry from builders keyed by type.
func NewRegistry(builders map[string]Builder) *Registry {
	r := &Registry{builders: make(map[string]Builder, len(builders))}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// DefaultRegistry knows the http, sqs, sns and gcp_pubsub sinks.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]Builder{
		TypeHTTP:      newHTTPPublisher,
		TypeSQS:       newSQSPublisher,
		TypeSNS:       newSNSPublisher,
		TypeGCPPubSub: newGCPPubSubPublisher,
	})
}

// Register adds or replaces the builder for typ. Blank types and nil
// builders are ignored.
func (r *Registry) Register(typ string, b Builder) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" || b == nil {
		return
	}
	r.builders[typ] = b
}

// Build constructs the sink for cfg.
func (r *Registry) Build(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	typ := strings.ToLower(cfg.Type)
	b, ok := r.builders[typ]
	if !ok {
		return nil, fmt.Errorf("publisher %q: no builder for type %q", cfg.ID, cfg.Type)
	}
	return b(ctx, cfg, ensureLogger(log))
}

// BuildAll constructs a sink per entry in order. When one fails the sinks
// already built are closed and no publishers are returned.
func BuildAll(ctx context.Context, reg *Registry, cfgs []PublisherConfig, log logger.Logger) ([]Publisher, error) {
	if reg == nil {
		return nil, nil
	}
	var built []Publisher
	for _, cfg := range cfgs {
		p, err := reg.Build(ctx, cfg, log)
		if err != nil {
			_ = NewFanout(built).Close()
			return nil, err
		}
		built = append(built, p)
	}
	return built, nil
}

func ensureLogger(log logger.Logger) logger.Logger {
	if log == nil {
		return &logger.NopLogger{}
	}
	return log
}
