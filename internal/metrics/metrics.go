// Package metrics collects per-run Prometheus metrics for the digest job and
// optionally pushes them to a Pushgateway when the run ends.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder owns a private registry for one digest run.
type Recorder struct {
	registry *prometheus.Registry

	SourcesTotal        prometheus.Counter
	SourcesFailed       *prometheus.CounterVec
	ArticlesRendered    *prometheus.GaugeVec
	FetchDuration       *prometheus.HistogramVec
	TranslationFailures *prometheus.CounterVec
	PublishFailures     prometheus.Counter
	LastRunTimestamp    prometheus.Gauge
}

// NewRecorder registers the digest metrics on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		SourcesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "digest_sources_total",
			Help: "Number of sources processed in the run",
		}),
		SourcesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digest_sources_failed_total",
			Help: "Number of sources that failed, by error kind",
		}, []string{"kind"}),
		ArticlesRendered: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "digest_articles",
			Help: "Articles kept for the digest, by source",
		}, []string{"source"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "digest_source_duration_seconds",
			Help:    "Time spent processing one source",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"source"}),
		TranslationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digest_translation_failures_total",
			Help: "Titles left untranslated after a translator error",
		}, []string{"source"}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "digest_publish_failures_total",
			Help: "Digest events that at least one publisher rejected",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "digest_last_run_timestamp_seconds",
			Help: "Unix time the digest was built",
		}),
	}
	r.registry.MustRegister(
		r.SourcesTotal,
		r.SourcesFailed,
		r.ArticlesRendered,
		r.FetchDuration,
		r.TranslationFailures,
		r.PublishFailures,
		r.LastRunTimestamp,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveSource records the outcome of one source pipeline.
func (r *Recorder) ObserveSource(sourceID string, articles int, failure string, elapsed time.Duration) {
	r.SourcesTotal.Inc()
	if failure != "" {
		r.SourcesFailed.WithLabelValues(failure).Inc()
	}
	r.ArticlesRendered.WithLabelValues(sourceID).Set(float64(articles))
	r.FetchDuration.WithLabelValues(sourceID).Observe(elapsed.Seconds())
}

// TranslationFailed counts one title that kept its original text.
func (r *Recorder) TranslationFailed(sourceID string) {
	r.TranslationFailures.WithLabelValues(sourceID).Inc()
}

// PublishFailed counts one event that was not delivered everywhere.
func (r *Recorder) PublishFailed() {
	r.PublishFailures.Inc()
}

// MarkBuilt stamps the digest build time.
func (r *Recorder) MarkBuilt(at time.Time) {
	r.LastRunTimestamp.Set(float64(at.Unix()))
}

// Push sends the registry to a Pushgateway under job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if job == "" {
		return fmt.Errorf("metrics job name is required for push")
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
