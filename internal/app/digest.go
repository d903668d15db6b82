package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-news-digest/internal/config"
	"github.com/samvad-hq/samvad-news-digest/internal/crawler"
	"github.com/samvad-hq/samvad-news-digest/internal/domain"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
	"github.com/samvad-hq/samvad-news-digest/internal/metrics"
	"github.com/samvad-hq/samvad-news-digest/internal/render"
	"github.com/samvad-hq/samvad-news-digest/pkg/providers"
	"github.com/samvad-hq/samvad-news-digest/pkg/publishers"
	"github.com/samvad-hq/samvad-news-digest/pkg/translator"
)

// Digest is one batch run: fetch every source, render the page, publish
// per-source events and push metrics.
type Digest struct {
	cfg      *config.Config
	sources  []providers.Provider
	service  *crawler.Service
	renderer *render.Renderer
	fanout   *publishers.Fanout
	recorder *metrics.Recorder
	log      logger.Logger
	now      func() time.Time
}

// Summary describes a finished run.
type Summary struct {
	Path      string
	Sources   int
	Succeeded int
	Articles  int
	BuiltAt   time.Time
}

// NewDigest wires a run from configuration.
func NewDigest(ctx context.Context, cfg *config.Config, log logger.Logger) (*Digest, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	sourceReg, err := loadSources(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}
	sources := sourceReg.All()
	ids := make([]string, 0, len(sources))
	for _, s := range sources {
		ids = append(ids, s.ID)
	}
	log.InfoObj("sources loaded", "sources_meta", map[string]any{
		"count": len(ids),
		"ids":   ids,
		"file":  cfg.SourcesFile,
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder()
	fetcher := providers.NewFeedFetcher(nil, providers.FetcherOptions{
		Timeout:      cfg.FetchTimeout,
		MaxRedirects: cfg.FetchMaxRedirects,
		UserAgent:    cfg.UserAgent,
	})
	pipeline := crawler.NewPipeline(fetcher, newTranslator(cfg), crawler.Options{
		RecencyWindow:    cfg.RecencyWindow,
		MaxArticles:      cfg.MaxArticles,
		FallbackArticles: cfg.FallbackArticles,
	}, log, recorder)

	return &Digest{
		cfg:      cfg,
		sources:  sources,
		service:  crawler.NewService(pipeline, cfg.FetchParallelism, log),
		renderer: render.NewRenderer(render.Options{Location: cfg.Location}),
		fanout:   fanout,
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}, nil
}

func loadSources(path string) (*providers.Registry, error) {
	if path == "" {
		return providers.DefaultRegistry(), nil
	}
	reg, err := providers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	return reg, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}
	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// newTranslator returns nil when translation is disabled so the pipeline
// leaves titles and OriginalTitle untouched.
func newTranslator(cfg *config.Config) translator.Translator {
	if !cfg.TranslateEnabled {
		return nil
	}
	return translator.NewGoogleClient(nil, translator.Options{
		Endpoint:          cfg.TranslateEndpoint,
		From:              cfg.TranslateFrom,
		To:                cfg.TranslateTo,
		Timeout:           cfg.TranslateTimeout,
		RequestsPerSecond: cfg.TranslateRPS,
	})
}

// Run executes the digest once. Only orchestration failures are returned;
// source, publish and metrics push failures are logged.
func (d *Digest) Run(ctx context.Context) (Summary, error) {
	if d == nil || d.service == nil {
		return Summary{}, fmt.Errorf("digest is not initialized")
	}

	start := d.now()
	results, err := d.service.Run(ctx, d.sources)
	if err != nil {
		return Summary{}, fmt.Errorf("run sources: %w", err)
	}

	builtAt := d.now()
	page, err := d.renderer.Render(results, builtAt)
	if err != nil {
		return Summary{}, err
	}
	path, err := render.WriteFile(d.cfg.OutputDir, d.cfg.OutputFile, page)
	if err != nil {
		return Summary{}, err
	}
	d.recorder.MarkBuilt(builtAt)

	d.publish(ctx, results, builtAt)
	d.pushMetrics(ctx)

	summary := Summary{
		Path:      path,
		Sources:   len(results),
		Succeeded: domain.CountSucceeded(results),
		Articles:  domain.CountArticles(results),
		BuiltAt:   builtAt,
	}
	d.log.InfoObj("digest written", "digest_summary", map[string]any{
		"path":       summary.Path,
		"articles":   summary.Articles,
		"sources_ok": fmt.Sprintf("%d/%d", summary.Succeeded, summary.Sources),
		"elapsed_ms": d.now().Sub(start).Milliseconds(),
	})
	return summary, nil
}

func (d *Digest) publish(ctx context.Context, results []domain.SourceResult, builtAt time.Time) {
	if d.fanout.Size() == 0 {
		return
	}
	delivered := 0
	for _, evt := range publishers.EventsFor(results, builtAt) {
		n, err := d.fanout.Publish(ctx, evt)
		delivered += n
		if err != nil {
			d.recorder.PublishFailed()
			d.log.WarnObj("digest event not delivered everywhere", "publish_error", map[string]any{
				"source_id": evt.SourceID,
				"error":     err.Error(),
			})
		}
	}
	d.log.InfoObj("digest events published", "publish_meta", map[string]any{
		"publishers": d.fanout.Size(),
		"delivered":  delivered,
	})
}

func (d *Digest) pushMetrics(ctx context.Context) {
	if d.cfg.MetricsPushgatewayURL == "" {
		return
	}
	if err := d.recorder.Push(ctx, d.cfg.MetricsPushgatewayURL, d.cfg.MetricsJob); err != nil {
		d.log.WarnObj("metrics push failed", "metrics_error", map[string]any{
			"url":   d.cfg.MetricsPushgatewayURL,
			"error": err.Error(),
		})
	}
}

// Metrics returns the run's metric recorder.
func (d *Digest) Metrics() *metrics.Recorder {
	return d.recorder
}

// Close releases publisher connections.
func (d *Digest) Close() error {
	if d == nil {
		return nil
	}
	return d.fanout.Close()
}
