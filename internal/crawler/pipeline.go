package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
	"github.com/samvad-hq/samvad-news-digest/pkg/feedparser"
	"github.com/samvad-hq/samvad-news-digest/pkg/providers"
	"github.com/samvad-hq/samvad-news-digest/pkg/translator"
)

const (
	DefaultMaxArticles      = 25
	DefaultFallbackArticles = 20
)

// Options tunes article selection. Zero values pick the defaults.
type Options struct {
	RecencyWindow    time.Duration
	MaxArticles      int
	FallbackArticles int
	Now              feedparser.Clock
}

// Pipeline turns one source into its SourceResult.
type Pipeline struct {
	fetcher    providers.Fetcher
	translator translator.Translator
	recorder   Recorder
	log        logger.Logger
	filter     feedparser.RecencyFilter
	now        feedparser.Clock
	max        int
	fallback   int
}

// NewPipeline builds a pipeline. tr, rec and log may be nil.
func NewPipeline(fetcher providers.Fetcher, tr translator.Translator, opts Options, log logger.Logger, rec Recorder) *Pipeline {
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = DefaultMaxArticles
	}
	if opts.FallbackArticles <= 0 {
		opts.FallbackArticles = DefaultFallbackArticles
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Pipeline{
		fetcher:    fetcher,
		translator: tr,
		recorder:   rec,
		log:        log,
		filter:     feedparser.NewRecencyFilter(opts.RecencyWindow, opts.Now),
		now:        opts.Now,
		max:        opts.MaxArticles,
		fallback:   opts.FallbackArticles,
	}
}

// Run processes cfg end to end. Failures, including panics, are reported in
// the result's Error field; Run never fails outward.
func (p *Pipeline) Run(ctx context.Context, cfg providers.Provider) (res domain.SourceResult) {
	started := p.now()
	res = domain.SourceResult{Source: cfg.Source, Articles: []domain.Article{}}

	var runErr error
	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("panic processing source %s: %v", cfg.ID, r)
		}
		if runErr != nil {
			res = domain.SourceResult{Source: cfg.Source, Articles: []domain.Article{}, Error: runErr.Error()}
			p.log.WarnObj("source failed", "source_error", map[string]any{
				"source_id": cfg.ID,
				"kind":      providers.ErrorKind(runErr),
				"error":     runErr.Error(),
			})
		}
		p.recorder.ObserveSource(cfg.ID, len(res.Articles), providers.ErrorKind(runErr), p.now().Sub(started))
	}()

	if p.fetcher == nil {
		runErr = errors.New("pipeline has no fetcher")
		return res
	}

	body, err := p.fetcher.Fetch(ctx, cfg)
	if err != nil {
		runErr = err
		return res
	}

	all := feedparser.Parse(body)
	articles := p.selectArticles(all)
	if cfg.Translate && p.translator != nil {
		articles = p.translate(ctx, cfg, articles)
	}
	res.Articles = articles

	p.log.InfoObj("source processed", "source_result", map[string]any{
		"source_id": cfg.ID,
		"format":    feedparser.Format(body),
		"parsed":    len(all),
		"kept":      len(articles),
	})
	return res
}

// selectArticles keeps the recent subset, or the first fallback articles
// when nothing is recent, capped at max.
func (p *Pipeline) selectArticles(all []domain.Article) []domain.Article {
	selected := p.filter.Recent(all)
	if len(selected) == 0 {
		selected = head(all, p.fallback)
	}
	return head(selected, p.max)
}

func head(articles []domain.Article, n int) []domain.Article {
	if len(articles) > n {
		articles = articles[:n]
	}
	return append([]domain.Article{}, articles...)
}

// translate rewrites titles one at a time. A failed translation keeps the
// original title.
func (p *Pipeline) translate(ctx context.Context, cfg providers.Provider, articles []domain.Article) []domain.Article {
	out := append([]domain.Article(nil), articles...)
	for i, art := range out {
		out[i].OriginalTitle = art.Title
		translated, err := p.translator.Translate(ctx, art.Title)
		if err != nil {
			p.recorder.TranslationFailed(cfg.ID)
			p.log.WarnObj("title translation failed", "translation_error", map[string]any{
				"source_id": cfg.ID,
				"url":       art.URL,
				"error":     err.Error(),
			})
			continue
		}
		out[i].Title = translated
	}
	return out
}
