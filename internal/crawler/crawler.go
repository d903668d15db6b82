package crawler

import (
	"context"
	"fmt"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
	"github.com/samvad-hq/samvad-news-digest/pkg/providers"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds concurrent source pipelines.
const DefaultParallelism = 4

// SourceRunner processes a single source.
type SourceRunner interface {
	Run(ctx context.Context, cfg providers.Provider) domain.SourceResult
}

// Service coordinates one digest run across all sources.
type Service struct {
	runner      SourceRunner
	parallelism int
	log         logger.Logger
}

// NewService wires a run coordinator around runner.
func NewService(runner SourceRunner, parallelism int, log logger.Logger) *Service {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{runner: runner, parallelism: parallelism, log: log}
}

// Run executes every source and returns results in source order. Source
// failures live inside the results; the error covers only a misconfigured
// service or an empty source list.
func (s *Service) Run(ctx context.Context, cfgs []providers.Provider) ([]domain.SourceResult, error) {
	if s == nil || s.runner == nil {
		return nil, fmt.Errorf("crawler service is not initialized")
	}
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no sources configured for the digest")
	}

	results := make([]domain.SourceResult, len(cfgs))
	g := new(errgroup.Group)
	g.SetLimit(s.parallelism)

	for i, cfg := range cfgs {
		if err := ctx.Err(); err != nil {
			results[i] = cancelledResult(cfg, err)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = cancelledResult(cfg, err)
				return nil
			}
			results[i] = s.runner.Run(ctx, cfg)
			return nil
		})
	}
	_ = g.Wait()

	s.log.InfoObj("digest run completed", "run_summary", map[string]any{
		"sources":   len(results),
		"succeeded": domain.CountSucceeded(results),
		"articles":  domain.CountArticles(results),
	})
	return results, nil
}

func cancelledResult(cfg providers.Provider, err error) domain.SourceResult {
	return domain.SourceResult{
		Source:   cfg.Source,
		Articles: []domain.Article{},
		Error:    fmt.Sprintf("source %s not processed: %v", cfg.ID, err),
	}
}
