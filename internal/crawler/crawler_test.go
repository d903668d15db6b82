package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
	"github.com/samvad-hq/samvad-news-digest/pkg/providers"
)

func TestServiceRunRequiresRunnerAndSources(t *testing.T) {
	var nilSvc *Service
	if _, err := nilSvc.Run(context.Background(), []providers.Provider{source("a", false)}); err == nil {
		t.Fatalf("expected error for nil service")
	}
	svc := NewService(NewPipeline(stubFetcher{}, nil, Options{}, nil, nil), 2, nil)
	if _, err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty source list")
	}
}

func TestServiceIsolatesSlowSource(t *testing.T) {
	feed := rssFeed(3, hoursOld(1))
	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feed))
	}))
	defer fast.Close()

	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	srcs := []providers.Provider{source("one", false), source("slow", false), source("two", false)}
	srcs[0].FeedURL = fast.URL
	srcs[1].FeedURL = slow.URL
	srcs[2].FeedURL = fast.URL

	fetcher := providers.NewFeedFetcher(nil, providers.FetcherOptions{Timeout: 100 * time.Millisecond})
	svc := NewService(NewPipeline(fetcher, nil, Options{Now: fixedNow}, nil, nil), 3, nil)

	results, err := svc.Run(context.Background(), srcs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"one", "slow", "two"} {
		if results[i].ID != want {
			t.Fatalf("result %d is %q, want %q", i, results[i].ID, want)
		}
	}
	if results[0].Failed() || len(results[0].Articles) != 3 {
		t.Fatalf("first source: %#v", results[0])
	}
	if !results[1].Failed() || len(results[1].Articles) != 0 || !strings.Contains(results[1].Error, "timeout") {
		t.Fatalf("slow source should time out, got %#v", results[1])
	}
	if results[2].Failed() || len(results[2].Articles) != 3 {
		t.Fatalf("third source: %#v", results[2])
	}
	if got := domain.CountSucceeded(results); got != 2 {
		t.Fatalf("expected 2 succeeded, got %d", got)
	}
}

// gatedRunner tracks concurrency and waits a little per source.
type gatedRunner struct {
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (g *gatedRunner) Run(_ context.Context, cfg providers.Provider) domain.SourceResult {
	n := g.active.Add(1)
	for {
		seen := g.maxSeen.Load()
		if n <= seen || g.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	g.active.Add(-1)
	return domain.SourceResult{Source: cfg.Source, Articles: []domain.Article{}}
}

func TestServiceBoundsParallelismAndKeepsOrder(t *testing.T) {
	srcs := make([]providers.Provider, 0, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		srcs = append(srcs, source(id, false))
	}
	for _, limit := range []int{1, 2} {
		runner := &gatedRunner{}
		results, err := NewService(runner, limit, nil).Run(context.Background(), srcs)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if got := int(runner.maxSeen.Load()); got > limit {
			t.Fatalf("limit %d exceeded: %d concurrent", limit, got)
		}
		for i := range srcs {
			if results[i].ID != srcs[i].ID {
				t.Fatalf("limit %d: result %d is %q", limit, i, results[i].ID)
			}
		}
	}
}

func TestServiceReportsCancelledSources(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &gatedRunner{}
	srcs := []providers.Provider{source("a", false), source("b", false)}
	results, err := NewService(runner, 1, nil).Run(ctx, srcs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range results {
		if !r.Failed() || !strings.Contains(r.Error, "context canceled") {
			t.Fatalf("expected cancellation error, got %#v", r)
		}
	}
	if runner.maxSeen.Load() != 0 {
		t.Fatalf("runner should not be invoked after cancellation")
	}
}
