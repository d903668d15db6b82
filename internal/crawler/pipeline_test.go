package crawler

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-news-digest/pkg/providers"
	"github.com/samvad-hq/samvad-news-digest/pkg/translator"
)

func newTestPipeline(f providers.Fetcher, tr translator.Translator, rec Recorder) *Pipeline {
	return NewPipeline(f, tr, Options{Now: fixedNow}, nil, rec)
}

func TestPipelineKeepsRecentArticles(t *testing.T) {
	f := stubFetcher{bodies: map[string]string{"a": rssFeed(3, hoursOld(1))}}
	res := newTestPipeline(f, nil, nil).Run(context.Background(), source("a", false))

	if res.Failed() {
		t.Fatalf("unexpected error %q", res.Error)
	}
	if len(res.Articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(res.Articles))
	}
	for i, a := range res.Articles {
		if a.Title != fmt.Sprintf("Story %d", i) {
			t.Fatalf("article %d out of order: %q", i, a.Title)
		}
		if a.OriginalTitle != "" {
			t.Fatalf("untranslated source must not set OriginalTitle")
		}
	}
	if res.ID != "a" || res.Name != "A" {
		t.Fatalf("source fields not carried: %#v", res.Source)
	}
}

func TestPipelineDropsOldArticlesWhenSomeAreRecent(t *testing.T) {
	age := func(i int) time.Duration {
		if i%2 == 0 {
			return time.Hour
		}
		return 72 * time.Hour
	}
	f := stubFetcher{bodies: map[string]string{"a": rssFeed(6, age)}}
	res := newTestPipeline(f, nil, nil).Run(context.Background(), source("a", false))

	if len(res.Articles) != 3 {
		t.Fatalf("expected 3 recent articles, got %d", len(res.Articles))
	}
	for _, a := range res.Articles {
		if a.Title == "Story 1" || a.Title == "Story 3" || a.Title == "Story 5" {
			t.Fatalf("old article %q kept", a.Title)
		}
	}
}

func TestPipelineCapsAtMaxArticles(t *testing.T) {
	f := stubFetcher{bodies: map[string]string{"a": rssFeed(40, hoursOld(2))}}
	res := newTestPipeline(f, nil, nil).Run(context.Background(), source("a", false))

	if len(res.Articles) != DefaultMaxArticles {
		t.Fatalf("expected %d articles, got %d", DefaultMaxArticles, len(res.Articles))
	}
	if res.Articles[24].Title != "Story 24" {
		t.Fatalf("expected the first 25 in feed order, last was %q", res.Articles[24].Title)
	}
}

func TestPipelineFallsBackWhenNothingIsRecent(t *testing.T) {
	cases := []struct {
		total int
		want  int
	}{
		{total: 5, want: 5},
		{total: 30, want: DefaultFallbackArticles},
		{total: 0, want: 0},
	}
	for _, tc := range cases {
		f := stubFetcher{bodies: map[string]string{"a": rssFeed(tc.total, hoursOld(96))}}
		res := newTestPipeline(f, nil, nil).Run(context.Background(), source("a", false))
		if res.Failed() {
			t.Fatalf("total=%d: unexpected error %q", tc.total, res.Error)
		}
		if len(res.Articles) != tc.want {
			t.Fatalf("total=%d: expected %d articles, got %d", tc.total, tc.want, len(res.Articles))
		}
	}
}

func TestPipelineHonoursCustomLimits(t *testing.T) {
	f := stubFetcher{bodies: map[string]string{"a": rssFeed(10, hoursOld(5))}}
	p := NewPipeline(f, nil, Options{Now: fixedNow, RecencyWindow: 4 * time.Hour, MaxArticles: 8, FallbackArticles: 3}, nil, nil)

	res := p.Run(context.Background(), source("a", false))
	if len(res.Articles) != 3 {
		t.Fatalf("expected fallback of 3, got %d", len(res.Articles))
	}
}

func TestPipelineTranslatesTitles(t *testing.T) {
	f := stubFetcher{bodies: map[string]string{"d": rssFeed(2, hoursOld(1))}}
	tr := &prefixTranslator{}
	res := newTestPipeline(f, tr, nil).Run(context.Background(), source("d", true))

	if len(res.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(res.Articles))
	}
	for i, a := range res.Articles {
		orig := fmt.Sprintf("Story %d", i)
		if a.Title != "ja:"+orig || a.OriginalTitle != orig {
			t.Fatalf("article %d: title=%q original=%q", i, a.Title, a.OriginalTitle)
		}
	}
	if len(tr.calls) != 2 || tr.calls[0] != "Story 0" || tr.calls[1] != "Story 1" {
		t.Fatalf("expected sequential calls in order, got %v", tr.calls)
	}
}

func TestPipelineKeepsTitleWhenTranslationFails(t *testing.T) {
	f := stubFetcher{bodies: map[string]string{"d": rssFeed(2, hoursOld(1))}}
	tr := &prefixTranslator{fail: map[string]bool{"Story 1": true}}
	rec := &recordingRecorder{}
	res := newTestPipeline(f, tr, rec).Run(context.Background(), source("d", true))

	if res.Failed() {
		t.Fatalf("translation failure must not fail the source: %q", res.Error)
	}
	if res.Articles[0].Title != "ja:Story 0" {
		t.Fatalf("first title not translated: %q", res.Articles[0].Title)
	}
	if res.Articles[1].Title != "Story 1" || res.Articles[1].OriginalTitle != "Story 1" {
		t.Fatalf("failed translation should keep title, got %#v", res.Articles[1])
	}
	if rec.translations["d"] != 1 {
		t.Fatalf("expected one recorded translation failure, got %d", rec.translations["d"])
	}
}

func TestPipelineSkipsTranslatorForUntranslatedSource(t *testing.T) {
	f := stubFetcher{bodies: map[string]string{"a": rssFeed(2, hoursOld(1))}}
	tr := &prefixTranslator{}
	newTestPipeline(f, tr, nil).Run(context.Background(), source("a", false))
	if len(tr.calls) != 0 {
		t.Fatalf("translator called %d times", len(tr.calls))
	}
}

func TestPipelineWithoutTranslatorLeavesOriginalTitleEmpty(t *testing.T) {
	f := stubFetcher{bodies: map[string]string{"d": rssFeed(2, hoursOld(1))}}
	res := newTestPipeline(f, nil, nil).Run(context.Background(), source("d", true))

	if len(res.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(res.Articles))
	}
	for _, a := range res.Articles {
		if a.OriginalTitle != "" {
			t.Fatalf("original title set without translation: %#v", a)
		}
	}
}

func TestPipelineReportsFetchFailure(t *testing.T) {
	fetchErr := &providers.HTTPStatusError{URL: "https://a.example.com/feed", StatusCode: 503}
	f := stubFetcher{errs: map[string]error{"a": fetchErr}}
	rec := &recordingRecorder{}
	res := newTestPipeline(f, nil, rec).Run(context.Background(), source("a", false))

	if res.Error != "HTTP 503" {
		t.Fatalf("expected error message HTTP 503, got %q", res.Error)
	}
	if len(res.Articles) != 0 {
		t.Fatalf("failed source must have no articles")
	}
	if len(rec.observed) != 1 || rec.observed[0].failure != providers.KindHTTPStatus {
		t.Fatalf("unexpected observation %#v", rec.observed)
	}
}

func TestPipelineRecoversPanics(t *testing.T) {
	f := stubFetcher{panics: map[string]bool{"a": true}}
	rec := &recordingRecorder{}
	res := newTestPipeline(f, nil, rec).Run(context.Background(), source("a", false))

	if !res.Failed() || !strings.Contains(res.Error, "boom") {
		t.Fatalf("expected recovered panic in error, got %q", res.Error)
	}
	if len(rec.observed) != 1 || rec.observed[0].failure != providers.KindUnknown {
		t.Fatalf("unexpected observation %#v", rec.observed)
	}
}

func TestPipelineEmptyFeedIsSuccess(t *testing.T) {
	f := stubFetcher{bodies: map[string]string{"a": "<html>not a feed</html>"}}
	res := newTestPipeline(f, nil, nil).Run(context.Background(), source("a", false))
	if res.Failed() || res.Articles == nil || len(res.Articles) != 0 {
		t.Fatalf("expected empty successful result, got %#v", res)
	}
}
