package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
	"github.com/samvad-hq/samvad-news-digest/pkg/providers"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// rssFeed renders n items, item i dated age(i) before testNow.
func rssFeed(n int, age func(i int) time.Duration) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "<item><title>Story %d</title><link>https://example.com/%d</link><pubDate>%s</pubDate></item>",
			i, i, testNow.Add(-age(i)).Format(time.RFC1123Z))
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func hoursOld(h int) func(int) time.Duration {
	return func(int) time.Duration { return time.Duration(h) * time.Hour }
}

func source(id string, translate bool) providers.Provider {
	return providers.Provider{Source: domain.Source{
		ID:        id,
		Name:      strings.ToUpper(id),
		FeedURL:   "https://" + id + ".example.com/feed",
		Translate: translate,
	}}
}

// stubFetcher serves bodies or errors keyed by source id.
type stubFetcher struct {
	bodies map[string]string
	errs   map[string]error
	panics map[string]bool
}

func (s stubFetcher) Fetch(_ context.Context, cfg providers.Provider) (string, error) {
	if s.panics[cfg.ID] {
		panic("boom")
	}
	if err := s.errs[cfg.ID]; err != nil {
		return "", err
	}
	body, ok := s.bodies[cfg.ID]
	if !ok {
		return "", errors.New("unknown source")
	}
	return body, nil
}

// prefixTranslator prefixes titles and fails for titles listed in fail.
type prefixTranslator struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (p *prefixTranslator) Translate(_ context.Context, text string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, text)
	if p.fail[text] {
		return "", errors.New("translate unavailable")
	}
	return "ja:" + text, nil
}

type observation struct {
	sourceID string
	articles int
	failure  string
}

type recordingRecorder struct {
	mu           sync.Mutex
	observed     []observation
	translations map[string]int
}

func (r *recordingRecorder) ObserveSource(sourceID string, articles int, failure string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed = append(r.observed, observation{sourceID: sourceID, articles: articles, failure: failure})
}

func (r *recordingRecorder) TranslationFailed(sourceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.translations == nil {
		r.translations = map[string]int{}
	}
	r.translations[sourceID]++
}
