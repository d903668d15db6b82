package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
)

func sampleEvent() Event {
	return NewEvent(domain.SourceResult{
		Source: domain.Source{ID: "designboom", Name: "designboom"},
		Articles: []domain.Article{
			{Title: "翻訳", URL: "https://example.com/1", OriginalTitle: "Translated"},
		},
	}, time.Date(2024, 5, 10, 12, 0, 0, 0, time.FixedZone("JST", 9*3600)))
}
