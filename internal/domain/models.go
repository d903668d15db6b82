package domain

// Domain contains core models shared by the digest pipeline.

// Source is one configured news feed origin. It is defined at process start
// and never mutated afterwards.
type Source struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	SiteURL   string `json:"site_url" yaml:"site_url"`
	FeedURL   string `json:"feed_url" yaml:"feed_url"`
	Translate bool   `json:"translate" yaml:"translate"`
}

// Article is one normalized feed entry. Date keeps the raw feed value.
// OriginalTitle is set only when the title went through translation.
type Article struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Date          string `json:"date,omitempty"`
	OriginalTitle string `json:"original_title,omitempty"`
}

// SourceResult is the outcome of processing one Source during a run.
// Error is empty on success; on failure Articles is empty.
type SourceResult struct {
	Source
	Articles []Article `json:"articles"`
	Error    string    `json:"error,omitempty"`
}

// Failed reports whether the source could not be processed.
func (r SourceResult) Failed() bool {
	return r.Error != ""
}

// CountArticles returns the number of articles across all results.
func CountArticles(results []SourceResult) int {
	total := 0
	for _, r := range results {
		total += len(r.Articles)
	}
	return total
}

// CountSucceeded returns the number of results without an error.
func CountSucceeded(results []SourceResult) int {
	ok := 0
	for _, r := range results {
		if !r.Failed() {
			ok++
		}
	}
	return ok
}
