package feedparser

import (
	"regexp"
	"strings"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
)

// Feed formats reported by Format.
const (
	FormatRSS     = "rss"
	FormatAtom    = "atom"
	FormatUnknown = "unknown"
)

// Atom link alternatives, tried in order; the first match wins.
var atomLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<link\s[^>]*?\brel\s*=\s*["']alternate["'][^>]*?\bhref\s*=\s*["']([^"']*)["'][^>]*>`),
	regexp.MustCompile(`(?is)<link\s[^>]*?\bhref\s*=\s*["']([^"']*)["'][^>]*?\brel\s*=\s*["']alternate["'][^>]*>`),
	regexp.MustCompile(`(?is)<link\s[^>]*?\bhref\s*=\s*["']([^"']*)["'][^>]*>`),
}

// Parse extracts articles from an RSS or Atom document. RSS <item> blocks take
// precedence; Atom <entry> blocks are only considered when no item exists.
// Entries without a title or link are dropped. A document matching neither
// format yields an empty slice.
func Parse(xml string) []domain.Article {
	if items := AllBlocks(xml, "item"); len(items) > 0 {
		return collect(items, parseItem)
	}
	if entries := AllBlocks(xml, "entry"); len(entries) > 0 {
		return collect(entries, parseEntry)
	}
	return []domain.Article{}
}

// Format reports which structure Parse would use for xml.
func Format(xml string) string {
	switch {
	case len(AllBlocks(xml, "item")) > 0:
		return FormatRSS
	case len(AllBlocks(xml, "entry")) > 0:
		return FormatAtom
	default:
		return FormatUnknown
	}
}

func collect(blocks []string, parse func(string) domain.Article) []domain.Article {
	articles := make([]domain.Article, 0, len(blocks))
	for _, b := range blocks {
		art := parse(b)
		if art.Title == "" || art.URL == "" {
			continue
		}
		articles = append(articles, art)
	}
	return articles
}

func parseItem(block string) domain.Article {
	rawLink := strings.TrimSpace(unwrapCDATA(FirstTagContent(block, "link")))
	return domain.Article{
		Title: CleanText(FirstTagContent(block, "title")),
		URL:   CleanText(firstLine(rawLink)),
		Date:  CleanText(firstNonEmpty(FirstTagContent(block, "pubDate"), FirstTagContent(block, "dc:date"))),
	}
}

func parseEntry(block string) domain.Article {
	return domain.Article{
		Title: CleanText(FirstTagContent(block, "title")),
		URL:   atomLink(block),
		Date:  CleanText(firstNonEmpty(FirstTagContent(block, "published"), FirstTagContent(block, "updated"))),
	}
}

func atomLink(block string) string {
	for _, re := range atomLinkPatterns {
		if m := re.FindStringSubmatch(block); m != nil {
			return strings.TrimSpace(DecodeEntities(m[1]))
		}
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
