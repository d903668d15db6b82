package feedparser

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/samvad-hq/samvad-news-digest/internal/domain"
)

// DefaultRecencyWindow is the age under which an article counts as recent.
const DefaultRecencyWindow = 48 * time.Hour

// Layouts seen in RSS pubDate, dc:date and Atom published/updated values.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	time.ANSIC,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 02 Jan 2006 15:04 -0700",
	"02 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Offsets for zone abbreviations time.Parse cannot resolve on its own.
var zoneOffsets = map[string]int{
	"EST": -5, "EDT": -4,
	"CST": -6, "CDT": -5,
	"MST": -7, "MDT": -6,
	"PST": -8, "PDT": -7,
	"AKST": -9, "AKDT": -8,
	"HST": -10,
	"BST": 1, "CET": 1, "CEST": 2, "EET": 2, "EEST": 3,
	"JST": 9, "KST": 9,
}

// Clock returns the current wall-clock time.
type Clock func() time.Time

// RecencyFilter classifies article dates against a window ending now.
type RecencyFilter struct {
	window time.Duration
	now    Clock
}

// NewRecencyFilter builds a filter; a nil clock means time.Now and a
// non-positive window means DefaultRecencyWindow.
func NewRecencyFilter(window time.Duration, now Clock) RecencyFilter {
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	if now == nil {
		now = time.Now
	}
	return RecencyFilter{window: window, now: now}
}

// Window returns the configured recency window.
func (f RecencyFilter) Window() time.Duration {
	return f.window
}

// IsRecent reports whether date falls inside the window. Missing or
// unparseable dates count as recent, as do dates in the future.
func (f RecencyFilter) IsRecent(date string) bool {
	t, ok := ParseDate(date)
	if !ok {
		return true
	}
	now := f.now
	if now == nil {
		now = time.Now
	}
	return now().Sub(t) < f.window
}

// Recent returns the articles whose dates pass IsRecent, in input order.
func (f RecencyFilter) Recent(articles []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if f.IsRecent(a.Date) {
			out = append(out, a)
		}
	}
	return out
}

// IsRecent reports whether date lies within window of the current time
// using the same permissive rules as RecencyFilter.IsRecent.
func IsRecent(date string, window time.Duration) bool {
	return RecencyFilter{window: window, now: time.Now}.IsRecent(date)
}

// ParseDate parses a feed date string. ok is false for empty or
// unrecognised input.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return resolveZone(parsed), true
		}
	}
	return parseLoose(s)
}

// resolveZone applies the offset of a zone abbreviation that time.Parse
// recorded with a zero offset. Unknown abbreviations stay at UTC.
func resolveZone(t time.Time) time.Time {
	name, offset := t.Zone()
	if offset != 0 {
		return t
	}
	hours, ok := zoneOffsets[name]
	if !ok {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.FixedZone(name, hours*3600))
}

// parseLoose falls back to dateparse for the long tail of formats.
func parseLoose(s string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return resolveZone(parsed), true
}
