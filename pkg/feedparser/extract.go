package feedparser

import (
	"regexp"
	"strings"
	"sync"
)

const (
	patternFirstTag = iota
	patternBlock
)

type patternKey struct {
	kind int
	tag  string
}

// patterns caches compiled per-tag expressions; pipelines may parse concurrently.
var patterns sync.Map

var markupPattern = regexp.MustCompile(`<[^>]+>`)

// openTag matches "<tag>" or "<tag attr=...>" but never "<tagx>" or "<tag/>".
func openTag(tag string) string {
	return `<` + regexp.QuoteMeta(tag) + `(?:\s+[^>]*[^>/])?\s*>`
}

func closeTag(tag string) string {
	return `</` + regexp.QuoteMeta(tag) + `\s*>`
}

func tagPattern(kind int, tag string) *regexp.Regexp {
	key := patternKey{kind: kind, tag: strings.ToLower(tag)}
	if re, ok := patterns.Load(key); ok {
		return re.(*regexp.Regexp)
	}

	var expr string
	switch kind {
	case patternFirstTag:
		expr = `(?is)` + openTag(key.tag) + `(.*?)` + closeTag(key.tag)
	default:
		expr = `(?is)` + openTag(key.tag) + `.*?` + closeTag(key.tag)
	}

	re, _ := patterns.LoadOrStore(key, regexp.MustCompile(expr))
	return re.(*regexp.Regexp)
}

// FirstTagContent returns the trimmed inner text of the first <tag>...</tag>
// element in block, or "" when there is none. Matching is case-insensitive
// and ignores attributes on the opening tag.
func FirstTagContent(block, tag string) string {
	if block == "" || tag == "" {
		return ""
	}
	m := tagPattern(patternFirstTag, tag).FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// AllBlocks returns every complete <tag ...>...</tag> element in document
// order, including its inner markup. Unterminated elements are skipped.
func AllBlocks(xml, tag string) []string {
	if xml == "" || tag == "" {
		return nil
	}
	return tagPattern(patternBlock, tag).FindAllString(xml, -1)
}

// CleanText turns raw feed markup into a single line of human readable text.
func CleanText(raw string) string {
	if raw == "" {
		return ""
	}
	s := DecodeEntities(raw)
	s = markupPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
