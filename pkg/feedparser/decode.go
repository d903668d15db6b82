// Package feedparser extracts articles from RSS 2.0, RSS 1.0 (RDF) and Atom
// documents with a relaxed, non-validating text matcher. Real-world feeds are
// frequently malformed, so nothing here ever returns an error.
package feedparser

import (
	"regexp"
	"strconv"
	"unicode/utf8"
)

var (
	entityRefPattern = regexp.MustCompile(`&(?:amp|lt|gt|quot|apos|#39|#[xX][0-9a-fA-F]+|#[0-9]+);`)
	cdataPattern     = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
)

var namedEntities = map[string]string{
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": `"`,
	"&apos;": "'",
	"&#39;":  "'",
}

// DecodeEntities replaces the standard XML entities and numeric character
// references with their characters and unwraps CDATA sections. References
// that do not resolve to a valid code point are left untouched.
func DecodeEntities(s string) string {
	if s == "" {
		return s
	}
	// Decoded text is never re-scanned for CDATA.
	s = unwrapCDATA(s)
	return entityRefPattern.ReplaceAllStringFunc(s, decodeRef)
}

func decodeRef(ref string) string {
	if v, ok := namedEntities[ref]; ok {
		return v
	}

	// ref is "&#...;" here.
	digits, base := ref[2:len(ref)-1], 10
	if digits[0] == 'x' || digits[0] == 'X' {
		digits, base = digits[1:], 16
	}

	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil || n == 0 {
		return ref
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return ref
	}
	return string(r)
}

func unwrapCDATA(s string) string {
	return cdataPattern.ReplaceAllString(s, "$1")
}
