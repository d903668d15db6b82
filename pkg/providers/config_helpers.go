package providers

import "strings"

// Per-source config keys that override request headers.
const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptKey         = "accept"
	ConfigAcceptLanguageKey = "accept_language"
	ConfigCacheControlKey   = "cache_control"
)

const (
	DefaultUserAgent = "samvad-news-digest/1.0"
	DefaultAccept    = "application/rss+xml, application/atom+xml, text/xml, */*"
)

var headerKeys = [...]struct{ key, header string }{
	{ConfigUserAgentKey, "User-Agent"},
	{ConfigAcceptKey, "Accept"},
	{ConfigAcceptLanguageKey, "Accept-Language"},
	{ConfigCacheControlKey, "Cache-Control"},
}

// ConfigString looks up key in the source's free-form config. Missing,
// non-string and blank values yield fallback.
func ConfigString(cfg Provider, key, fallback string) string {
	val, ok := cfg.Config[key].(string)
	if !ok {
		return fallback
	}
	if val = strings.TrimSpace(val); val == "" {
		return fallback
	}
	return val
}

// Headers returns the header overrides configured for a source.
func Headers(cfg Provider) map[string]string {
	out := make(map[string]string, len(headerKeys))
	for _, h := range headerKeys {
		if v := ConfigString(cfg, h.key, ""); v != "" {
			out[h.header] = v
		}
	}
	return out
}
