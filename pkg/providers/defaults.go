package providers

import "github.com/samvad-hq/samvad-news-digest/internal/domain"

// DefaultProviders returns the built-in source table in display order.
func DefaultProviders() []Provider {
	sources := []domain.Source{
		{ID: "designboom", Name: "designboom", SiteURL: "https://www.designboom.com/", FeedURL: "https://www.designboom.com/feed/", Translate: true},
		{ID: "nhk", Name: "NHKニュース", SiteURL: "https://www3.nhk.or.jp/news/", FeedURL: "https://www3.nhk.or.jp/rss/news/cat0.xml"},
		{ID: "itmedia", Name: "ITmedia", SiteURL: "https://www.itmedia.co.jp/", FeedURL: "https://rss.itmedia.co.jp/rss/2.0/itmedia_all.xml"},
		{ID: "gigazine", Name: "GIGAZINE", SiteURL: "https://gigazine.net/", FeedURL: "https://gigazine.net/news/rss_2.0/"},
		{ID: "cnet", Name: "CNET Japan", SiteURL: "https://japan.cnet.com/", FeedURL: "https://japan.cnet.com/rss/index.rdf"},
		{ID: "impress", Name: "Impress Watch", SiteURL: "https://www.watch.impress.co.jp/", FeedURL: "https://www.watch.impress.co.jp/data/rss/1.0/ipw/feed.rdf"},
		{ID: "zenn", Name: "Zenn", SiteURL: "https://zenn.dev/", FeedURL: "https://zenn.dev/feed"},
		{ID: "hatena", Name: "はてなブックマーク IT", SiteURL: "https://b.hatena.ne.jp/hotentry/it", FeedURL: "https://b.hatena.ne.jp/hotentry/it.rss"},
		{ID: "publickey", Name: "Publickey", SiteURL: "https://www.publickey1.jp/", FeedURL: "https://www.publickey1.jp/atom.xml"},
		{ID: "google_trends", Name: "Google Trends", SiteURL: "https://trends.google.co.jp/trending?geo=JP", FeedURL: "https://trends.google.co.jp/trending/rss?geo=JP"},
	}

	out := make([]Provider, 0, len(sources))
	for _, s := range sources {
		out = append(out, Provider{Source: s})
	}
	return out
}
