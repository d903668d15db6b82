// Package render turns a finished run into the static HTML digest page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
)

const (
	DefaultTitle    = "samvad news"
	DefaultVersion  = "1.0"
	DefaultFileName = "index.html"

	googleCachePrefix = "https://www.google.co.jp/search?q=cache:"
	waybackPrefix     = "https://web.archive.org/web/*/"
)

//go:embed templates/digest.html.tmpl
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/digest.html.tmpl"))

// Options configures page labels and the time zone of displayed dates.
type Options struct {
	Title    string
	Version  string
	Location *time.Location
}

// Renderer renders digest pages.
type Renderer struct {
	title   string
	version string
	loc     *time.Location
}

// NewRenderer applies defaults; a nil Location means UTC.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{title: opts.Title, version: opts.Version, loc: opts.Location}
	if r.title == "" {
		r.title = DefaultTitle
	}
	if r.version == "" {
		r.version = DefaultVersion
	}
	if r.loc == nil {
		r.loc = time.UTC
	}
	return r
}

type pageData struct {
	Title   string
	Version string
	Date    string
	Time    string
	Total   int
	Sources []sectionData
}

type sectionData struct {
	ID       string
	Name     string
	SiteURL  string
	FeedURL  string
	Error    string
	Articles []rowData
}

type rowData struct {
	Title         string
	URL           string
	OriginalTitle string
	CacheURL      string
	ArchiveURL    string
}

// Render produces the page for results in their given order.
func (r *Renderer) Render(results []domain.SourceResult, builtAt time.Time) ([]byte, error) {
	local := builtAt.In(r.loc)
	data := pageData{
		Title:   r.title,
		Version: r.version,
		Date:    local.Format("2006/01/02"),
		Time:    local.Format("2006/01/02 15:04"),
		Total:   domain.CountArticles(results),
		Sources: make([]sectionData, 0, len(results)),
	}
	for _, res := range results {
		data.Sources = append(data.Sources, section(res))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render digest: %w", err)
	}
	return buf.Bytes(), nil
}

func section(res domain.SourceResult) sectionData {
	s := sectionData{
		ID:      res.ID,
		Name:    res.Name,
		SiteURL: res.SiteURL,
		FeedURL: res.FeedURL,
		Error:   res.Error,
	}
	if res.Failed() {
		return s
	}
	for _, a := range res.Articles {
		s.Articles = append(s.Articles, rowData{
			Title:         a.Title,
			URL:           a.URL,
			OriginalTitle: a.OriginalTitle,
			CacheURL:      googleCachePrefix + a.URL,
			ArchiveURL:    waybackPrefix + a.URL,
		})
	}
	return s
}

// WriteFile writes page to dir/name, creating dir as needed, and returns the path.
func WriteFile(dir, name string, page []byte) (string, error) {
	if name == "" {
		name = DefaultFileName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	return path, nil
}
