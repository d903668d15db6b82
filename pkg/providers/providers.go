// Package providers holds the news source table and the feed fetcher.
package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
	"gopkg.in/yaml.v3"
)

// Provider is one source entry. Config carries optional per-source request
// header overrides (see Headers).
type Provider struct {
	domain.Source `yaml:",inline"`
	Config        map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

func (p Provider) normalize() Provider {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.SiteURL = strings.TrimSpace(p.SiteURL)
	p.FeedURL = strings.TrimSpace(p.FeedURL)
	if p.Name == "" {
		p.Name = p.ID
	}
	return p
}

func (p Provider) validate() error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.FeedURL == "" {
		return fmt.Errorf("source %q: feed_url is required", p.ID)
	}
	u, err := url.Parse(p.FeedURL)
	if err != nil {
		return fmt.Errorf("source %q: feed_url: %w", p.ID, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("source %q: feed_url scheme %q is not http or https", p.ID, u.Scheme)
	}
	return nil
}

// Registry is the validated source list in configured order. It is
// read-only after construction.
type Registry struct {
	entries []Provider
	byID    map[string]int
}

// NewRegistry normalizes and validates list. At least one source is required.
func NewRegistry(list []Provider) (*Registry, error) {
	if len(list) == 0 {
		return nil, errors.New("no sources configured")
	}
	reg := &Registry{
		entries: make([]Provider, 0, len(list)),
		byID:    make(map[string]int, len(list)),
	}
	for i, raw := range list {
		p := raw.normalize()
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("providers[%d]: %w", i, err)
		}
		if _, dup := reg.byID[p.ID]; dup {
			return nil, fmt.Errorf("providers[%d]: duplicate source id %q", i, p.ID)
		}
		reg.byID[p.ID] = len(reg.entries)
		reg.entries = append(reg.entries, p)
	}
	return reg, nil
}

// DefaultRegistry wraps the compiled-in source table.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(DefaultProviders())
	if err != nil {
		panic(fmt.Sprintf("built-in sources: %v", err))
	}
	return reg
}

// LoadRegistry reads a sources file. ".json" files are decoded as JSON,
// anything else as YAML.
func LoadRegistry(path string) (*Registry, error) {
	if path = strings.TrimSpace(path); path == "" {
		return nil, errors.New("sources file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var doc struct {
		Providers []Provider `json:"providers" yaml:"providers"`
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &doc)
	} else {
		err = yaml.Unmarshal(raw, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode sources file %s: %w", filepath.Base(path), err)
	}
	return NewRegistry(doc.Providers)
}

// All returns a copy of the sources.
func (r *Registry) All() []Provider {
	if r == nil {
		return nil
	}
	return append([]Provider(nil), r.entries...)
}

// ByID looks up a source by its trimmed id.
func (r *Registry) ByID(id string) (Provider, bool) {
	if r == nil {
		return Provider{}, false
	}
	i, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return Provider{}, false
	}
	return r.entries[i], true
}

// Len is the number of sources.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
