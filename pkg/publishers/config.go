package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Publisher types understood by DefaultRegistry.
const (
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcp_pubsub"
)

const (
	defaultHTTPMethod  = "POST"
	defaultHTTPTimeout = 5
)

// PublisherConfig is one entry of the publishers file. Exactly the block
// matching Type is read.
type PublisherConfig struct {
	ID        string                    `json:"id" yaml:"id"`
	Type      string                    `json:"type" yaml:"type"`
	Enabled   *bool                     `json:"enabled" yaml:"enabled"`
	HTTP      *HTTPPublisherConfig      `json:"http" yaml:"http"`
	SQS       *SQSPublisherConfig       `json:"sqs" yaml:"sqs"`
	SNS       *SNSPublisherConfig       `json:"sns" yaml:"sns"`
	GCPPubSub *GCPPubSubPublisherConfig `json:"gcp_pubsub" yaml:"gcp_pubsub"`
}

// HTTPPublisherConfig targets a webhook.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// SQSPublisherConfig targets a standard or FIFO queue. MessageGroupID only
// matters for FIFO queues and defaults to the source id.
type SQSPublisherConfig struct {
	QueueURL       string          `json:"uri" yaml:"uri"`
	Region         string          `json:"region" yaml:"region"`
	MessageGroupID string          `json:"message_group_id" yaml:"message_group_id"`
	Credentials    *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// SNSPublisherConfig targets a topic.
type SNSPublisherConfig struct {
	TopicARN    string          `json:"topic_arn" yaml:"topic_arn"`
	Region      string          `json:"region" yaml:"region"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// GCPPubSubPublisherConfig targets a Pub/Sub topic. An empty CredentialsFile
// uses application default credentials.
type GCPPubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// IsEnabled reports the enabled flag; unset means enabled.
func (cfg PublisherConfig) IsEnabled() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

func (cfg PublisherConfig) normalize() PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.HTTP != nil {
		c := cfg.HTTP.normalize()
		cfg.HTTP = &c
	}
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.Region = strings.TrimSpace(c.Region)
		c.MessageGroupID = strings.TrimSpace(c.MessageGroupID)
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.Region = strings.TrimSpace(c.Region)
		cfg.SNS = &c
	}
	if cfg.GCPPubSub != nil {
		c := *cfg.GCPPubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		c.Endpoint = strings.TrimSpace(c.Endpoint)
		cfg.GCPPubSub = &c
	}
	return cfg
}

func (c HTTPPublisherConfig) normalize() HTTPPublisherConfig {
	c.URL = strings.TrimSpace(c.URL)
	if c.Method = strings.ToUpper(strings.TrimSpace(c.Method)); c.Method == "" {
		c.Method = defaultHTTPMethod
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultHTTPTimeout
	}
	var headers map[string]string
	for k, v := range c.Headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if headers == nil {
			headers = make(map[string]string, len(c.Headers))
		}
		headers[k] = v
	}
	c.Headers = headers
	return c
}

func (cfg PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	var missing string
	switch cfg.Type {
	case "":
		missing = "type"
	case TypeHTTP:
		if cfg.HTTP == nil || cfg.HTTP.URL == "" {
			missing = "http.url"
		}
	case TypeSQS:
		switch {
		case cfg.SQS == nil || cfg.SQS.QueueURL == "":
			missing = "sqs.uri"
		case cfg.SQS.Region == "":
			missing = "sqs.region"
		}
	case TypeSNS:
		switch {
		case cfg.SNS == nil || cfg.SNS.TopicARN == "":
			missing = "sns.topic_arn"
		case cfg.SNS.Region == "":
			missing = "sns.region"
		}
	case TypeGCPPubSub:
		switch {
		case cfg.GCPPubSub == nil || cfg.GCPPubSub.ProjectID == "":
			missing = "gcp_pubsub.project_id"
		case cfg.GCPPubSub.Topic == "":
			missing = "gcp_pubsub.topic"
		}
	default:
		return fmt.Errorf("publisher %q: unsupported type %q", cfg.ID, cfg.Type)
	}
	if missing != "" {
		return fmt.Errorf("publisher %q: %s is required", cfg.ID, missing)
	}
	return nil
}

// ConfigRegistry holds the validated publisher entries in file order.
// It is read-only after construction.
type ConfigRegistry struct {
	entries []PublisherConfig
	byID    map[string]int
}

// LoadRegistry reads a YAML or JSON publishers file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	if path = strings.TrimSpace(path); path == "" {
		return nil, errors.New("publishers file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}
	cfgs, err := decodePublishers(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewConfigRegistry(cfgs)
}

// NewConfigRegistry normalizes and validates cfgs. An empty list is valid.
func NewConfigRegistry(cfgs []PublisherConfig) (*ConfigRegistry, error) {
	reg := &ConfigRegistry{
		entries: make([]PublisherConfig, 0, len(cfgs)),
		byID:    make(map[string]int, len(cfgs)),
	}
	for i, raw := range cfgs {
		cfg := raw.normalize()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := reg.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("publishers[%d]: duplicate publisher id %q", i, cfg.ID)
		}
		reg.byID[cfg.ID] = len(reg.entries)
		reg.entries = append(reg.entries, cfg)
	}
	return reg, nil
}

// decodePublishers picks the decoder from the file extension. Unknown
// extensions try YAML, which also accepts JSON documents.
func decodePublishers(data []byte, ext string) ([]PublisherConfig, error) {
	var doc struct {
		Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
	}
	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode publishers file: %w", err)
	}
	return doc.Publishers, nil
}

// ByID looks up an entry by its trimmed id.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	i, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return PublisherConfig{}, false
	}
	return r.entries[i], true
}

// All returns a copy of every entry.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	return append([]PublisherConfig(nil), r.entries...)
}

// Enabled returns the entries that are switched on.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	if r == nil {
		return nil
	}
	var out []PublisherConfig
	for _, cfg := range r.entries {
		if cfg.IsEnabled() {
			out = append(out, cfg)
		}
	}
	return out
}
