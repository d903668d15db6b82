package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	SourcesFile    string `mapstructure:"sources_file"`
	PublishersFile string `mapstructure:"publishers_file"`
	OutputDir      string `mapstructure:"output_dir"`
	OutputFile     string `mapstructure:"output_file"`
	Timezone       string `mapstructure:"timezone"`

	RecencyWindowHours  int64  `mapstructure:"recency_window_hours"`
	MaxArticles         int    `mapstructure:"max_articles"`
	FallbackArticles    int    `mapstructure:"fallback_articles"`
	FetchTimeoutSeconds int64  `mapstructure:"fetch_timeout_seconds"`
	FetchMaxRedirects   int    `mapstructure:"fetch_max_redirects"`
	FetchParallelism    int    `mapstructure:"fetch_parallelism"`
	UserAgent           string `mapstructure:"user_agent"`

	TranslateEnabled        bool    `mapstructure:"translate_enabled"`
	TranslateFrom           string  `mapstructure:"translate_from"`
	TranslateTo             string  `mapstructure:"translate_to"`
	TranslateEndpoint       string  `mapstructure:"translate_endpoint"`
	TranslateTimeoutSeconds int64   `mapstructure:"translate_timeout_seconds"`
	TranslateRPS            float64 `mapstructure:"translate_rps"`

	MetricsPushgatewayURL string `mapstructure:"metrics_pushgateway_url"`
	MetricsJob            string `mapstructure:"metrics_job"`

	RecencyWindow    time.Duration  `mapstructure:"-"`
	FetchTimeout     time.Duration  `mapstructure:"-"`
	TranslateTimeout time.Duration  `mapstructure:"-"`
	Location         *time.Location `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "samvad-news-digest")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("output_dir", "./public")
	v.SetDefault("output_file", "index.html")
	v.SetDefault("timezone", "Asia/Tokyo")

	v.SetDefault("recency_window_hours", 48)
	v.SetDefault("max_articles", 25)
	v.SetDefault("fallback_articles", 20)
	v.SetDefault("fetch_timeout_seconds", 15)
	v.SetDefault("fetch_max_redirects", 5)
	v.SetDefault("fetch_parallelism", 4)
	v.SetDefault("user_agent", "samvad-news-digest/1.0")

	v.SetDefault("translate_enabled", true)
	v.SetDefault("translate_from", "en")
	v.SetDefault("translate_to", "ja")
	v.SetDefault("translate_endpoint", "https://translate.googleapis.com/translate_a/single")
	v.SetDefault("translate_timeout_seconds", 10)
	v.SetDefault("translate_rps", 5)

	v.SetDefault("metrics_pushgateway_url", "")
	v.SetDefault("metrics_job", "samvad_news_digest")
}

// finalize validates values and derives durations and the time zone.
func (c *Config) finalize() error {
	positives := []struct {
		key   string
		value int64
	}{
		{"recency_window_hours", c.RecencyWindowHours},
		{"max_articles", int64(c.MaxArticles)},
		{"fallback_articles", int64(c.FallbackArticles)},
		{"fetch_timeout_seconds", c.FetchTimeoutSeconds},
		{"fetch_max_redirects", int64(c.FetchMaxRedirects)},
		{"fetch_parallelism", int64(c.FetchParallelism)},
		{"translate_timeout_seconds", c.TranslateTimeoutSeconds},
	}
	for _, p := range positives {
		if p.value <= 0 {
			return fmt.Errorf("invalid %s (must be positive)", p.key)
		}
	}
	if c.TranslateRPS < 0 {
		return fmt.Errorf("invalid translate_rps (must not be negative)")
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return fmt.Errorf("output_file is required")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc

	c.RecencyWindow = time.Duration(c.RecencyWindowHours) * time.Hour
	c.FetchTimeout = time.Duration(c.FetchTimeoutSeconds) * time.Second
	c.TranslateTimeout = time.Duration(c.TranslateTimeoutSeconds) * time.Second
	return nil
}
