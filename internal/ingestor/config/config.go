package config

import (
	"time"

	"biotech-funding-tracker/pkg/config"
)

// Source describes one RSS feed to poll.
type Source struct {
	Name        string `mapstructure:"name"`
	URL         string `mapstructure:"url"`
	MaxArticles int    `mapstructure:"max_articles"`
}

// Ingestion holds ingestion batch configuration, including the source
// registry.
type Ingestion struct {
	Schedule             string        `mapstructure:"schedule"`
	LookbackDays         int           `mapstructure:"lookback_days"`
	MaxArticlesPerSource int           `mapstructure:"max_articles_per_source"`
	MaxConcurrentSources int           `mapstructure:"max_concurrent_sources"`
	FetchArticleBody     bool          `mapstructure:"fetch_article_body"`
	FetchTimeout         time.Duration `mapstructure:"fetch_timeout"`
	SeenArticleTTL       time.Duration `mapstructure:"seen_article_ttl"`
	Sources              []Source      `mapstructure:"sources"`
}

// Config holds the full configuration for the ingestion service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	Ingestion Ingestion       `mapstructure:"ingestion"`
	AI        config.AI       `mapstructure:"ai"`
	Gemini    config.Gemini   `mapstructure:"gemini"`
	OpenAI    config.OpenAI   `mapstructure:"openai"`
	Telegram  config.Telegram `mapstructure:"telegram"`
}

// Load loads the ingestion service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
