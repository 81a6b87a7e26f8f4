package config

import (
	"biotech-funding-tracker/pkg/config"
)

// Query holds query engine configuration.
type Query struct {
	// MaxContextRows caps how many records are rendered into the model
	// prompt for a natural-language query.
	MaxContextRows int `mapstructure:"max_context_rows"`
	// MaxAnswerRows caps how many matched rows a query response carries.
	MaxAnswerRows int `mapstructure:"max_answer_rows"`
}

// Config holds the full configuration for the API service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	API      config.API      `mapstructure:"api"`
	AI       config.AI       `mapstructure:"ai"`
	Gemini   config.Gemini   `mapstructure:"gemini"`
	OpenAI   config.OpenAI   `mapstructure:"openai"`
	Query    Query           `mapstructure:"query"`
}

// Load loads the API service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
