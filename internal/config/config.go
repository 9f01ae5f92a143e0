// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"tscat/internal/domain"
)

type Config struct {
	DBPath        string         `env:"TSCAT_DB_PATH" envDefault:"data/tscat.db"`
	LogLevel      string         `env:"TSCAT_LOG_LEVEL" envDefault:"info"`
	LogFormat     string         `env:"TSCAT_LOG_FORMAT" envDefault:"text"`
	Workers       int            `env:"TSCAT_WORKERS" envDefault:"4"`
	RatePerSecond float64        `env:"TSCAT_RATE_PER_SECOND" envDefault:"0"`
	ItemTimeout   time.Duration  `env:"TSCAT_ITEM_TIMEOUT" envDefault:"60s"`
	CSVSeparator  string         `env:"TSCAT_CSV_SEPARATOR" envDefault:"comma"`
	Provider      ProviderConfig `envPrefix:"TSCAT_PROVIDER_"`
}

type ProviderConfig struct {
	Type    string `env:"TYPE"`
	Name    string `env:"NAME"`
	BaseURL string `env:"BASE_URL"`
	Model   string `env:"MODEL"`
	APIKey  string `env:"API_KEY"`
}

// Domain converts the settings into the provider description used by the
// translator.
func (p ProviderConfig) Domain() domain.Provider {
	name := p.Name
	if name == "" {
		name = p.Type
	}
	return domain.Provider{Type: p.Type, Name: name, BaseURL: p.BaseURL, Model: p.Model, APIKey: p.APIKey}
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: TSCAT_DB_PATH must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: TSCAT_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("config: TSCAT_RATE_PER_SECOND must not be negative")
	}
	switch c.CSVSeparator {
	case "comma", "semicolon", "tab":
	default:
		return fmt.Errorf("config: TSCAT_CSV_SEPARATOR must be comma, semicolon or tab, got %q", c.CSVSeparator)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: TSCAT_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}
