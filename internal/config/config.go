// Package config содержит логику чтения конфигурации POS-системы Bear Phone.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации POS-системы.
type Config struct {
	RunAddress         string        `env:"RUN_ADDRESS"`
	DatabaseURI        string        `env:"DATABASE_URI"`
	BaseURL            string        `env:"BASE_URL"`
	UltramsgInstanceID string        `env:"ULTRAMSG_INSTANCE_ID"`
	UltramsgToken      string        `env:"ULTRAMSG_TOKEN"`
	AssetsDir          string        `env:"ASSETS_DIR"`
	DispatchTimeout    time.Duration `env:"DISPATCH_TIMEOUT"`
	DispatchRetries    int           `env:"DISPATCH_RETRIES"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envBaseURL := cfg.BaseURL

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.BaseURL, "b", "", "public base URL for invoice links")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envBaseURL != "" {
		cfg.BaseURL = envBaseURL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://" + cfg.RunAddress
	}
	if cfg.DispatchTimeout == 0 {
		cfg.DispatchTimeout = 5 * time.Second
	}

	return cfg, nil
}
